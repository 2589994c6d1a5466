package report

import (
	"errors"

	"footstep/internal/domain/moderation"
	moderationService "footstep/internal/domain/moderation/service"
	postingRepo "footstep/internal/domain/posting/repository"
	"footstep/internal/domain/report/handler"
	"footstep/internal/domain/report/repository"
	"footstep/internal/domain/report/service"
	userRepo "footstep/internal/domain/user/repository"
	userService "footstep/internal/domain/user/service"
	"footstep/internal/pkg/registry"
)

// ServiceName 共享的黑名单来源
const ServiceName = "blacklist"

// ReportModule 举报模块
type ReportModule struct{}

func init() {
	registry.Register(&ReportModule{})
}

func (m *ReportModule) Name() string {
	return "report"
}

func (m *ReportModule) Priority() int {
	return 20
}

func (m *ReportModule) Init(ctx *registry.ModuleContext) error {
	policy, ok := registry.Lookup[moderationService.Policy](ctx, moderation.ServiceName)
	if !ok {
		return errors.New("report module requires the moderation policy")
	}

	reports := service.NewReportService(service.Deps{
		Accounts: userService.NewAccountGuard(userRepo.NewUserRepository(ctx.DB), nil),
		Reports:  repository.NewReportRepository(ctx.DB),
		Postings: postingRepo.NewPostingRepository(ctx.DB),
		Comments: postingRepo.NewCommentRepository(ctx.DB),
		Policy:   policy,
		Tx:       ctx.Tx,
		Cache:    ctx.Cache,
		Metrics:  ctx.Metrics,
		Log:      ctx.Log.Named("report"),
	})
	ctx.Provide(ServiceName, reports)

	h := handler.NewReportHandler(reports)
	ctx.AuthRouter.POST("/reports", h.FileReport)
	return nil
}
