package moderation

import (
	"footstep/internal/domain/moderation/service"
	postingRepo "footstep/internal/domain/posting/repository"
	reportRepo "footstep/internal/domain/report/repository"
	userRepo "footstep/internal/domain/user/repository"
	"footstep/internal/pkg/registry"
)

// ServiceName 共享的封禁策略
const ServiceName = "moderation"

// ModerationModule 举报阈值、封禁与注销级联
type ModerationModule struct{}

func init() {
	registry.Register(&ModerationModule{})
}

func (m *ModerationModule) Name() string {
	return "moderation"
}

func (m *ModerationModule) Priority() int {
	return 10 // report 与 user 都依赖它
}

func (m *ModerationModule) Init(ctx *registry.ModuleContext) error {
	cfg := service.Config{
		ReportThreshold: ctx.Config.Moderation.ReportThreshold,
		BanDuration:     ctx.Config.Moderation.BanDuration(),
	}
	policy := service.NewPolicy(cfg, service.Deps{
		Users:    userRepo.NewUserRepository(ctx.DB),
		Reports:  reportRepo.NewReportRepository(ctx.DB),
		Postings: postingRepo.NewPostingRepository(ctx.DB),
		Comments: postingRepo.NewCommentRepository(ctx.DB),
		Likes:    postingRepo.NewLikeRepository(ctx.DB),
		Tx:       ctx.Tx,
		Sessions: ctx.Sessions,
		Notices:  ctx.Notices,
		Metrics:  ctx.Metrics,
		Log:      ctx.Log.Named("moderation"),
	})

	ctx.Provide(ServiceName, policy)
	return nil
}
