package user

import (
	"errors"

	"footstep/internal/domain/moderation"
	moderationService "footstep/internal/domain/moderation/service"
	postingRepo "footstep/internal/domain/posting/repository"
	"footstep/internal/domain/user/handler"
	"footstep/internal/domain/user/repository"
	"footstep/internal/domain/user/service"
	"footstep/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// UserModule 用户模块
type UserModule struct{}

func init() {
	// 自动注册模块
	registry.Register(&UserModule{})
}

func (m *UserModule) Name() string {
	return "user"
}

func (m *UserModule) Priority() int {
	return 40
}

func (m *UserModule) Init(ctx *registry.ModuleContext) error {
	policy, ok := registry.Lookup[moderationService.Policy](ctx, moderation.ServiceName)
	if !ok {
		return errors.New("user module requires the moderation policy")
	}

	// 1. 依赖注入
	userService := service.NewUserService(service.Deps{
		Repo:       repository.NewUserRepository(ctx.DB),
		Postings:   postingRepo.NewPostingRepository(ctx.DB),
		Withdrawer: policy,
		Sessions:   ctx.Sessions,
		Tokens:     ctx.Tokens,
		Images:     ctx.Images,
		Notices:    ctx.Notices,
		Log:        ctx.Log.Named("user"),
	})
	userHandler := handler.NewUserHandler(userService)

	// 2. 路由注册
	setupRoutes(ctx.Router, ctx.AuthRouter, userHandler)

	return nil
}

func setupRoutes(public, authorized *gin.RouterGroup, h *handler.UserHandler) {
	// 公开路由
	public.POST("/users", h.Join)
	auth := public.Group("/auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/reissue", h.Reissue)
		auth.POST("/password/find", h.FindPassword)
	}

	// 受保护的路由
	authorized.POST("/auth/logout", h.Logout)
	me := authorized.Group("/users/me")
	{
		me.GET("", h.MyPage)
		me.PATCH("/nickname", h.ChangeNickname)
		me.PATCH("/password", h.ChangePassword)
		me.PUT("/profile-image", h.ChangeProfileImage)
		me.DELETE("", h.Secession)
	}
}
