package posting

import (
	"errors"

	"footstep/internal/domain/posting/handler"
	"footstep/internal/domain/posting/repository"
	"footstep/internal/domain/posting/service"
	"footstep/internal/domain/report"
	userRepo "footstep/internal/domain/user/repository"
	userService "footstep/internal/domain/user/service"
	"footstep/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// PostingModule 足迹、评论、点赞与地点
type PostingModule struct{}

func init() {
	registry.Register(&PostingModule{})
}

func (m *PostingModule) Name() string {
	return "posting"
}

func (m *PostingModule) Priority() int {
	return 30 // 需要 report 提供的黑名单
}

func (m *PostingModule) Init(ctx *registry.ModuleContext) error {
	blacklist, ok := registry.Lookup[service.BlacklistSource](ctx, report.ServiceName)
	if !ok {
		return errors.New("posting module requires a blacklist source")
	}

	postings := repository.NewPostingRepository(ctx.DB)
	comments := repository.NewCommentRepository(ctx.DB)
	likes := repository.NewLikeRepository(ctx.DB)
	places := repository.NewPlaceRepository(ctx.DB)
	users := userRepo.NewUserRepository(ctx.DB)
	accounts := userService.NewAccountGuard(users, nil)

	h := handler.NewPostingHandler(
		service.NewPostingService(postings, comments, places, service.NewPlaceService(places, ctx.Tx), ctx.Images, accounts, ctx.Tx, ctx.Log.Named("posting")),
		service.NewFeedService(postings, comments, likes, places, users, blacklist),
		service.NewCommentService(postings, comments, blacklist, accounts),
		service.NewLikeService(postings, likes, blacklist, accounts, ctx.Tx),
	)

	setupRoutes(ctx.AuthRouter, h)
	return nil
}

func setupRoutes(r *gin.RouterGroup, h *handler.PostingHandler) {
	postings := r.Group("/postings")
	{
		postings.POST("", h.Upload)
		postings.GET("/:id", h.Detail)
		postings.GET("/:id/edit", h.GetEditInfo)
		postings.PUT("/:id", h.Edit)
		postings.DELETE("/:id", h.Remove)

		postings.POST("/:id/comments", h.AddComment)
		postings.POST("/:id/likes", h.ToggleLike)
		postings.GET("/:id/likes", h.LikeCount)
	}

	r.DELETE("/comments/:id", h.DeleteComment)
	r.GET("/gallery", h.OwnGallery)
	r.GET("/gallery/:date", h.GalleryOnDate)
	r.GET("/feed", h.GlobalFeed)
	r.GET("/users/:id/postings", h.UserFeed)
	r.GET("/places", h.PlacesInRange)
}
