package handler

import (
	"net/http"

	"footstep/internal/domain/posting/service"
	"footstep/internal/pkg/common"
	"footstep/internal/pkg/middleware"
	"footstep/pkg/response"

	"github.com/gin-gonic/gin"
)

// PostingHandler 足迹相关接口
type PostingHandler struct {
	postings service.PostingService
	feed     service.FeedService
	comments service.CommentService
	likes    service.LikeService
}

func NewPostingHandler(postings service.PostingService, feed service.FeedService, comments service.CommentService, likes service.LikeService) *PostingHandler {
	return &PostingHandler{
		postings: postings,
		feed:     feed,
		comments: comments,
		likes:    likes,
	}
}

// Upload 发布足迹
// @Summary 发布足迹
// @Tags Posting
// @Accept multipart/form-data
// @Produce json
// @Param image formData file false "Image"
// @Success 200 {object} response.Response{data=model.Posting}
// @Router /postings [post]
func (h *PostingHandler) Upload(c *gin.Context) {
	var input service.PostingInput
	if err := c.ShouldBind(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	image, err := common.OptionalFile(c, "image")
	if err != nil {
		response.FromError(c, err)
		return
	}

	posting, err := h.postings.Upload(c.Request.Context(), middleware.Caller(c), input, image)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, posting)
}

// GetEditInfo 编辑页回显
// @Summary 获取足迹编辑信息
// @Tags Posting
// @Produce json
// @Param id path int true "Posting ID"
// @Success 200 {object} response.Response{data=model.EditInfo}
// @Router /postings/{id}/edit [get]
func (h *PostingHandler) GetEditInfo(c *gin.Context) {
	id, err := common.ParseID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}

	info, err := h.postings.GetEditInfo(c.Request.Context(), middleware.Caller(c), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, info)
}

// Edit 修改足迹
// @Summary 修改足迹
// @Tags Posting
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Posting ID"
// @Success 200 {object} response.Response{data=model.Posting}
// @Router /postings/{id} [put]
func (h *PostingHandler) Edit(c *gin.Context) {
	id, err := common.ParseID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	var input service.PostingInput
	if err := c.ShouldBind(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	image, err := common.OptionalFile(c, "image")
	if err != nil {
		response.FromError(c, err)
		return
	}

	posting, err := h.postings.Edit(c.Request.Context(), middleware.Caller(c), id, input, image)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, posting)
}

// Remove 删除足迹
// @Summary 删除足迹
// @Tags Posting
// @Param id path int true "Posting ID"
// @Success 200 {object} response.Response
// @Router /postings/{id} [delete]
func (h *PostingHandler) Remove(c *gin.Context) {
	id, err := common.ParseID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}

	if err := h.postings.Remove(c.Request.Context(), middleware.Caller(c), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, nil)
}

// OwnGallery 我的相册
// @Summary 我的全部足迹
// @Tags Feed
// @Produce json
// @Success 200 {object} response.Response{data=model.Gallery}
// @Router /gallery [get]
func (h *PostingHandler) OwnGallery(c *gin.Context) {
	gallery, err := h.feed.OwnGallery(c.Request.Context(), middleware.Caller(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gallery)
}

// GalleryOnDate 我某一天的足迹
// @Summary 按日期查看我的足迹
// @Tags Feed
// @Produce json
// @Param date path string true "yyyy-mm-dd"
// @Success 200 {object} response.Response{data=model.Gallery}
// @Router /gallery/{date} [get]
func (h *PostingHandler) GalleryOnDate(c *gin.Context) {
	date, err := common.ParseDate(c.Param("date"), "date")
	if err != nil {
		response.FromError(c, err)
		return
	}

	gallery, err := h.feed.GalleryOnDate(c.Request.Context(), middleware.Caller(c), date)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gallery)
}

// GlobalFeed 广场
// @Summary 其他用户的公开足迹
// @Tags Feed
// @Produce json
// @Success 200 {object} response.Response{data=[]model.FeedItem}
// @Router /feed [get]
func (h *PostingHandler) GlobalFeed(c *gin.Context) {
	items, err := h.feed.GlobalFeed(c.Request.Context(), middleware.Caller(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, items)
}

// UserFeed 某个用户的公开足迹
// @Summary 用户主页足迹
// @Tags Feed
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} response.Response{data=[]model.FeedItem}
// @Router /users/{id}/postings [get]
func (h *PostingHandler) UserFeed(c *gin.Context) {
	userID, err := common.ParseID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}

	items, err := h.feed.UserFeed(c.Request.Context(), middleware.Caller(c), userID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, items)
}

// Detail 足迹详情
// @Summary 足迹详情
// @Tags Feed
// @Produce json
// @Param id path int true "Posting ID"
// @Success 200 {object} response.Response{data=model.Detail}
// @Router /postings/{id} [get]
func (h *PostingHandler) Detail(c *gin.Context) {
	id, err := common.ParseID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}

	detail, err := h.feed.PostingDetail(c.Request.Context(), middleware.Caller(c), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, detail)
}

// PlacesInRange 日期区间内去过的地点
// @Summary 按日期区间查看地图
// @Tags Feed
// @Produce json
// @Param start query string true "yyyy-mm-dd"
// @Param end query string true "yyyy-mm-dd"
// @Success 200 {object} response.Response{data=[]model.PlaceMarker}
// @Router /places [get]
func (h *PostingHandler) PlacesInRange(c *gin.Context) {
	start, err := common.ParseDate(c.Query("start"), "start")
	if err != nil {
		response.FromError(c, err)
		return
	}
	end, err := common.ParseDate(c.Query("end"), "end")
	if err != nil {
		response.FromError(c, err)
		return
	}

	markers, err := h.feed.PostingsInDateRange(c.Request.Context(), middleware.Caller(c), start, end)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, markers)
}

// AddComment 发表评论
// @Summary 发表评论
// @Tags Comment
// @Accept json
// @Produce json
// @Param id path int true "Posting ID"
// @Param input body service.CommentInput true "Comment"
// @Success 200 {object} response.Response{data=model.Comment}
// @Router /postings/{id}/comments [post]
func (h *PostingHandler) AddComment(c *gin.Context) {
	id, err := common.ParseID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	var input service.CommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	comment, err := h.comments.AddComment(c.Request.Context(), middleware.Caller(c), id, input)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, comment)
}

// DeleteComment 删除评论
// @Summary 删除自己的评论
// @Tags Comment
// @Param id path int true "Comment ID"
// @Success 200 {object} response.Response
// @Router /comments/{id} [delete]
func (h *PostingHandler) DeleteComment(c *gin.Context) {
	id, err := common.ParseID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}

	if err := h.comments.DeleteComment(c.Request.Context(), middleware.Caller(c), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, nil)
}

// ToggleLike 点赞/取消点赞
// @Summary 切换点赞
// @Tags Like
// @Produce json
// @Param id path int true "Posting ID"
// @Success 200 {object} response.Response{data=map[string]bool}
// @Router /postings/{id}/likes [post]
func (h *PostingHandler) ToggleLike(c *gin.Context) {
	id, err := common.ParseID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}

	liked, err := h.likes.ToggleLike(c.Request.Context(), middleware.Caller(c), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"liked": liked})
}

// LikeCount 点赞数
// @Summary 点赞数
// @Tags Like
// @Produce json
// @Param id path int true "Posting ID"
// @Success 200 {object} response.Response{data=map[string]int64}
// @Router /postings/{id}/likes [get]
func (h *PostingHandler) LikeCount(c *gin.Context) {
	id, err := common.ParseID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}

	count, err := h.likes.LikeCount(c.Request.Context(), middleware.Caller(c), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"count": count})
}
