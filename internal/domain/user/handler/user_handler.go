package handler

import (
	"net/http"

	"footstep/internal/domain/user/service"
	"footstep/internal/pkg/middleware"
	"footstep/pkg/response"

	"github.com/gin-gonic/gin"
)

// UserHandler 用户处理器
type UserHandler struct {
	service service.UserService
}

// NewUserHandler 创建处理器
func NewUserHandler(service service.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// RefreshInput 刷新与登出都携带 refresh token
type RefreshInput struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// NicknameInput 修改昵称
type NicknameInput struct {
	Nickname string `json:"nickname" binding:"required"`
}

// FindPasswordInput 找回密码
type FindPasswordInput struct {
	Email    string `json:"email" binding:"required"`
	Nickname string `json:"nickname" binding:"required"`
}

// Join 注册
// @Summary 注册
// @Tags User
// @Accept json
// @Produce json
// @Param input body service.JoinInput true "Join Info"
// @Success 200 {object} response.Response{data=model.User}
// @Router /users [post]
func (h *UserHandler) Join(c *gin.Context) {
	var input service.JoinInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	user, err := h.service.Join(c.Request.Context(), input)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, user)
}

// Login 登录
// @Summary 邮箱密码登录
// @Description 已注销返回 403；封禁期内返回 403，封禁到期后自动解除
// @Tags Auth
// @Accept json
// @Produce json
// @Param input body service.LoginInput true "Login Info"
// @Success 200 {object} response.Response{data=utils.TokenPair}
// @Router /auth/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var input service.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	pair, err := h.service.Login(c.Request.Context(), input)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, pair)
}

// Reissue 刷新令牌
// @Summary 用 refresh token 换新令牌
// @Tags Auth
// @Accept json
// @Produce json
// @Param input body RefreshInput true "Refresh Token"
// @Success 200 {object} response.Response{data=utils.TokenPair}
// @Router /auth/reissue [post]
func (h *UserHandler) Reissue(c *gin.Context) {
	var input RefreshInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	pair, err := h.service.Reissue(c.Request.Context(), input.RefreshToken)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, pair)
}

// Logout 登出
// @Summary 登出
// @Tags Auth
// @Security Bearer
// @Param input body RefreshInput true "Refresh Token"
// @Success 200 {object} response.Response
// @Router /auth/logout [post]
func (h *UserHandler) Logout(c *gin.Context) {
	var input RefreshInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	if err := h.service.Logout(c.Request.Context(), middleware.Caller(c), input.RefreshToken); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, nil)
}

// MyPage 个人主页
// @Summary 个人主页
// @Tags User
// @Security Bearer
// @Produce json
// @Success 200 {object} response.Response{data=service.MyPage}
// @Router /users/me [get]
func (h *UserHandler) MyPage(c *gin.Context) {
	page, err := h.service.MyPage(c.Request.Context(), middleware.Caller(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, page)
}

// ChangeNickname 修改昵称
// @Summary 修改昵称
// @Tags User
// @Security Bearer
// @Accept json
// @Param input body NicknameInput true "Nickname"
// @Success 200 {object} response.Response
// @Router /users/me/nickname [patch]
func (h *UserHandler) ChangeNickname(c *gin.Context) {
	var input NicknameInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	if err := h.service.ChangeNickname(c.Request.Context(), middleware.Caller(c), input.Nickname); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, nil)
}

// ChangePassword 修改密码
// @Summary 修改密码
// @Tags User
// @Security Bearer
// @Accept json
// @Param input body service.PasswordChange true "Passwords"
// @Success 200 {object} response.Response
// @Router /users/me/password [patch]
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var input service.PasswordChange
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), middleware.Caller(c), input); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, nil)
}

// ChangeProfileImage 更换头像
// @Summary 更换头像
// @Tags User
// @Security Bearer
// @Accept multipart/form-data
// @Param image formData file true "Image"
// @Success 200 {object} response.Response{data=map[string]string}
// @Router /users/me/profile-image [put]
func (h *UserHandler) ChangeProfileImage(c *gin.Context) {
	image, err := c.FormFile("image")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "image is required")
		return
	}

	url, err := h.service.ChangeProfileImage(c.Request.Context(), middleware.Caller(c), image)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"profileImageUrl": url})
}

// FindPassword 找回密码，临时密码通过邮件发送
// @Summary 找回密码
// @Tags Auth
// @Accept json
// @Param input body FindPasswordInput true "Account"
// @Success 200 {object} response.Response
// @Router /auth/password/find [post]
func (h *UserHandler) FindPassword(c *gin.Context) {
	var input FindPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	if err := h.service.FindPassword(c.Request.Context(), input.Email, input.Nickname); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, nil)
}

// Secession 注销账号
// @Summary 注销账号
// @Description 足迹、评论、点赞一并失效；个别项失败时返回部分失败码
// @Tags User
// @Security Bearer
// @Success 200 {object} response.Response
// @Router /users/me [delete]
func (h *UserHandler) Secession(c *gin.Context) {
	if err := h.service.Secession(c.Request.Context(), middleware.Caller(c)); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, nil)
}
