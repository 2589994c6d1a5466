package identity

import (
	"footstep/pkg/apperr"
	"footstep/pkg/response"
)

// Caller 当前调用者身份，由认证中间件解析后显式传入各业务操作
type Caller struct {
	UserID uint
	Email  string
}

// Anonymous 未登录调用者
var Anonymous = Caller{}

// Authenticated 是否已解析出身份
func (c Caller) Authenticated() bool {
	return c.UserID != 0
}

// Require 未登录时返回 Unauthorized
func (c Caller) Require() error {
	if !c.Authenticated() {
		return apperr.Unauthorized(response.ErrTokenInvalid, "caller identity is required")
	}
	return nil
}
