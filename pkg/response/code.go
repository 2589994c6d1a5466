package response

// 业务状态码
const (
	CodeSuccess = 0
	CodeError   = 1

	// 用户模块错误 100xx
	ErrUserExists        = 10001
	ErrUserNotFound      = 10002
	ErrAuthFailed        = 10003
	ErrTokenInvalid      = 10004
	ErrNoPermission      = 10005
	ErrNicknameExists    = 10006
	ErrUserWithdrawn     = 10007
	ErrUserSuspended     = 10008
	ErrSamePassword      = 10009
	ErrTokenMismatch     = 10010
	ErrUserInvalidInput  = 10011
	ErrNicknameMismatch  = 10012

	// 发布模块错误 200xx
	ErrPostingNotFound   = 20001
	ErrPlaceNotFound     = 20002
	ErrCommentNotFound   = 20003
	ErrPostingInvalid    = 20004
	ErrNotPostingOwner   = 20005
	ErrNotCommentOwner   = 20006
	ErrInvalidDateRange  = 20007
	ErrPostingIntegrity  = 20008

	// 举报模块错误 300xx
	ErrReportTargetNotFound = 30001
	ErrReportInvalid        = 30002
	ErrAlreadySuspended     = 30003
	ErrCascadePartial       = 30004

	// 系统错误 500xx
	ErrServerInternal  = 50001
	ErrInvalidParam    = 50002
	ErrTooManyRequests = 50003
	ErrRequestTimeout  = 50004
)
