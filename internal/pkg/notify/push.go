package notify

import (
	"context"
	"fmt"

	"footstep/internal/pkg/push"
)

// PushSender 通过阿里云推送把通知发到作者账号（账号即邮箱）
type PushSender struct {
	client push.PushService
}

func NewPushSender(client push.PushService) *PushSender {
	return &PushSender{client: client}
}

func (s *PushSender) Notify(ctx context.Context, email string, kind Kind, params map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var title, body string
	switch kind {
	case KindReported:
		title, body = "Content reported", "One of your footsteps or comments was reported."
	case KindSuspended:
		title, body = "Account suspended", fmt.Sprintf("Your account is suspended until %s.", params[ParamBannedUntil])
	default:
		// 其它类型只走邮件
		return nil
	}
	// 客户端登录时以邮箱绑定推送账号
	return s.client.PushToAccount(email, title, body, map[string]string{"kind": string(kind)})
}
