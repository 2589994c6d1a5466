package notify

import (
	"context"

	"go.uber.org/multierr"
)

// Kind 通知模板类型
type Kind string

const (
	KindReported      Kind = "reported"
	KindSuspended     Kind = "suspended"
	KindPasswordReset Kind = "password_reset"
)

// 模板参数键
const (
	ParamNickname    = "nickname"
	ParamTitle       = "title"
	ParamReason      = "reason"
	ParamBannedUntil = "bannedUntil"
	ParamPassword    = "password"
)

// Notice 待发送的通知
type Notice struct {
	Email  string
	Kind   Kind
	Params map[string]string
}

// Sender 通知发送者
type Sender interface {
	Notify(ctx context.Context, email string, kind Kind, params map[string]string) error
}

// Dispatcher 异步投递通知，调用方不等待结果
type Dispatcher interface {
	Dispatch(n Notice)
}

// MultiSender 依次调用多个发送者，合并所有错误
type MultiSender []Sender

func (m MultiSender) Notify(ctx context.Context, email string, kind Kind, params map[string]string) error {
	var err error
	for _, s := range m {
		err = multierr.Append(err, s.Notify(ctx, email, kind, params))
	}
	return err
}

// NopSender 丢弃所有通知
type NopSender struct{}

func (NopSender) Notify(context.Context, string, Kind, map[string]string) error { return nil }
