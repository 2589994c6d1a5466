package notify

import (
	"context"
	"fmt"

	"footstep/internal/pkg/config"

	"github.com/matcornic/hermes/v2"
	gomail "gopkg.in/gomail.v2"
)

// Dialer gomail 发送接口，便于测试替换
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// MailSender SMTP 邮件通知
type MailSender struct {
	dialer  Dialer
	hermes  hermes.Hermes
	from    string
	contact string
}

// NewMailSender 根据配置创建邮件发送者
func NewMailSender(cfg config.MailConfig) *MailSender {
	return NewMailSenderWithDialer(cfg, gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password))
}

func NewMailSenderWithDialer(cfg config.MailConfig, dialer Dialer) *MailSender {
	from := cfg.From
	if from == "" {
		from = "no-reply@footstep.dev"
	}
	return &MailSender{
		dialer: dialer,
		hermes: hermes.Hermes{
			Product: hermes.Product{
				Name:      cfg.FromName,
				Link:      "https://footstep.dev",
				Copyright: "Footstep",
			},
		},
		from:    from,
		contact: cfg.Contact,
	}
}

func (s *MailSender) Notify(ctx context.Context, email string, kind Kind, params map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	subject, body, err := s.compose(kind, params)
	if err != nil {
		return err
	}
	html, err := s.hermes.GenerateHTML(body)
	if err != nil {
		return fmt.Errorf("render %s mail: %w", kind, err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("Reply-To", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)

	return s.dialer.DialAndSend(m)
}

func (s *MailSender) compose(kind Kind, p map[string]string) (string, hermes.Email, error) {
	switch kind {
	case KindReported:
		return "[Footstep] Your content has been reported", reportedEmail(p, s.contact), nil
	case KindSuspended:
		return "[Footstep] Your account has been suspended", suspendedEmail(p, s.contact), nil
	case KindPasswordReset:
		return "[Footstep] Your temporary password", passwordEmail(p), nil
	default:
		return "", hermes.Email{}, fmt.Errorf("unknown notice kind %q", kind)
	}
}

func reportedEmail(p map[string]string, contact string) hermes.Email {
	intro := "One of your comments was reported by another user."
	if title := p[ParamTitle]; title != "" {
		intro = fmt.Sprintf("Your footstep \"%s\" was reported by another user.", title)
	}
	return hermes.Email{
		Body: hermes.Body{
			Name:   p[ParamNickname],
			Intros: []string{intro},
			Dictionary: []hermes.Entry{
				{Key: "Reason", Value: p[ParamReason]},
			},
			Outros: []string{
				"Accounts whose content is reported repeatedly are suspended.",
				fmt.Sprintf("If you think this is a mistake, write to %s.", contact),
			},
			Signature: "Thanks",
		},
	}
}

func suspendedEmail(p map[string]string, contact string) hermes.Email {
	return hermes.Email{
		Body: hermes.Body{
			Name: p[ParamNickname],
			Intros: []string{
				"Your account has been suspended because your content received repeated reports.",
			},
			Dictionary: []hermes.Entry{
				{Key: "Suspended until", Value: p[ParamBannedUntil]},
			},
			Outros: []string{
				fmt.Sprintf("If you think this is a mistake, write to %s.", contact),
			},
			Signature: "Thanks",
		},
	}
}

func passwordEmail(p map[string]string) hermes.Email {
	return hermes.Email{
		Body: hermes.Body{
			Name: p[ParamNickname],
			Intros: []string{
				"A temporary password was issued for your account.",
			},
			Dictionary: []hermes.Entry{
				{Key: "Temporary password", Value: p[ParamPassword]},
			},
			Outros: []string{
				"Sign in with it and change it from your page right away.",
			},
			Signature: "Thanks",
		},
	}
}
