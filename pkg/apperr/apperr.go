package apperr

import (
	"errors"
	"fmt"
)

// Kind 错误分类
type Kind int

const (
	KindUnknown Kind = iota
	KindUnauthorized
	KindNotFound
	KindForbidden
	KindConflict
	KindValidation
	KindIntegrity
	KindPartialFailure
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindValidation:
		return "validation_failed"
	case KindIntegrity:
		return "integrity_fault"
	case KindPartialFailure:
		return "partial_failure"
	default:
		return "unknown"
	}
}

// Error 业务错误
// Code 对应 pkg/response/code.go 中的业务码
type Error struct {
	Kind    Kind
	Code    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is 按 Kind 比较，使 errors.Is(err, apperr.ErrNotFound) 对任何 NotFound 成立
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code != 0 && t.Code != e.Code {
		return false
	}
	return t.Kind == e.Kind
}

// 分类哨兵，只用于 errors.Is 比较
var (
	ErrUnauthorized = &Error{Kind: KindUnauthorized, Message: "unauthorized"}
	ErrNotFound     = &Error{Kind: KindNotFound, Message: "not found"}
	ErrForbidden    = &Error{Kind: KindForbidden, Message: "forbidden"}
	ErrConflict     = &Error{Kind: KindConflict, Message: "conflict"}
	ErrValidation   = &Error{Kind: KindValidation, Message: "validation failed"}
	ErrIntegrity    = &Error{Kind: KindIntegrity, Message: "integrity fault"}
)

func New(kind Kind, code int, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

func Wrap(kind Kind, code int, msg string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: msg, Err: err}
}

func Unauthorized(code int, msg string) *Error { return New(KindUnauthorized, code, msg) }
func NotFound(code int, msg string) *Error     { return New(KindNotFound, code, msg) }
func Forbidden(code int, msg string) *Error    { return New(KindForbidden, code, msg) }
func Conflict(code int, msg string) *Error     { return New(KindConflict, code, msg) }
func Validation(code int, msg string) *Error   { return New(KindValidation, code, msg) }

func Integrity(code int, msg string, err error) *Error {
	return Wrap(KindIntegrity, code, msg, err)
}

// KindOf 取出错误分类，非业务错误返回 KindUnknown
func KindOf(err error) Kind {
	var pf *PartialFailure
	if errors.As(err, &pf) {
		return KindPartialFailure
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
