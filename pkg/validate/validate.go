package validate

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"footstep/pkg/apperr"
	"footstep/pkg/model"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	instance *validator.Validate
)

// Validator 共享的校验器，注册了项目自定义规则
func Validator() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		_ = instance.RegisterValidation("notblank", notBlank)
		_ = instance.RegisterValidation("pastdate", pastDate)
	})
	return instance
}

// Struct 校验结构体，失败时返回 ValidationFailed
func Struct(code int, s interface{}) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Wrap(apperr.KindValidation, code, "invalid input", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return apperr.Validation(code, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min", "max", "gte", "lte":
		return fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "pastdate":
		return fmt.Sprintf("%s must be a %s date not in the future", fe.Field(), model.DateLayout)
	default:
		return fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag())
	}
}

// notBlank 字符串去掉空白后不能为空
func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// pastDate yyyy-mm-dd 格式且不晚于今天
func pastDate(fl validator.FieldLevel) bool {
	d, err := time.Parse(model.DateLayout, fl.Field().String())
	if err != nil {
		return false
	}
	return !d.After(model.TruncateDay(time.Now()))
}
