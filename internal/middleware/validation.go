package middleware

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/jwalitptl/carewatch-api/internal/model"
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var (
	registerOnce sync.Once
	registerErr  error
)

var tagMessages = map[string]string{
	"required":     "is required",
	"email":        "must be a valid email address",
	"uuid":         "must be a valid UUID",
	"min":          "is too short",
	"max":          "is too long",
	"oneof":        "has an unsupported value",
	"alert_method": "must be one of email, sms, voice_call",
}

// RegisterValidators installs the custom tags on gin's validator and makes
// field errors report json names. Safe to call more than once.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return fld.Name
				}
				if name != "" {
					return name
				}
			}
			return fld.Name
		})

		registerErr = v.RegisterValidation("alert_method", func(fl validator.FieldLevel) bool {
			return model.AlertMethod(fl.Field().String()).Valid()
		})
	})
	return registerErr
}

// ValidationErrors flattens a binding error into per-field messages.
func ValidationErrors(err error) []ValidationError {
	var errs validator.ValidationErrors
	if !stderrors.As(err, &errs) {
		return nil
	}
	out := make([]ValidationError, 0, len(errs))
	for _, e := range errs {
		msg, ok := tagMessages[e.Tag()]
		if !ok {
			msg = "is invalid"
		}
		out = append(out, ValidationError{Field: e.Field(), Message: msg})
	}
	return out
}

// ValidationMessage renders a binding error as one human readable line.
func ValidationMessage(err error) string {
	fields := ValidationErrors(err)
	if len(fields) == 0 {
		return "Invalid request body"
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return strings.Join(parts, "; ")
}
