package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/grapelabs/grape/pkg/apperr"
)

type registerRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,hasupper,haslower,hasdigit"`
	Name     string `json:"name"     validate:"omitempty,max=100"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type updateUserRequest struct {
	Name string `json:"name" validate:"required,notblank,max=100"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("hasupper", containsFunc(unicode.IsUpper))
	_ = v.RegisterValidation("haslower", containsFunc(unicode.IsLower))
	_ = v.RegisterValidation("hasdigit", containsFunc(unicode.IsDigit))
	return v
}

func containsFunc(fn func(rune) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return strings.ContainsFunc(fl.Field().String(), fn)
	}
}

// decodeValid decodes the JSON body into req and validates it. Both
// failure modes come back as Validation errors so the translator can
// shape them uniformly.
func decodeValid(r *http.Request, req any) error {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		return apperr.Validation("Invalid JSON in request body", nil)
	}
	if err := validate.Struct(req); err != nil {
		return apperr.Validation("Validation error", fieldErrors(err))
	}
	return nil
}

// fieldErrors converts validator output into {path, message} pairs.
func fieldErrors(err error) []apperr.FieldError {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return nil
	}

	fields := make([]apperr.FieldError, 0, len(validationErrs))
	for _, fe := range validationErrs {
		path := strings.ToLower(fe.Field())
		fields = append(fields, apperr.FieldError{
			Path:    path,
			Message: fieldMessage(path, fe),
		})
	}
	return fields
}

func fieldMessage(path string, fe validator.FieldError) string {
	switch fe.ActualTag() {
	case "required":
		return path + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return path + " must be at least " + fe.Param() + " characters"
	case "max":
		return path + " must be at most " + fe.Param() + " characters"
	case "hasupper":
		return path + " must contain at least one uppercase letter"
	case "haslower":
		return path + " must contain at least one lowercase letter"
	case "hasdigit":
		return path + " must contain at least one number"
	case "notblank":
		return path + " must not be blank"
	default:
		return path + " is invalid"
	}
}
