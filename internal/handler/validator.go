package handler

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

var usernameValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	return usernamePattern.MatchString(fl.Field().String())
}

// RequestValidator plugs go-playground/validator into echo's c.Validate.
type RequestValidator struct {
	v *validator.Validate
}

// NewRequestValidator returns a validator with the "username" rule
// registered.  Field names in errors are the JSON names.
func NewRequestValidator() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("username", usernameValidatorFunc)
	return &RequestValidator{v: v}
}

// Validate implements echo.Validator.
func (rv *RequestValidator) Validate(i interface{}) error {
	return rv.v.Struct(i)
}

// bindAndValidate decodes the body into dst and validates it.  On failure
// it has already written a 400 response and returns errResponded.
func bindAndValidate(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		_ = c.JSON(http.StatusBadRequest, errorBody("invalid_body", "request body is not valid JSON"))
		return errResponded
	}
	if err := c.Validate(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			body := errorBody("validation_error", describe(fe))
			body["field"] = fe.Field()
			_ = c.JSON(http.StatusBadRequest, body)
			return errResponded
		}
		_ = c.JSON(http.StatusBadRequest, errorBody("validation_error", err.Error()))
		return errResponded
	}
	return nil
}

var errResponded = errors.New("response already written")

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "username":
		return fmt.Sprintf("%s may contain only letters, digits, '.', '_' and '-'", fe.Field())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}
