package booking

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"clinic-scheduling-api/internal/apperr"
	"clinic-scheduling-api/internal/model"
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("rut", func(fl validator.FieldLevel) bool {
		_, err := model.NormalizeRUT(fl.Field().String())
		return err == nil
	})
	return v
}

// validationError turns the first failed rule into an Invalid error.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Invalid("invalid request")
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return apperr.Invalidf("%s is required", fe.Field())
	case "gt":
		return apperr.Invalidf("%s must be a positive id", fe.Field())
	case "email":
		return apperr.Invalidf("%s must be a valid email", fe.Field())
	case "rut":
		return apperr.Invalidf("%s is not a valid RUT", fe.Field())
	default:
		return apperr.Invalid(fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
}
