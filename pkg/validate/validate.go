package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var accountIDPattern = regexp.MustCompile(`^[A-Za-z0-9_\-:.@]{1,255}$`)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = val.RegisterValidation("accountid", func(fl validator.FieldLevel) bool {
		return IsAccountID(fl.Field().String())
	})
	return val
}

// IsAccountID reports whether s looks like an identity provider user id.
func IsAccountID(s string) bool {
	return accountIDPattern.MatchString(s)
}

// Struct validates the validate tags of s and reports the first failing
// field by its JSON name.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", fe.Field())
	case "gt", "gte", "min":
		return fmt.Errorf("%s must be at least %s", fe.Field(), minimum(fe))
	case "max", "lte":
		return fmt.Errorf("%s must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Errorf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "accountid":
		return fmt.Errorf("%s is not a valid account id", fe.Field())
	default:
		return fmt.Errorf("%s is invalid", fe.Field())
	}
}

func minimum(fe validator.FieldError) string {
	if fe.Tag() == "gt" {
		return fe.Param() + " exclusive"
	}
	return fe.Param()
}
