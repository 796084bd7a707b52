package domain

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(JSONFieldName)
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// JSONFieldName reports fields under their JSON key so validation errors
// name what the client sent.
func JSONFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

// ValidationFromRules converts failed validator rules into a *ValidationError
// keyed by field. Any other error is returned unchanged.
func ValidationFromRules(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	v := NewValidationError()
	for _, fe := range fieldErrs {
		v.Add(fe.Field(), ruleMessage(fe))
	}
	return v.Err()
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "min":
		if fe.Param() == "0" {
			return "cannot be negative"
		}
		return "must be at least " + fe.Param()
	default:
		return "failed " + fe.Tag()
	}
}

func validateStruct(s interface{}) error {
	return ValidationFromRules(structValidator.Struct(s))
}

func (s *Shop) Validate() error {
	return validateStruct(s)
}

func (c *Category) Validate() error {
	return validateStruct(c)
}

func (i *Item) Validate() error {
	return validateStruct(i)
}

func (o *Order) Validate() error {
	return validateStruct(o)
}
