package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"watchshop/internal/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	// Prices are compared as numbers by the gt/gte tags.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	_ = v.RegisterValidation("component_type", func(fl validator.FieldLevel) bool {
		return models.ComponentType(fl.Field().String()).Valid()
	})
	return v
}

// Validate checks the validate tags of v and reports every failing field in a ValidationError.
func Validate(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return fmt.Errorf("failed to validate request: %w", err)
	}
	verr := &ValidationError{Fields: make(map[string]string, len(fieldErrors))}
	for _, fe := range fieldErrors {
		verr.Fields[fieldPath(fe)] = describe(fe)
	}
	return verr
}

// fieldPath drops the struct type name, e.g. "CreateOrderRequest.items[0].quantity" -> "items[0].quantity".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_without":
		return "either watch_id or custom_watch_id is required"
	case "excluded_with":
		return "watch_id and custom_watch_id are mutually exclusive"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "min":
		return fmt.Sprintf("must have a length of at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must have a length of at most %s", fe.Param())
	case "component_type":
		names := make([]string, len(models.ComponentTypes))
		for i, t := range models.ComponentTypes {
			names[i] = string(t)
		}
		return "must be one of " + strings.Join(names, " ")
	case "email", "uuid":
		return fmt.Sprintf("must be a valid %s", fe.Tag())
	}
	return fmt.Sprintf("failed on the '%s' tag", fe.Tag())
}
