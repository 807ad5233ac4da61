package models

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError carries field-level messages keyed by JSON field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type crossFieldChecker interface {
	checkFields(errs map[string]string)
}

// Validate runs tag rules and cross-field rules on an entity. It returns
// a *ValidationError listing every offending field, or nil.
func Validate(entity any) error {
	errs := map[string]string{}

	if err := validate.Struct(entity); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("validate: %w", err)
		}
		for _, fe := range fieldErrs {
			errs[fe.Field()] = describe(fe)
		}
	}
	if c, ok := entity.(crossFieldChecker); ok {
		c.checkFields(errs)
	}

	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Fields: errs}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "gt":
		return "must be greater than " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	case "url":
		return "must be a valid URL"
	case "hexcolor":
		return "must be a hex color"
	}
	return "is invalid"
}

func (t *Task) checkFields(errs map[string]string) {
	if t.EstimateFrontend == nil && t.EstimateBackend == nil && t.EstimateQA == nil && t.EstimateDesign == nil {
		errs["estimates"] = "at least one estimate must be set"
	}
	if t.StartDate != nil && t.EndDate != nil && !t.EndDate.After(*t.StartDate) {
		errs["end_date"] = "must be after start date"
	}
}

func (s *Sprint) checkFields(errs map[string]string) {
	if !s.StartDate.IsZero() && !s.EndDate.IsZero() && !s.EndDate.After(s.StartDate) {
		errs["end_date"] = "must be after start date"
	}
}
