package model

import (
	"errors"
	"fmt"
	"github.com/go-playground/validator/v10"
	"reflect"
	"strings"
)

var validate = NewValidator()

// NewValidator returns a validator that names fields after their json tags.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(JSONTagName)
	return v
}

func JSONTagName(field reflect.StructField) string {
	fullJson := field.Tag.Get("json")
	if fullJson == "-" {
		return ""
	}
	jsonName := strings.SplitN(fullJson, ",", 2)[0]
	if jsonName != "" {
		return jsonName
	}
	return field.Name
}

func ValidateInterval(index int, interval Interval) error {
	if err := validate.Struct(interval); err != nil {
		return &InputError{Kind: KindInterval, Index: index, Step: -1, Reason: describe(err)}
	}
	return nil
}

func ValidateIntervals(intervals []Interval) error {
	for i, interval := range intervals {
		if err := ValidateInterval(i, interval); err != nil {
			return err
		}
	}
	return nil
}

func ValidateOperation(job JobId, step int, req OperationRequest) error {
	if err := validate.Struct(req); err != nil {
		return &InputError{Kind: KindOperation, Index: int(job), Step: step, Reason: describe(err)}
	}
	return nil
}

func ValidateJobs(jobs []Job) error {
	for j, job := range jobs {
		for step, req := range job {
			if err := ValidateOperation(JobId(j), step, req); err != nil {
				return err
			}
		}
	}
	return nil
}

// DescribeFieldError turns a single validator failure into a short sentence.
func DescribeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "ltfield":
		return fmt.Sprintf("%s must be less than %s", fe.Field(), strings.ToLower(fe.Param()))
	case "gtfield":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), strings.ToLower(fe.Param()))
	case "gt":
		if fe.Param() == "0" {
			return fmt.Sprintf("%s must be positive", fe.Field())
		}
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "gte":
		if fe.Param() == "0" {
			return fmt.Sprintf("%s must not be negative", fe.Field())
		}
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag())
}

func describe(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}
	reasons := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		reasons = append(reasons, DescribeFieldError(fe))
	}
	return strings.Join(reasons, ", ")
}
