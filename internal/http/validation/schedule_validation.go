package validation

import (
	"fmt"
	"github.com/go-playground/validator/v10"
	"optisched/internal/model"
	"reflect"
)

const afterStartTag = "afterstart"

// RegisterScheduleValidation names fields after their json tags and adds the
// "afterstart" tag, which requires a field to be greater than the sibling
// Start field. A missing Start is left to the required tag.
func RegisterScheduleValidation(validate *validator.Validate) error {
	validate.RegisterTagNameFunc(model.JSONTagName)

	err := validate.RegisterValidation(afterStartTag, func(fl validator.FieldLevel) bool {
		parent := reflect.Indirect(fl.Parent())
		if parent.Kind() != reflect.Struct {
			return false
		}
		start := reflect.Indirect(parent.FieldByName("Start"))
		if !start.IsValid() {
			return true
		}
		end := fl.Field()
		if !start.CanInt() || !end.CanInt() {
			return false
		}
		return end.Int() > start.Int()
	})
	if err != nil {
		return err
	}
	return nil
}

// Describe explains a validation failure of a request field.
func Describe(fe validator.FieldError) string {
	if fe.Tag() == afterStartTag {
		return fmt.Sprintf("%s must be greater than start", fe.Field())
	}
	return model.DescribeFieldError(fe)
}
