package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/autograde/grader/internal/types"
)

// Echo compatible validator reporting json field names
type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	return cv.validator.Struct(i)
}

func Create() CustomValidator {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		paramName := strings.SplitN(field.Tag.Get("param"), ",", 2)[0]
		if paramName != "" {
			return paramName
		}

		jsonName := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if jsonName == "-" {
			return ""
		}
		return jsonName
	})

	validate.RegisterStructValidation(gradingConfigLevel, types.AssignmentGradingConfig{})

	return CustomValidator{validator: validate}
}

// Criterion weights must add up to the total points
func gradingConfigLevel(sl validator.StructLevel) {
	cfg, ok := sl.Current().Interface().(types.AssignmentGradingConfig)
	if !ok {
		return
	}

	if err := cfg.Validate(); err != nil {
		sl.ReportError(cfg.Criteria, "criteria", "Criteria", "weights_sum", "")
	}
}
