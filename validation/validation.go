package validation

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator"
	"github.com/meghashyamc/vidcat/logger"
	"github.com/meghashyamc/vidcat/services/search"
)

type Validator struct {
	validator                *validator.Validate
	logger                   logger.Logger
	tagValidationDetailsOnce sync.Once
	tagValidationDetailsMap  map[string]tagValidationDetails
}

type tagValidationDetails struct {
	validatorFunc validator.Func
	err           error
}

func New(logger logger.Logger) (*Validator, error) {
	validator := &Validator{validator: validator.New(), logger: logger}
	validator.validator.RegisterTagNameFunc(useFieldNames)
	if err := validator.registerCustomValidatorsForTags(); err != nil {
		return nil, err
	}

	return validator, nil
}

func (v *Validator) Validate(i any) error {

	if err := v.validator.Struct(i); err != nil {
		v.logger.Warn("validation failed", "err", err.Error())
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) && len(validationErrs) > 0 {

			tagValidationDetails, ok := v.getTagValidationDetails()[validationErrs[0].Tag()]
			if ok {
				return fmt.Errorf("%w for field '%s'", tagValidationDetails.err, validationErrs[0].Field())
			}

			switch validationErrs[0].Tag() {
			case "required":
				return fmt.Errorf("missing required field '%s'", validationErrs[0].Field())

			case "min", "max":
				return fmt.Errorf("value or length of field '%s' is not in the expected range", validationErrs[0].Field())

			}
		}
		return err
	}
	return nil
}

func (v *Validator) getTagValidationDetails() map[string]tagValidationDetails {
	v.tagValidationDetailsOnce.Do(func() {
		v.tagValidationDetailsMap = map[string]tagValidationDetails{
			"valid_query":      {validatorFunc: v.isValidQuery, err: errors.New("invalid query")},
			"valid_time_range": {validatorFunc: v.isValidTimeRange, err: errors.New("invalid time range")},
			"valid_url":        {validatorFunc: v.isValidURL, err: errors.New("invalid url")},
		}
	})
	return v.tagValidationDetailsMap
}

func (v *Validator) registerCustomValidatorsForTags() error {

	tagValidationDetailsMap := v.getTagValidationDetails()

	for tag, tagValidationDetails := range tagValidationDetailsMap {
		if err := v.validator.RegisterValidation(tag, tagValidationDetails.validatorFunc); err != nil {
			v.logger.Error("failed to register custom validator function", "tag", tag, "err", err.Error())
			return err
		}
	}
	return nil
}

// useFieldNames reports fields by the name clients send them with: the json
// name for bodies, the form name for query strings.
func useFieldNames(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

// isValidQuery accepts an absent query, which matches every video.
func (v *Validator) isValidQuery(fl validator.FieldLevel) bool {
	query := fl.Field().String()
	if strings.Contains(query, "\x00") {
		v.logger.Warn("query has null byte", "query", query)
		return false
	}

	return true
}

func (v *Validator) isValidTimeRange(fl validator.FieldLevel) bool {
	timeRange := fl.Field().String()
	if len(timeRange) == 0 {
		return true
	}

	return search.IsValidTimeRange(timeRange)
}

func (v *Validator) isValidURL(fl validator.FieldLevel) bool {
	rawURL := fl.Field().String()
	if len(rawURL) == 0 {
		return true
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		v.logger.Info("could not parse url", "url", rawURL, "err", err.Error())
		return false
	}

	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
