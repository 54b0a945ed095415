package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator"
	"github.com/meghashyamc/schoolfinder/db/catalog"
	"github.com/meghashyamc/schoolfinder/logger"
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
	validator.validator.RegisterTagNameFunc(useRequestFieldNames)
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
			field := validationErrs[0].Field()

			tagValidationDetails, ok := v.getTagValidationDetails()[validationErrs[0].Tag()]
			if ok {
				return fmt.Errorf("%s: %w", field, tagValidationDetails.err)
			}

			switch validationErrs[0].Tag() {
			case "required":
				return fmt.Errorf("missing required field '%s'", field)

			case "email":
				return fmt.Errorf("field '%s' must be a valid email address", field)

			case "min", "max":
				return fmt.Errorf("value or length of field '%s' is not in the expected range", field)

			}
		}
		return err
	}
	return nil
}

func (v *Validator) getTagValidationDetails() map[string]tagValidationDetails {
	v.tagValidationDetailsOnce.Do(func() {
		v.tagValidationDetailsMap = map[string]tagValidationDetails{
			"valid_id":        {validatorFunc: v.isValidID, err: errors.New("invalid id, expected a positive integer")},
			"valid_level":     {validatorFunc: v.isValidLevel, err: errors.New("unknown level")},
			"valid_ownership": {validatorFunc: v.isValidOwnership, err: errors.New("unknown ownership type")},
			"valid_status":    {validatorFunc: v.isValidStatus, err: errors.New("unknown approval status")},
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

// useRequestFieldNames reports fields by the name the client sent: the json
// key for bodies, the form key for query strings and multipart forms.
func useRequestFieldNames(fld reflect.StructField) string {
	for _, key := range []string{"json", "form"} {
		name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

// ParseID parses a positive decimal id. Zero, signs and non-digits are rejected.
func ParseID(value string) (uint64, error) {
	value = strings.TrimSpace(value)
	if value == "" || value[0] == '+' {
		return 0, fmt.Errorf("invalid id %q", value)
	}
	id, err := strconv.ParseUint(value, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", value)
	}
	return id, nil
}

// isValidID accepts an empty string (absent) or a positive integer.
func (v *Validator) isValidID(fl validator.FieldLevel) bool {
	field := fl.Field()
	switch field.Kind() {
	case reflect.String:
		if field.String() == "" {
			return true
		}
		if _, err := ParseID(field.String()); err != nil {
			v.logger.Info("id is not a positive integer", "id", field.String())
			return false
		}
		return true
	case reflect.Uint, reflect.Uint32, reflect.Uint64:
		return field.Uint() > 0
	case reflect.Int, reflect.Int32, reflect.Int64:
		return field.Int() > 0
	}

	return false
}

func (v *Validator) isValidLevel(fl validator.FieldLevel) bool {
	level := fl.Field().String()
	if strings.TrimSpace(level) == "" {
		return true
	}
	_, err := catalog.ParseLevel(level)
	return err == nil
}

func (v *Validator) isValidOwnership(fl validator.FieldLevel) bool {
	ownership := fl.Field().String()
	if strings.TrimSpace(ownership) == "" {
		return true
	}
	_, err := catalog.ParseOwnershipType(ownership)
	return err == nil
}

func (v *Validator) isValidStatus(fl validator.FieldLevel) bool {
	status := fl.Field().String()
	if status == "" {
		return true
	}
	_, err := catalog.ParseApprovalStatus(status)
	return err == nil
}
