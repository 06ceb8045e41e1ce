package validator

import (
	"reflect"
	"strings"

	"github.com/SAP-F-2025/assignment-service/internal/agenda"
	apperrors "github.com/SAP-F-2025/assignment-service/internal/errors"
	"github.com/SAP-F-2025/assignment-service/internal/models"
	"github.com/go-playground/validator/v10"
)

type ValidationErrors = apperrors.ValidationErrors

// BusinessRuler is implemented by requests with cross-field rules that
// struct tags cannot express.
type BusinessRuler interface {
	BusinessRules() ValidationErrors
}

// Validator is the main validator instance that combines all validation types
type Validator struct {
	structValidator *validator.Validate
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()
	registerCustomValidators(structValidator)

	return &Validator{structValidator: structValidator}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	if err := v.structValidator.Struct(s); err != nil {
		if errs := apperrors.ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

// Validate performs complete validation (struct + business rules)
func (v *Validator) Validate(s interface{}) error {
	if err := v.ValidateStruct(s); err != nil {
		return err
	}

	if r, ok := s.(BusinessRuler); ok {
		if errs := r.BusinessRules(); len(errs) > 0 {
			return errs
		}
	}
	return nil
}

// Engine exposes the underlying validator, e.g. for gin's binding
func (v *Validator) Engine() *validator.Validate {
	return v.structValidator
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("target_type", oneOf(
		models.TargetClass, models.TargetTeam, models.TargetStudent))
	validate.RegisterValidation("priority", oneOf(
		models.PriorityLow, models.PriorityMedium, models.PriorityHigh))
	validate.RegisterValidation("progress_status", oneOf(
		models.ProgressNotStarted, models.ProgressInProgress, models.ProgressCompleted, models.ProgressGraded))
	validate.RegisterValidation("agenda_category", oneOf(
		agenda.FilterAll, agenda.FilterTeacher, agenda.FilterPersonal))
	validate.RegisterValidation("agenda_status", oneOf(
		agenda.StatusAll, agenda.StatusPending, agenda.StatusCompleted))
	validate.RegisterValidation("percentage", floatBetween(0, 100))
	validate.RegisterValidation("exam_grade", floatBetween(0, 6))

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func oneOf[T ~string](valid ...T) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		for _, v := range valid {
			if string(v) == value {
				return true
			}
		}
		return false
	}
}

// floatBetween accepts floats and pointers to floats; nil pointers pass so
// optional fields stay optional.
func floatBetween(min, max float64) validator.Func {
	return func(fl validator.FieldLevel) bool {
		field := fl.Field()
		if field.Kind() == reflect.Ptr {
			if field.IsNil() {
				return true
			}
			field = field.Elem()
		}
		switch field.Kind() {
		case reflect.Float32, reflect.Float64:
			f := field.Float()
			return f >= min && f <= max
		default:
			return false
		}
	}
}
