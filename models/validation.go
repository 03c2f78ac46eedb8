package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/blogem/defect-tracker/errs"
)

// validate is shared by every form; validator caches struct metadata per type.
var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report JSON field names so messages match what the caller sent.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation("defect_status", func(fl validator.FieldLevel) bool {
		return DefectStatus(fl.Field().String()).Valid()
	})
	_ = validate.RegisterValidation("disposition", func(fl validator.FieldLevel) bool {
		return Disposition(fl.Field().String()).Valid()
	})
	_ = validate.RegisterValidation("capa_status", func(fl validator.FieldLevel) bool {
		return CapaStatus(fl.Field().String()).Valid()
	})
}

// validateStruct runs tag validation and converts failures into a ValidationFailure.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errs.Validation(err.Error())
	}

	fields := make([]errs.FieldError, 0, len(verrs))
	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := fieldMessage(fe)
		fields = append(fields, errs.FieldError{Field: fe.Field(), Message: msg})
		messages = append(messages, msg)
	}
	return errs.Validation("validation failed: "+strings.Join(messages, ", "), fields...)
}

func fieldError(field, msg string) error {
	return errs.Validation("validation failed: "+msg, errs.FieldError{Field: field, Message: msg})
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", fe.Field())
	case "defect_status":
		return fmt.Sprintf("%s must be one of Open, Under Review, Contained, Closed", fe.Field())
	case "disposition":
		return fmt.Sprintf("%s must be one of Scrap, Rework, Use As Is", fe.Field())
	case "capa_status":
		return fmt.Sprintf("%s must be Open or Closed", fe.Field())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}
