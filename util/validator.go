package util

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/bwise1/reportnow/internal/model"
	"github.com/go-playground/validator/v10"
)

const tagNotificationEmail = "required_for_notifications"

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(jsonFieldName)
	validate.RegisterValidation("latitude", validateLatitude)
	validate.RegisterValidation("longitude", validateLongitude)
	validate.RegisterStructValidation(validateNotificationContact, model.CreateReportRequest{})
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}

func validateLatitude(fl validator.FieldLevel) bool {
	lat := fl.Field().Float()
	return lat >= -90 && lat <= 90
}

func validateLongitude(fl validator.FieldLevel) bool {
	lon := fl.Field().Float()
	return lon >= -180 && lon <= 180
}

// validateNotificationContact requires an email whenever the reporter opted
// in to status notifications.
func validateNotificationContact(sl validator.StructLevel) {
	req := sl.Current().Interface().(model.CreateReportRequest)
	if req.WantsNotifications && !NotBlank(req.Email) {
		sl.ReportError(req.Email, "email", "Email", tagNotificationEmail, "")
	}
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// ValidationMessage turns validator errors into a single readable sentence.
func ValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	// A blank contact under notifications reports only the missing email.
	missingContact := make(map[string]bool)
	for _, fe := range verrs {
		if fe.Tag() == tagNotificationEmail {
			missingContact[fe.Field()] = true
		}
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Tag() == "email" && missingContact[fe.Field()] {
			continue
		}
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case tagNotificationEmail:
			msgs = append(msgs, "email is required when notifications are enabled")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of %s", fe.Field(), fe.Param()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid email address", fe.Field()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		case "latitude", "longitude":
			msgs = append(msgs, fmt.Sprintf("%s is out of range", fe.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return strings.Join(msgs, "; ")
}
