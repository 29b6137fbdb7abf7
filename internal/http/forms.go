package httpx

import (
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is the shared validator instance. Field names in error maps come
// from the form tag so templates can key error messages to inputs directly.
//
//nolint:gochecknoglobals // validator instances are designed to be shared
var validate = newFormValidator()

func newFormValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// validateForm runs struct validation and converts failures into a
// field-name → message map for template rendering. An empty map means valid.
func validateForm(v any) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return map[string]string{}
	}

	errs := map[string]string{}
	var verrs validator.ValidationErrors
	if ok := errorsAs(err, &verrs); !ok {
		errs["form"] = "Invalid form submission."
		return errs
	}
	for _, fe := range verrs {
		errs[fe.Field()] = fieldErrorMessage(fe)
	}
	return errs
}

func errorsAs(err error, target *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors) //nolint:errorlint // validator returns this concrete type
	if !ok {
		return false
	}
	*target = verrs
	return true
}

// fieldErrorMessage translates a validation failure into user-facing text.
func fieldErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "min":
		if fe.Kind() == reflect.String {
			return "Must be at least " + fe.Param() + " characters."
		}
		return "Must be at least " + fe.Param() + "."
	case "max":
		if fe.Kind() == reflect.String {
			return "Must be at most " + fe.Param() + " characters."
		}
		return "Must be at most " + fe.Param() + "."
	case "len":
		return "Must be exactly " + fe.Param() + " characters."
	case "numeric":
		return "Must be a number."
	case "gt":
		return "Must be greater than " + fe.Param() + "."
	case "datetime":
		return "Must be a valid date (YYYY-MM-DD)."
	case "e164":
		return "Must be a valid phone number."
	default:
		return "Invalid value."
	}
}

// formValue returns a trimmed form field.
func formValue(r *http.Request, name string) string {
	return strings.TrimSpace(r.FormValue(name))
}

// formInt parses an integer form field, answering 0 for absent or
// unparseable input so required/gt validation catches it.
func formInt(r *http.Request, name string) int {
	n, err := strconv.Atoi(formValue(r, name))
	if err != nil {
		return 0
	}
	return n
}
