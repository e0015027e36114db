// Package validation checks request payloads before they reach the store.
//
// Payloads are decoded into the input types from the models package and then
// checked against their `validate` tags. Only the first failure is reported,
// in field declaration order, as a single human readable message.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names, which is what clients sent.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		}
		return name
	})

	if err := v.RegisterValidation("objectid", isObjectID); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("maxbytes", maxBytes); err != nil {
		panic(err)
	}
	return v
}

// maxBytes bounds the encoded length of a string, where max counts runes.
// bcrypt rejects passwords longer than 72 bytes.
func maxBytes(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		panic(fmt.Sprintf("maxbytes: bad param %q", fl.Param()))
	}
	return len(fl.Field().String()) <= n
}

func isObjectID(fl validator.FieldLevel) bool {
	return primitive.IsValidObjectID(fl.Field().String())
}

// Check validates v and returns ("", true) when every constraint holds.
// Otherwise it returns the message for the first failing field.
func Check(v any) (string, bool) {
	err := validate.Struct(v)
	if err == nil {
		return "", true
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return message(fieldErrs[0]), false
	}
	return err.Error(), false
}

// Decode reads a JSON object from body into dst and validates it. An empty
// body is treated as an empty object so that the missing fields are reported
// the same way as for {}. Anything after the object is rejected.
func Decode(body io.Reader, dst any) (string, bool) {
	dec := json.NewDecoder(body)
	err := dec.Decode(dst)
	switch {
	case errors.Is(err, io.EOF):
		return Check(dst)
	case err != nil:
		return decodeMessage(err), false
	}

	if err := dec.Decode(&json.RawMessage{}); !errors.Is(err, io.EOF) {
		return "Invalid JSON body.", false
	}
	return Check(dst)
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	isString := fe.Kind() == reflect.String

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%q is required", field)
	case "min":
		if isString {
			return fmt.Sprintf("%q length must be at least %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("%q must be greater than or equal to %s", field, fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("%q length must be less than or equal to %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("%q must be less than or equal to %s", field, fe.Param())
	case "maxbytes":
		return fmt.Sprintf("%q length must be less than or equal to %s bytes long", field, fe.Param())
	case "email":
		return fmt.Sprintf("%q must be a valid email", field)
	case "number":
		return fmt.Sprintf("%q must only contain digits", field)
	case "objectid":
		return fmt.Sprintf("%q with value %q fails to match the valid mongo id pattern", field, fe.Value())
	}
	return fmt.Sprintf("%q is invalid", field)
}

func decodeMessage(err error) string {
	var typeErr *json.UnmarshalTypeError
	if !errors.As(err, &typeErr) {
		return "Invalid JSON body."
	}

	field := typeErr.Field
	if field == "" {
		return `"value" must be of type object`
	}

	switch typeErr.Type.Kind() {
	case reflect.Bool:
		return fmt.Sprintf("%q must be a boolean", field)
	case reflect.String:
		return fmt.Sprintf("%q must be a string", field)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fmt.Sprintf("%q must be an integer", field)
	case reflect.Float32, reflect.Float64:
		return fmt.Sprintf("%q must be a number", field)
	}
	return fmt.Sprintf("%q has an invalid type", field)
}
