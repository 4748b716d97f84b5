package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/shandysiswandi/otclogin/internal/pkg/strcase"
)

// reAddress accepts anything shaped like local@domain.tld with no ASCII or
// Unicode separator anywhere.
var reAddress = regexp.MustCompile(`^[^\s\p{Z}@]+@[^\s\p{Z}@]+\.[^\s\p{Z}@]+$`)

// ErrTranslatorNotFound indicates the requested translator is unavailable.
var ErrTranslatorNotFound = errors.New("translator not found")

// V10Validator implements Validator using go-playground/validator v10.
type V10Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// V10ValidationError is a field-to-message map returned when validation fails.
//
// Keys are field names in snake_case to match typical JSON conventions.
type V10ValidationError map[string]string

// Error implements the error interface.
func (vs V10ValidationError) Error() string {
	if len(vs) == 0 {
		return "validation error"
	}

	b, err := json.Marshal(vs)
	if err != nil {
		return fmt.Sprintf("validation error (failed to marshal: %v)", err)
	}
	return string(b)
}

// Values returns the field error map.
func (vs V10ValidationError) Values() map[string]string {
	return vs
}

// customRule is a tag beyond the go-playground built-ins, with its English message.
type customRule struct {
	tag     string
	message string
	fn      validator.Func
}

var customRules = []customRule{
	{
		tag:     "address",
		message: "{0} must be a valid email address",
		fn: func(fl validator.FieldLevel) bool {
			s, ok := fl.Field().Interface().(string)
			return ok && reAddress.MatchString(s)
		},
	},
}

// NewV10Validator builds a validator with English messages and the custom rules registered.
func NewV10Validator() (*V10Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	enLang := en.New()
	enTrans, ok := ut.New(enLang, enLang).GetTranslator("en")
	if !ok {
		return nil, ErrTranslatorNotFound
	}

	if err := enTranslations.RegisterDefaultTranslations(validate, enTrans); err != nil {
		return nil, err
	}

	for _, rule := range customRules {
		if err := registerRule(validate, enTrans, rule); err != nil {
			return nil, fmt.Errorf("register %q rule: %w", rule.tag, err)
		}
	}

	return &V10Validator{validate: validate, translator: enTrans}, nil
}

func registerRule(validate *validator.Validate, trans ut.Translator, rule customRule) error {
	if err := validate.RegisterValidation(rule.tag, rule.fn); err != nil {
		return err
	}

	return validate.RegisterTranslation(rule.tag, trans,
		func(t ut.Translator) error { return t.Add(rule.tag, rule.message, false) },
		func(t ut.Translator, fe validator.FieldError) string {
			msg, err := t.T(fe.Tag(), fe.Field())
			if err != nil {
				slog.Warn("validator: missing translation", "tag", fe.Tag(), "error", err)
				return fe.Error()
			}
			return msg
		},
	)
}

// Validate returns nil or a V10ValidationError keyed by snake_case field name.
// Errors that are not field failures, such as a non-struct argument, pass through.
func (v *V10Validator) Validate(data any) error {
	err := v.validate.Struct(data)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := make(V10ValidationError, len(fieldErrs))
	for _, fe := range fieldErrs {
		out[strcase.ToLowerSnake(fe.Field())] = fe.Translate(v.translator)
	}
	return out
}
