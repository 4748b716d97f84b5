// Package validator checks usecase inputs against their `validate` struct tags.
//
// Failures come back as V10ValidationError, keyed by snake_case field name,
// which goerror.NewInvalidInput turns into the 422 response fields.
package validator

// Validator validates usecase input structs.
type Validator interface {
	Validate(data any) error
}
