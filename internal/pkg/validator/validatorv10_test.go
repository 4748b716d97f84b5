package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type requestInput struct {
	Email string `validate:"required,address"`
	Code  string `validate:"required,len=6"`
}

func TestV10Validator_Validate(t *testing.T) {
	v, err := NewV10Validator()
	require.NoError(t, err)

	tests := []struct {
		name    string
		in      requestInput
		wantKey string
	}{
		{name: "valid", in: requestInput{Email: "user@example.com", Code: "123456"}},
		{name: "missing at", in: requestInput{Email: "not-an-email", Code: "123456"}, wantKey: "email"},
		{name: "missing dot in domain", in: requestInput{Email: "a@b", Code: "123456"}, wantKey: "email"},
		{name: "inner whitespace", in: requestInput{Email: "a b@c.de", Code: "123456"}, wantKey: "email"},
		{name: "no-break space in local part", in: requestInput{Email: "a\u00a0b@c.com", Code: "123456"}, wantKey: "email"},
		{name: "ideographic space in domain", in: requestInput{Email: "a@c\u3000d.com", Code: "123456"}, wantKey: "email"},
		{name: "line separator", in: requestInput{Email: "a@c.com\u2028", Code: "123456"}, wantKey: "email"},
		{name: "non-ascii letters allowed", in: requestInput{Email: "jos\u00e9@b\u00fccher.de", Code: "123456"}},
		{name: "short code", in: requestInput{Email: "a@b.co", Code: "12345"}, wantKey: "code"},
		{name: "empty email", in: requestInput{Code: "123456"}, wantKey: "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.in)
			if tt.wantKey == "" {
				assert.NoError(t, err)
				return
			}

			var verr V10ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Values(), tt.wantKey)
		})
	}
}

func TestV10ValidationError_Error(t *testing.T) {
	assert.Equal(t, "validation error", V10ValidationError{}.Error())
	assert.JSONEq(t, `{"email":"email must be a valid email address"}`,
		V10ValidationError{"email": "email must be a valid email address"}.Error())
}

func TestV10Validator_AddressMessage(t *testing.T) {
	v, err := NewV10Validator()
	require.NoError(t, err)

	err = v.Validate(requestInput{Email: "nope", Code: "123456"})

	var verr V10ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Email must be a valid email address", verr.Values()["email"])
}

func TestV10Validator_NonStructPassesThrough(t *testing.T) {
	v, err := NewV10Validator()
	require.NoError(t, err)

	err = v.Validate("not a struct")

	require.Error(t, err)
	var verr V10ValidationError
	assert.NotErrorAs(t, err, &verr)
}
