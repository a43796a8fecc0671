package customvalidator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "rep-admin/pkg/errors"
)

type contactForm struct {
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"cellphone" validate:"us_phone"`
	Website  string `json:"website" validate:"scheme_url"`
	Password string `json:"password" validate:"omitempty,min=8"`
	Industry string `json:"industry_type" validate:"industry_type"`
}

func newValidator(t *testing.T) *CustomValidator {
	t.Helper()
	cv, err := New()
	require.NoError(t, err)
	return cv
}

func TestIsValidURL(t *testing.T) {
	assert.True(t, IsValidURL(""))
	assert.True(t, IsValidURL("https://facebook.com/rep"))
	assert.True(t, IsValidURL("http://localhost:8080/path?q=1"))
	assert.False(t, IsValidURL("facebook.com/rep"))
	assert.False(t, IsValidURL("https://"))
	assert.False(t, IsValidURL("not a url"))
}

func TestValidate_OK(t *testing.T) {
	cv := newValidator(t)

	err := cv.Validate(&contactForm{
		Email:    "rep@example.com",
		Phone:    "(858) 369-5555",
		Website:  "",
		Password: "",
		Industry: "Real Estate",
	})

	assert.NoError(t, err)
}

func TestValidate_FieldMessages(t *testing.T) {
	cv := newValidator(t)

	err := cv.Validate(&contactForm{
		Phone:    "858-369-5555",
		Website:  "example.com",
		Password: "short",
		Industry: "Banking",
	})

	var validationErr *apperrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, apperrors.SourceClient, validationErr.Source)

	first := validationErr.Fields.First()
	assert.Equal(t, "This field is required.", first["email"])
	assert.Equal(t, "Enter a valid phone number.", first["cellphone"])
	assert.Equal(t, "Enter a valid URL.", first["website"])
	assert.Equal(t, "Ensure this field has at least 8 characters.", first["password"])
	assert.Equal(t, "Select a valid choice.", first["industry_type"])
}
