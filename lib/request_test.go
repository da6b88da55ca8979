package lib

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testForm struct {
	Name     string `form:"name" validate:"required,max=5"`
	Quantity int    `form:"quantity" validate:"required,gt=0"`
	Password string `form:"password" validate:"omitempty,min=3"`
	Confirm  string `form:"confirm" validate:"eqfield=Password"`
}

func formRequest(values url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func TestExtractAndValidateForm(t *testing.T) {
	r := formRequest(url.Values{"name": {"pens"}, "quantity": {"3"}, "password": {" ab c"}, "confirm": {" ab c"}})

	form, err := ExtractAndValidateForm[testForm](r)
	require.NoError(t, err)

	assert.Equal(t, "pens", form.Name)
	assert.Equal(t, 3, form.Quantity)
	assert.Equal(t, " ab c", form.Password)
}

func TestExtractAndValidateFormReportsFieldErrors(t *testing.T) {
	r := formRequest(url.Values{"name": {"notebooks"}, "quantity": {"0"}, "password": {"abc"}, "confirm": {"abd"}})

	_, err := ExtractAndValidateForm[testForm](r)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	fields := map[string]string{}
	for _, fe := range ve.Errors {
		fields[fe.Field] = fe.Message
	}
	assert.Equal(t, "must be at most 5 characters", fields["name"])
	assert.Equal(t, "is required", fields["quantity"])
	assert.Equal(t, "must match", fields["confirm"])
	assert.Contains(t, ve.Notice(), "name must be at most 5 characters")
	assert.True(t, ve.HasField("confirm"))
	assert.False(t, ve.HasField("password"))
}

func TestExtractAndValidateFormRejectsNonNumeric(t *testing.T) {
	r := formRequest(url.Values{"name": {"pens"}, "quantity": {"lots"}})

	_, err := ExtractAndValidateForm[testForm](r)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, []FieldError{{Field: "quantity", Message: "must be a whole number"}}, ve.Errors)
}

type testBody struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity"`
}

func TestExtractAndValidateBody(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"product_id":"4","quantity":0}`))

	body, err := ExtractAndValidateBody[testBody](r)
	require.NoError(t, err)
	assert.Equal(t, "4", body.ProductID)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"product_id":"4","extra":1}`))
	_, err = ExtractAndValidateBody[testBody](r)
	assert.Error(t, err)
}
