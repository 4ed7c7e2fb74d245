package response

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()

	require.NoError(t, WriteJSON(rec, http.StatusNotFound, Message(MsgNotFound)))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"Mountain not found"}`, rec.Body.String())
}

func TestWriteNoContent(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteNoContent(rec)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Empty(t, rec.Body.Bytes())
}

func TestGeneralError(t *testing.T) {
	assert.Equal(t, Response{Error: "boom"}, GeneralError(errors.New("boom")))
}

func TestValidationError(t *testing.T) {
	type sample struct {
		Name  string `validate:"required"`
		Count int    `validate:"min=3"`
	}

	v := validator.New()

	t.Run("required only", func(t *testing.T) {
		var errs validator.ValidationErrors
		require.ErrorAs(t, v.Struct(sample{Count: 5}), &errs)

		assert.Equal(t, Response{Error: MsgMissingFields, Fields: []string{"Name"}}, ValidationError(errs))
	})

	t.Run("other rules", func(t *testing.T) {
		var errs validator.ValidationErrors
		require.ErrorAs(t, v.Struct(sample{Name: "x", Count: 1}), &errs)

		assert.Equal(t, Response{Error: "Invalid fields", Fields: []string{"Count"}}, ValidationError(errs))
	})
}
