package service

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heritage_tree/internal/model"
)

func TestValidatePerson(t *testing.T) {
	exists := func(id string) bool { return id == "1" }
	valid := model.Person{FirstName: "A", LastName: "B", BirthDate: "1990-01-01", FatherID: "1"}
	require.NoError(t, ValidatePerson(valid, exists))

	tests := []struct {
		name   string
		mutate func(p *model.Person)
		want   string
	}{
		{"missing first name", func(p *model.Person) { p.FirstName = "" }, "firstName is required"},
		{"missing birth date", func(p *model.Person) { p.BirthDate = "" }, "birthDate is required"},
		{"bad birth date", func(p *model.Person) { p.BirthDate = "someday" }, "birthDate must be a valid date"},
		{"bad death date", func(p *model.Person) { p.DeathDate = "later" }, "deathDate must be a valid date"},
		{"unknown mother", func(p *model.Person) { p.MotherID = "9" }, `motherId "9" does not match any person`},
		{"unknown spouse", func(p *model.Person) { p.SpouseID = "9" }, `spouseId "9"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			err := ValidatePerson(p, exists)
			require.Error(t, err)
			assert.True(t, IsCode(err, ErrValidation))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrValidation, http.StatusBadRequest},
		{ErrInvalidInput, http.StatusBadRequest},
		{ErrAuthentication, http.StatusUnauthorized},
		{ErrAuthorization, http.StatusForbidden},
		{ErrNotFound, http.StatusNotFound},
		{ErrConfirmation, http.StatusConflict},
		{ErrBusy, http.StatusTooManyRequests},
		{ErrTooLarge, http.StatusRequestEntityTooLarge},
		{ErrExternal, http.StatusBadGateway},
		{ErrDatabase, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.code), "code %d", tt.code)
	}
}

func TestErrorHandler_Handle(t *testing.T) {
	h := NewErrorHandler(NewNopLogger())

	status, msg := h.Handle(NewError(ErrNotFound, "person not found", nil))
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "person not found", msg)

	status, msg = h.Handle(errors.New("raw"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Internal Server Error", msg)

	wrapped := errors.Join(errors.New("ctx"), NewError(ErrBusy, "busy", nil))
	assert.Equal(t, ErrBusy, CodeOf(wrapped))
	assert.False(t, IsCode(nil, ErrBusy))
}
