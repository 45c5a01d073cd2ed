package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type form struct {
	Username string  `json:"username" validate:"required"`
	Email    string  `json:"email" validate:"omitempty,email"`
	Month    string  `json:"monthYear" label:"Month" validate:"required,monthyear"`
	Rent     float64 `json:"rent" validate:"gte=0"`
	Password string  `json:"password" label:"Password" validate:"required"`
	Confirm  string  `json:"confirmPassword" label:"Password confirmation" validate:"eqfield=Password"`
}

func validForm() form {
	return form{Username: "alice", Month: "2025-01", Rent: 10, Password: "p", Confirm: "p"}
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(f *form)
		wantField string
		wantMsg   string
	}{
		{name: "ok", mutate: func(f *form) {}},
		{name: "missing username", mutate: func(f *form) { f.Username = "" }, wantField: "username", wantMsg: "username required"},
		{name: "bad email", mutate: func(f *form) { f.Email = "nope" }, wantField: "email", wantMsg: "Enter a valid email address"},
		{name: "bad month", mutate: func(f *form) { f.Month = "2025-13" }, wantField: "Month", wantMsg: "Month must be in YYYY-MM format"},
		{name: "negative rent", mutate: func(f *form) { f.Rent = -1 }, wantField: "rent", wantMsg: "rent must be at least 0"},
		{name: "password mismatch", mutate: func(f *form) { f.Confirm = "x" }, wantField: "Password confirmation", wantMsg: "Password confirmation does not match"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			tt.mutate(&f)

			err := ValidateStruct(f)
			if tt.wantMsg == "" {
				require.NoError(t, err)
				return
			}

			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "expected *ValidationError, got %T", err)
			assert.Equal(t, tt.wantField, ve.Field)
			assert.Equal(t, tt.wantMsg, ve.Error())
		})
	}
}

func TestIsMonthYear(t *testing.T) {
	assert.True(t, IsMonthYear("2025-01"))
	assert.True(t, IsMonthYear("1999-12"))
	assert.False(t, IsMonthYear("2025-1"))
	assert.False(t, IsMonthYear("2025-00"))
	assert.False(t, IsMonthYear(""))
}
