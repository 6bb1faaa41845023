package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindDuplicate, http.StatusBadRequest},
		{KindAuthentication, http.StatusUnauthorized},
		{KindAuthorization, http.StatusForbidden},
		{KindNotFound, http.StatusNotFound},
		{KindDependency, http.StatusInternalServerError},
		{Kind("whatever"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.Status())
		})
	}
}

func TestWrappedSentinelsMatch(t *testing.T) {
	err := fmt.Errorf("creating employee: %w", ErrDuplicateEmail)

	assert.True(t, errors.Is(err, ErrDuplicateEmail))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, KindDuplicate, KindOf(err))
}

func TestValidationEquality(t *testing.T) {
	assert.True(t, errors.Is(Validation("name is required"), Validation("name is required")))
	assert.False(t, errors.Is(Validation("name is required"), Validation("email is required")))
}

func TestKindOfUnclassified(t *testing.T) {
	assert.Equal(t, KindDependency, KindOf(errors.New("boom")))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := Wrap(KindDependency, "Server error", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Server error: dial tcp: refused", err.Error())
}
