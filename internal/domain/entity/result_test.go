package entity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResult_ZeroValueIsNotSuccess(t *testing.T) {
	var res Result

	assert.False(t, res.OK())
	assert.False(t, res.Retryable())
	assert.Equal(t, "unknown", res.Kind.String())
	assert.Error(t, res.Err())
}

func TestResult_ErrInteractionError(t *testing.T) {
	assert.NoError(t, Succeeded(nil).Err())

	cause := errors.New("boom")
	err := Transient(cause).Err()
	var ie *InteractionError
	assert.ErrorAs(t, err, &ie)
	assert.Equal(t, ResultTransientError, ie.Kind)
	assert.ErrorIs(t, err, cause)
}
