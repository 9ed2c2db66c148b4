package entity

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeadline_Validate(t *testing.T) {
	tests := []struct {
		name    string
		d       Deadline
		wantErr bool
	}{
		{"valid", NewDeadline(5*time.Second, 100*time.Millisecond), false},
		{"poll equals timeout", NewDeadline(time.Second, time.Second), false},
		{"zero timeout", NewDeadline(0, 100*time.Millisecond), true},
		{"zero poll", NewDeadline(time.Second, 0), true},
		{"poll exceeds timeout", NewDeadline(100*time.Millisecond, time.Second), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.d.Validate()
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidDeadline))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDeadline_FromMillis(t *testing.T) {
	d := DeadlineFromMillis(10000, 250)
	assert.Equal(t, 10*time.Second, d.Timeout)
	assert.Equal(t, 250*time.Millisecond, d.PollInterval)
}

func TestDeadline_WithTimeoutClampsPoll(t *testing.T) {
	d := NewDeadline(5*time.Second, 500*time.Millisecond).WithTimeout(200 * time.Millisecond)
	assert.Equal(t, 200*time.Millisecond, d.Timeout)
	assert.Equal(t, 200*time.Millisecond, d.PollInterval)
	assert.NoError(t, d.Validate())
}
