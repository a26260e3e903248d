package util

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		field          string
		message        string
		cause          error
		expectedString string
	}{
		{
			name:           "with field",
			field:          "cache.ttl",
			message:        "must be positive",
			expectedString: "config error at cache.ttl: must be positive",
		},
		{
			name:           "without field",
			message:        "invalid configuration",
			expectedString: "config error: invalid configuration",
		},
		{
			name:           "with cause",
			field:          "server.address",
			message:        "invalid address",
			cause:          errors.New("missing port"),
			expectedString: "config error at server.address: invalid address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var err *ConfigError
			if tt.cause != nil {
				err = NewConfigErrorWithCause(tt.field, tt.message, tt.cause)
			} else {
				err = NewConfigError(tt.field, tt.message)
			}

			assert.Equal(t, tt.expectedString, err.Error())
			assert.True(t, errors.Is(err, ErrConfigInvalid))
			assert.True(t, errors.Is(err, &ConfigError{}))
			if tt.cause != nil {
				assert.True(t, errors.Is(err, tt.cause))
			}
		})
	}
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	cause := sql.ErrConnDone
	err := NewStoreError("users.insert", cause)
	require.Error(t, err)

	assert.Equal(t, "store users.insert failed: sql: connection is already closed", err.Error())
	assert.True(t, errors.Is(err, ErrStore))
	assert.True(t, errors.Is(err, cause))
	assert.True(t, errors.Is(fmt.Errorf("create: %w", err), ErrStore))

	var storeErr *StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, "users.insert", storeErr.Op)

	assert.NoError(t, NewStoreError("users.insert", nil))
}

func TestCircuitOpenError(t *testing.T) {
	t.Parallel()

	err := NewCircuitOpenError("redis", "open")

	assert.Equal(t, "circuit breaker redis is open", err.Error())
	assert.True(t, errors.Is(err, ErrCircuitOpen))
}
