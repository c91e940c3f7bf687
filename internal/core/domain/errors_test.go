package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrUnsupportedType", ErrUnsupportedType},
		{"ErrMalformedOutput", ErrMalformedOutput},
		{"ErrUnresolvableDocument", ErrUnresolvableDocument},
		{"ErrReferenceData", ErrReferenceData},
		{"ErrBatchInProgress", ErrBatchInProgress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

// TestErrors_Wrapping tests that sentinels survive wrapping
func TestErrors_Wrapping(t *testing.T) {
	wrapped := fmt.Errorf("load gene output: %w", ErrMalformedOutput)

	assert.True(t, errors.Is(wrapped, ErrMalformedOutput))
	assert.False(t, errors.Is(wrapped, ErrNotFound))
}
