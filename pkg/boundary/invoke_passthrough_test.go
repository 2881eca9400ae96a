//go:build boundary_passthrough

/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: invoke_passthrough_test.go
Description: Tests for the pass-through boundary. Run with -tags boundary_passthrough.
*/

package boundary_test

import (
	"testing"

	"github.com/kleascm/akaylee-boundary/pkg/boundary"
	"github.com/stretchr/testify/assert"
)

func TestActiveModeIsPassThrough(t *testing.T) {
	assert.Equal(t, boundary.ModePassThrough, boundary.ActiveMode)
}

func TestPassThroughReturnsStatus(t *testing.T) {
	assert.Equal(t, 0, boundary.Invoke(func([]byte) int { return 0 }, []byte("abc")))
	assert.Equal(t, 1, boundary.Invoke(func([]byte) int { return 1 }, []byte("abc")))
	assert.Equal(t, -7, boundary.Invoke(func([]byte) int { return -7 }, nil))
}

// No sentinel in this mode: the panic reaches the caller untouched.
func TestPassThroughLetsPanicEscape(t *testing.T) {
	assert.PanicsWithValue(t, "boom", func() {
		boundary.Invoke(func([]byte) int { panic("boom") }, []byte("abc"))
	})
}
