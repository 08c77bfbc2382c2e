package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiter_AllowUpToMax(t *testing.T) {
	l := NewLimiter(time.Minute, 3)

	assert.True(t, l.Allow("1.2.3.4"))
	assert.True(t, l.Allow("1.2.3.4"))
	assert.True(t, l.Allow("1.2.3.4"))
	assert.False(t, l.Allow("1.2.3.4"))
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	l := NewLimiter(time.Minute, 1)

	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"))
}

func TestLimiter_WindowExpiry(t *testing.T) {
	l := NewLimiter(20*time.Millisecond, 1)

	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	time.Sleep(30 * time.Millisecond)
	assert.True(t, l.Allow("a"))
}

func TestLimiter_Remaining(t *testing.T) {
	l := NewLimiter(time.Minute, 5)

	assert.Equal(t, 5, l.Remaining("a"))
	l.Allow("a")
	l.Allow("a")
	assert.Equal(t, 3, l.Remaining("a"))
}
