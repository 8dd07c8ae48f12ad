package runlock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLockerAcquireAndRelease(t *testing.T) {
	l := NewMemoryLocker()

	release, acquired, err := l.Acquire(context.Background(), "cfg-1", time.Minute)
	require.NoError(t, err)
	require.True(t, acquired)
	require.NotNil(t, release)

	_, again, err := l.Acquire(context.Background(), "cfg-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, again, "held key is not re-acquirable")

	release()

	_, after, err := l.Acquire(context.Background(), "cfg-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, after, "released key is free again")
}

func TestMemoryLockerKeysAreIndependent(t *testing.T) {
	l := NewMemoryLocker()

	_, first, err := l.Acquire(context.Background(), "cfg-1", time.Minute)
	require.NoError(t, err)
	require.True(t, first)

	_, second, err := l.Acquire(context.Background(), "cfg-2", time.Minute)
	require.NoError(t, err)
	assert.True(t, second)
}

func TestMemoryLockerExpiry(t *testing.T) {
	l := NewMemoryLocker()
	now := time.Now()
	l.clock = func() time.Time { return now }

	_, acquired, err := l.Acquire(context.Background(), "cfg-1", time.Minute)
	require.NoError(t, err)
	require.True(t, acquired)

	now = now.Add(2 * time.Minute)

	_, again, err := l.Acquire(context.Background(), "cfg-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, again, "expired lock is treated as free")
}
