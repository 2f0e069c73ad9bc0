package resource

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreLoadsOnce(t *testing.T) {
	calls := 0
	store := NewStore(func() (int, error) {
		calls++
		return 42, nil
	})

	for i := 0; i < 3; i++ {
		value, err := store.Get()
		require.NoError(t, err)
		assert.Equal(t, 42, value)
	}
	assert.Equal(t, 1, calls)
}

func TestStoreRetriesFailedLoad(t *testing.T) {
	calls := 0
	store := NewStore(func() (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("transient")
		}
		return "loaded", nil
	})

	_, err := store.Get()
	require.Error(t, err)

	value, err := store.Get()
	require.NoError(t, err)
	assert.Equal(t, "loaded", value)
	assert.Equal(t, 2, calls)
}

func TestStoreInvalidate(t *testing.T) {
	calls := 0
	store := NewStore(func() (int, error) {
		calls++
		return calls, nil
	})

	value, err := store.Get()
	require.NoError(t, err)
	assert.Equal(t, 1, value)

	store.Invalidate()

	value, err = store.Get()
	require.NoError(t, err)
	assert.Equal(t, 2, value)
}
