package rk

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrioBitmapInsertRemoveHighest(t *testing.T) {
	b := newPrioBitmap(70)

	require.True(t, b.empty())

	b.insert(40)
	b.insert(5)
	b.insert(63)

	require.False(t, b.empty())
	require.Equal(t, Prio(5), b.highest())

	b.remove(5)
	require.Equal(t, Prio(40), b.highest())

	b.remove(40)
	b.remove(63)
	require.True(t, b.empty())
}

func TestPrioBitmapIsSet(t *testing.T) {
	b := newPrioBitmap(128)

	b.insert(100)
	require.True(t, b.isSet(100))
	require.False(t, b.isSet(99))

	b.remove(100)
	require.False(t, b.isSet(100))
}
