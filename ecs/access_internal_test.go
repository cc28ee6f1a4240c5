package ecs

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccess(t *testing.T) {
	t.Parallel()

	t.Run("reads coexist", func(t *testing.T) {
		t.Parallel()
		var a Access
		require.NoError(t, a.AddRead(1))
		require.NoError(t, a.AddRead(1))
		assert.True(t, a.HasRead(1))
		assert.False(t, a.HasWrite(1))
	})

	t.Run("write after read conflicts", func(t *testing.T) {
		t.Parallel()
		var a Access
		require.NoError(t, a.AddRead(1))
		assert.True(t, eris.Is(a.AddWrite(1), ErrAccessConflict))
	})

	t.Run("read after write conflicts", func(t *testing.T) {
		t.Parallel()
		var a Access
		require.NoError(t, a.AddWrite(1))
		assert.True(t, eris.Is(a.AddRead(1), ErrAccessConflict))
		assert.False(t, a.HasRead(1))
	})

	t.Run("write after write conflicts", func(t *testing.T) {
		t.Parallel()
		var a Access
		require.NoError(t, a.AddWrite(1))
		assert.True(t, eris.Is(a.AddWrite(1), ErrAccessConflict))
	})

	t.Run("different components never conflict", func(t *testing.T) {
		t.Parallel()
		var a Access
		require.NoError(t, a.AddWrite(1))
		require.NoError(t, a.AddRead(2))
		require.NoError(t, a.AddWrite(3))
	})

	t.Run("clone is independent", func(t *testing.T) {
		t.Parallel()
		var a Access
		require.NoError(t, a.AddRead(1))
		c := a.Clone()
		require.NoError(t, c.AddWrite(2))
		assert.False(t, a.HasWrite(2))
		assert.True(t, c.HasRead(1))
	})
}

func TestAccess_IsCompatible(t *testing.T) {
	t.Parallel()

	access := func(reads, writes []ComponentID, exclusive bool) Access {
		var a Access
		for _, r := range reads {
			require.NoError(t, a.AddRead(r))
		}
		for _, w := range writes {
			require.NoError(t, a.AddWrite(w))
		}
		if exclusive {
			a.SetExclusive()
		}
		return a
	}

	tests := []struct {
		name string
		a, b Access
		want bool
	}{
		{name: "empty", a: access(nil, nil, false), b: access(nil, nil, false), want: true},
		{name: "shared reads", a: access([]ComponentID{1}, nil, false), b: access([]ComponentID{1}, nil, false), want: true},
		{name: "read and write", a: access([]ComponentID{1}, nil, false), b: access(nil, []ComponentID{1}, false), want: false},
		{name: "write and read", a: access(nil, []ComponentID{1}, false), b: access([]ComponentID{1}, nil, false), want: false},
		{name: "two writes", a: access(nil, []ComponentID{1}, false), b: access(nil, []ComponentID{1}, false), want: false},
		{name: "disjoint writes", a: access(nil, []ComponentID{1}, false), b: access(nil, []ComponentID{2}, false), want: true},
		{name: "exclusive", a: access(nil, nil, true), b: access(nil, nil, false), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.a.IsCompatible(&tt.b))
			assert.Equal(t, tt.want, tt.b.IsCompatible(&tt.a), "compatibility must be symmetric")
		})
	}
}

func TestAccess_Extend(t *testing.T) {
	t.Parallel()

	var a, b Access
	require.NoError(t, a.AddRead(1))
	require.NoError(t, b.AddWrite(1))
	b.SetExclusive()

	a.Extend(&b)
	assert.True(t, a.HasRead(1))
	assert.True(t, a.HasWrite(1))
	assert.True(t, a.exclusive)
}
