package ecs

import (
	"testing"

	. "github.com/argus-labs/ecsfilter/ecs/internal/testutils"
	"github.com/argus-labs/ecsfilter/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------------------------------------------------------------------------------------------------
// Model-based fuzzing sparse set operations
// -------------------------------------------------------------------------------------------------
// Compares the sparseSet against a Go map by applying random sequences of set/get/remove operations
// to both and asserting equivalence.
// -------------------------------------------------------------------------------------------------

func TestSparseSet_ModelFuzz(t *testing.T) {
	t.Parallel()
	prng := testutils.NewRand(t)

	impl := newSparseSet()
	model := make(map[EntityID]int, sparseCapacity)

	const (
		opsMax = 1 << 15
		maxKey = 10_000
	)

	for range opsMax {
		key := EntityID(prng.IntN(maxKey))

		switch testutils.RandWeightedOp(prng, sparseOps) {
		case s_set:
			value := prng.IntN(1 << 20)
			impl.set(key, value)
			model[key] = value

			// Property: get(k) after set(k) must exist and return the same value.
			got, ok := impl.get(key)
			assert.True(t, ok, "set(%d) then get should exist", key)
			assert.Equal(t, value, got, "set(%d) then get value mismatch", key)

		case s_get:
			// Bias toward existing keys to test value retrieval path.
			if len(model) > 0 && prng.Float64() < 0.8 {
				key = testutils.RandMapKey(prng, model)
			}
			gotImpl, okImpl := impl.get(key)
			gotModel, okModel := model[key]

			// Property: get(k) returns same existence and value as model.
			assert.Equal(t, okModel, okImpl, "get(%d) existence mismatch", key)
			if okImpl {
				assert.Equal(t, gotModel, gotImpl, "get(%d) value mismatch", key)
			}

		case s_remove:
			if len(model) > 0 && prng.Float64() < 0.8 {
				key = testutils.RandMapKey(prng, model)
			}
			_, existed := model[key]
			delete(model, key)

			// Property: remove returns whether the key existed, and the key is gone afterwards.
			assert.Equal(t, existed, impl.remove(key), "remove(%d) existence mismatch", key)
			_, ok := impl.get(key)
			assert.False(t, ok, "remove(%d) then get should not exist", key)

		default:
			panic("unreachable")
		}
	}

	for key, want := range model {
		got, ok := impl.get(key)
		assert.True(t, ok, "key %d missing", key)
		assert.Equal(t, want, got, "key %d value mismatch", key)
	}
}

type sparseOp uint8

const (
	s_set    sparseOp = 55
	s_remove sparseOp = 35
	s_get    sparseOp = 10
)

var sparseOps = []sparseOp{s_set, s_remove, s_get}

// -------------------------------------------------------------------------------------------------
// Model-based fuzzing sparse store operations
// -------------------------------------------------------------------------------------------------

func TestSparseStore_ModelFuzz(t *testing.T) {
	t.Parallel()
	prng := testutils.NewRand(t)

	impl := newSparseStore[Poison]()
	model := make(map[EntityID]Poison)

	const (
		opsMax = 1 << 14
		maxKey = 2_000
	)

	for range opsMax {
		eid := EntityID(prng.IntN(maxKey))

		switch testutils.RandWeightedOp(prng, sparseOps) {
		case s_set:
			value := Poison{Damage: prng.Int()}
			impl.set(eid, value)
			model[eid] = value

			got, ok := impl.get(eid)
			require.True(t, ok)
			assert.Equal(t, value, *got)

		case s_get:
			if len(model) > 0 && prng.Float64() < 0.8 {
				eid = testutils.RandMapKey(prng, model)
			}
			got, ok := impl.get(eid)
			want, exists := model[eid]
			assert.Equal(t, exists, ok, "get(%d) existence mismatch", eid)
			if ok {
				assert.Equal(t, want, *got, "get(%d) value mismatch", eid)
			}

		case s_remove:
			if len(model) > 0 && prng.Float64() < 0.8 {
				eid = testutils.RandMapKey(prng, model)
			}
			_, existed := model[eid]
			delete(model, eid)
			assert.Equal(t, existed, impl.remove(eid), "remove(%d) existence mismatch", eid)

		default:
			panic("unreachable")
		}

		// Property: values and entities stay packed and parallel.
		require.Equal(t, len(model), impl.len())
		require.Len(t, impl.entities, len(impl.values))
	}

	for eid, want := range model {
		got, ok := impl.get(eid)
		require.True(t, ok, "entity %d missing", eid)
		assert.Equal(t, want, *got)
		slot, _ := impl.index.get(eid)
		assert.Equal(t, eid, impl.entities[slot], "index of entity %d points at another slot", eid)
	}
}

func TestSparseStore_Abstract(t *testing.T) {
	t.Parallel()

	var store abstractSparseStore = newSparseStore[Poison]()
	assert.Equal(t, "Poison", store.name())

	store.setAbstract(3, Poison{Damage: 7})
	assert.True(t, store.has(3))
	got, ok := store.getAbstract(3)
	require.True(t, ok)
	assert.Equal(t, Poison{Damage: 7}, got)

	assert.Panics(t, func() { store.setAbstract(4, Health{Value: 1}) })

	_, ok = store.getAbstract(4)
	assert.False(t, ok)
}
