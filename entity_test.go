package aspen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCreateNeverNull(t *testing.T) {
	r := NewEntityRegistry()
	for range 100 {
		e := r.Create()
		require.False(t, e.IsNull())
		assert.NotZero(t, e.Generation)
	}
	assert.Equal(t, 100, r.Len())
}

func TestRegistryRecyclesWithNewGeneration(t *testing.T) {
	r := NewEntityRegistry()
	a := r.Create()
	require.True(t, r.Destroy(a))
	assert.False(t, r.Alive(a))

	b := r.Create()
	assert.Equal(t, a.Index, b.Index)
	assert.NotEqual(t, a.Generation, b.Generation)
	assert.True(t, r.Alive(b))
	assert.False(t, r.Alive(a), "stale handle must stay dead")
}

func TestRegistryDestroyStale(t *testing.T) {
	r := NewEntityRegistry()
	a := r.Create()
	r.Destroy(a)
	assert.False(t, r.Destroy(a))
	assert.False(t, r.Destroy(Null))
	assert.False(t, r.Destroy(Entity{Index: 50, Generation: 1}))
	assert.Equal(t, 0, r.Len())
}

func TestRegistryExhausted(t *testing.T) {
	r := NewEntityRegistry()
	r.limit = 2
	r.Create()
	r.Create()
	assert.Equal(t, Null, r.Create())
}

func TestEntityString(t *testing.T) {
	assert.Equal(t, "entity(null)", Null.String())
	assert.Equal(t, "entity(3:2)", Entity{Index: 3, Generation: 2}.String())
}
