package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerationStoreEvictsOldest(t *testing.T) {
	t.Parallel()
	s := NewGenerationStore(2)
	s.Put(GenerateResponse{ID: "a"})
	s.Put(GenerateResponse{ID: "b"})
	s.Put(GenerateResponse{ID: "c"})

	_, ok := s.Get("a")
	assert.False(t, ok)
	got, ok := s.Get("c")
	require.True(t, ok)
	assert.Equal(t, "c", got.ID)
	assert.Equal(t, 2, s.Len())
}

func TestGenerationStoreReplaceAndDelete(t *testing.T) {
	t.Parallel()
	s := NewGenerationStore(0)
	s.Put(GenerateResponse{ID: "a", Text: "one"})
	s.Put(GenerateResponse{ID: "a", Text: "two"})
	assert.Equal(t, 1, s.Len())
	got, _ := s.Get("a")
	assert.Equal(t, "two", got.Text)

	assert.True(t, s.Delete("a"))
	assert.False(t, s.Delete("a"))
	assert.Zero(t, s.Len())
}
