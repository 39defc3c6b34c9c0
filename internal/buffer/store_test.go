package buffer

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dserrors "github.com/mrsinham/dicomseries/internal/errors"
)

func TestStore_Availability(t *testing.T) {
	s := NewStore()
	path := writeTempFile(t, "IM000005", []byte("five"))

	indices := []uint64{5, 0, 1000}
	for _, i := range indices {
		assert.False(t, s.IsAvailable(i), "index %d before registration", i)
	}

	require.NoError(t, s.RegisterFile(5, path))
	assert.True(t, s.IsAvailable(5))
	assert.False(t, s.IsAvailable(0))

	s.RegisterBuffer(0, []byte("zero"))
	assert.True(t, s.IsAvailable(0))
	assert.True(t, s.IsAvailable(5))
	assert.False(t, s.IsAvailable(1000))

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []uint64{0, 5}, s.Indices())
}

func TestStore_RegisterFileNotFound(t *testing.T) {
	s := NewStore()
	s.RegisterBuffer(2, []byte("kept"))

	err := s.RegisterFile(2, filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, dserrors.ErrNotFound))

	var instErr *dserrors.InstanceError
	require.True(t, errors.As(err, &instErr))
	assert.Equal(t, uint64(2), instErr.Index)

	data, err := s.Bytes(2)
	require.NoError(t, err)
	assert.Equal(t, "kept", string(data), "failed registration must not touch the existing record")
}

func TestStore_LastWriteWins(t *testing.T) {
	s := NewStore()
	s.RegisterBuffer(1, []byte("first"))
	s.RegisterBuffer(1, []byte("second"))

	data, err := s.Bytes(1)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
	assert.Equal(t, 1, s.Len())
}

func TestStore_BytesUnavailable(t *testing.T) {
	s := NewStore()

	_, err := s.Bytes(3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, dserrors.ErrUnavailable))
}

func TestStore_ClearKeepsSharedBuffers(t *testing.T) {
	s := NewStore()
	shared := NewMemoryBuffer([]byte("shared"))
	s.RegisterShared(4, shared)

	other := NewStore()
	other.RegisterShared(4, shared)

	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.IsAvailable(4))

	data, err := other.Bytes(4)
	require.NoError(t, err)
	assert.Equal(t, "shared", string(data))
}

func TestStore_RegisterSharedNilRemoves(t *testing.T) {
	s := NewStore()
	s.RegisterBuffer(1, []byte("x"))
	s.RegisterShared(1, nil)
	assert.False(t, s.IsAvailable(1))
}

func TestStore_RecordsIsACopy(t *testing.T) {
	s := NewStore()
	s.RegisterBuffer(1, []byte("x"))

	records := s.Records()
	delete(records, 1)

	assert.True(t, s.IsAvailable(1))
}

func TestStore_Equal(t *testing.T) {
	a := NewStore()
	a.RegisterBuffer(1, []byte("one"))
	a.RegisterBuffer(2, []byte("two"))

	b := NewStore()
	b.RegisterBuffer(2, []byte("two"))
	b.RegisterBuffer(1, []byte("one"))
	assert.True(t, a.Equal(b))

	b.RegisterBuffer(2, []byte("TWO"))
	assert.False(t, a.Equal(b))

	c := NewStore()
	c.RegisterBuffer(1, []byte("one"))
	c.RegisterBuffer(3, []byte("two"))
	assert.False(t, a.Equal(c))

	assert.False(t, a.Equal(NewStore()))
}
