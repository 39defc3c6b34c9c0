package buffer

import (
	"maps"
	"slices"

	dserrors "github.com/mrsinham/dicomseries/internal/errors"
)

// Store maps series-local instance indices to buffers. Indices need not be
// contiguous. Registering an index twice replaces the previous buffer.
//
// Store does no locking; callers sharing one across goroutines serialize access.
type Store struct {
	records map[uint64]*Buffer
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		records: make(map[uint64]*Buffer),
	}
}

// RegisterFile registers the file at path for index. The path must exist;
// its content is not read until requested.
func (s *Store) RegisterFile(index uint64, path string) error {
	buf, err := NewFileBuffer(path)
	if err != nil {
		return dserrors.NewInstanceError(index, path, err)
	}
	s.records[index] = buf
	return nil
}

// RegisterBuffer registers an in-memory payload for index. The store takes
// ownership of data.
func (s *Store) RegisterBuffer(index uint64, data []byte) {
	s.records[index] = NewMemoryBuffer(data)
}

// RegisterShared registers an existing buffer handle for index, sharing its
// storage with any other holder.
func (s *Store) RegisterShared(index uint64, buf *Buffer) {
	if buf == nil {
		delete(s.records, index)
		return
	}
	s.records[index] = buf
}

// IsAvailable reports whether index has a registered buffer. It does no I/O.
func (s *Store) IsAvailable(index uint64) bool {
	_, ok := s.records[index]
	return ok
}

// Get returns the buffer registered for index.
func (s *Store) Get(index uint64) (*Buffer, bool) {
	buf, ok := s.records[index]
	return buf, ok
}

// Bytes returns the content of the buffer registered for index.
func (s *Store) Bytes(index uint64) ([]byte, error) {
	buf, ok := s.records[index]
	if !ok {
		return nil, dserrors.NewInstanceError(index, "", dserrors.ErrUnavailable)
	}
	data, err := buf.Bytes()
	if err != nil {
		return nil, dserrors.NewInstanceError(index, buf.Path(), err)
	}
	return data, nil
}

// Len returns the number of registered buffers.
func (s *Store) Len() int {
	return len(s.records)
}

// Indices returns the registered indices in ascending order.
func (s *Store) Indices() []uint64 {
	return slices.Sorted(maps.Keys(s.records))
}

// Records returns a copy of the index to buffer mapping. Buffers are shared.
func (s *Store) Records() map[uint64]*Buffer {
	return maps.Clone(s.records)
}

// Clear releases every record. Buffers still held elsewhere stay valid.
func (s *Store) Clear() {
	clear(s.records)
}

// Equal reports whether both stores hold the same indices with byte-identical
// buffers.
func (s *Store) Equal(other *Store) bool {
	if s.Len() != other.Len() {
		return false
	}
	for index, buf := range s.records {
		otherBuf, ok := other.records[index]
		if !ok || !buf.Equal(otherBuf) {
			return false
		}
	}
	return true
}
