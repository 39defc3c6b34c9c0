// Package buffer holds per-instance DICOM payloads, either in memory or backed
// by a file that is only read the first time its content is needed.
package buffer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"

	dserrors "github.com/mrsinham/dicomseries/internal/errors"
)

// Kind tells how a Buffer's content is stored.
type Kind int

const (
	// KindMemory buffers hold their bytes from construction.
	KindMemory Kind = iota
	// KindFile buffers reference a file read on first access.
	KindFile
)

// String returns the string representation of a Kind.
func (k Kind) String() string {
	switch k {
	case KindMemory:
		return "memory"
	case KindFile:
		return "file"
	default:
		return "unknown"
	}
}

// Buffer is the byte storage of one instance. A *Buffer is a shared handle:
// every holder sees the same bytes, and the storage lives as long as one
// holder does.
type Buffer struct {
	kind Kind
	path string
	size int64

	mu     sync.Mutex
	data   []byte
	loaded bool
}

// NewMemoryBuffer creates a buffer that takes ownership of data.
func NewMemoryBuffer(data []byte) *Buffer {
	return &Buffer{
		kind:   KindMemory,
		size:   int64(len(data)),
		data:   data,
		loaded: true,
	}
}

// NewFileBuffer creates a buffer backed by the file at path. The file size is
// captured now; the content is read on first call to Bytes.
func NewFileBuffer(path string) (*Buffer, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", dserrors.ErrNotFound, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", dserrors.ErrNotFound, path)
	}

	return &Buffer{
		kind: KindFile,
		path: path,
		size: info.Size(),
	}, nil
}

// Kind returns the storage kind the buffer was created with.
func (b *Buffer) Kind() Kind {
	return b.kind
}

// Path returns the backing file path, empty for memory buffers.
func (b *Buffer) Path() string {
	return b.path
}

// Size returns the byte length known at registration time. It does not change
// when a file buffer is loaded.
func (b *Buffer) Size() int64 {
	return b.size
}

// Loaded reports whether the content is materialized in memory.
func (b *Buffer) Loaded() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loaded
}

// Bytes returns the buffer content, reading the backing file if needed.
// The returned slice is the shared storage itself.
func (b *Buffer) Bytes() ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.loaded {
		return b.data, nil
	}

	data, err := os.ReadFile(b.path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", dserrors.ErrIO, b.path, err)
	}
	b.data = data
	b.loaded = true
	return b.data, nil
}

// Open returns a reader over the content. File buffers that are not loaded yet
// are streamed from disk without being materialized.
func (b *Buffer) Open() (io.ReadCloser, error) {
	b.mu.Lock()
	if b.loaded {
		data := b.data
		b.mu.Unlock()
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	b.mu.Unlock()

	f, err := os.Open(b.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", dserrors.ErrIO, b.path, err)
	}
	return f, nil
}

// Clone returns a new memory buffer holding a copy of the content.
func (b *Buffer) Clone() (*Buffer, error) {
	data, err := b.Bytes()
	if err != nil {
		return nil, err
	}
	dup := make([]byte, len(data))
	copy(dup, data)
	return NewMemoryBuffer(dup), nil
}

// Equal reports whether both buffers hold the same bytes. A buffer whose
// content cannot be read is never equal to anything but itself.
func (b *Buffer) Equal(other *Buffer) bool {
	if b == other {
		return true
	}
	if b == nil || other == nil {
		return false
	}
	left, err := b.Bytes()
	if err != nil {
		return false
	}
	right, err := other.Bytes()
	if err != nil {
		return false
	}
	return bytes.Equal(left, right)
}
