// Package series models a DICOM series whose instances arrive one by one,
// together with the patient, study and equipment objects it references.
package series

import (
	"fmt"

	dserrors "github.com/mrsinham/dicomseries/internal/errors"
)

// Object is implemented by every copyable data object of the series graph.
type Object interface {
	// ShallowCopy replaces the receiver state with source's, sharing any
	// reference-typed storage.
	ShallowCopy(source Object) error
	// DeepCopy replaces the receiver state with an independent copy of
	// source's. Sub-objects already present in cache are reused.
	DeepCopy(source Object, cache CopyCache) error
}

// CopyCache maps source objects to their deep copies so that an object
// reachable from several parents is copied once per deep-copy pass.
type CopyCache map[Object]Object

// register records dst as the copy of source unless one is already known.
func (c CopyCache) register(source, dst Object) {
	if c == nil {
		return
	}
	if _, ok := c[source]; !ok {
		c[source] = dst
	}
}

// DeepCopyOf returns the deep copy of source, creating it only if cache does
// not already hold one. A nil source yields nil.
func DeepCopyOf[T any, PT interface {
	*T
	Object
}](source PT, cache CopyCache) (PT, error) {
	var zero PT
	if source == zero {
		return zero, nil
	}

	if cached, ok := cache[source]; ok {
		dst, ok := cached.(PT)
		if !ok {
			return zero, dserrors.NewTypeMismatchError("deep copy", fmt.Sprintf("%T", source), cached)
		}
		return dst, nil
	}

	dst := PT(new(T))
	if err := dst.DeepCopy(source, cache); err != nil {
		return zero, err
	}
	return dst, nil
}

// sourceAs casts source to *T, failing with a type mismatch for any other
// type or a nil pointer.
func sourceAs[T any](operation string, source Object) (*T, error) {
	src, ok := any(source).(*T)
	if !ok || src == nil {
		return nil, dserrors.NewTypeMismatchError(operation, fmt.Sprintf("%T", (*T)(nil)), source)
	}
	return src, nil
}
