// Package store implements the backing stores that hold the raw bytes of
// a document.
//
// A document never owns its text as one contiguous slice. Lines refer to
// byte ranges of a Store instead: the file the document was loaded from,
// the in-memory store that receives everything typed or pasted, or a
// temporary store used while a file is rewritten in place.
package store

import "errors"

const (
	// BufferBits is log2 of the chunk size shared by all stores.
	BufferBits = 18
	// BufferSize is the size of one memory chunk and of one file read
	// window.
	BufferSize = 1 << BufferBits

	bufferMask     = BufferSize - 1
	bufferBaseMask = ^int64(bufferMask)
)

var (
	// ErrIsDir is returned when a directory is opened as a document.
	ErrIsDir = errors.New("is a directory")

	// ErrClosed is returned by operations on a closed FileStore.
	ErrClosed = errors.New("store is closed")
)

// Reader is the read side of a backing store. Reads outside of the
// written part of the store are internal errors.
type Reader interface {
	// Get returns the byte at pos.
	Get(pos int64) byte
	// GetRange fills buf with the bytes starting at pos.
	GetRange(pos int64, buf []byte)
}

// Store is a backing store that can also grow. Put appends buf at the
// store's write cursor and returns the offset it was written at.
type Store interface {
	Reader
	Put(buf []byte) int64
	Size() int64
}

var (
	_ Store = (*MemStore)(nil)
	_ Store = (*FileStore)(nil)
)
