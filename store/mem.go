package store

import (
	"fmt"

	"github.com/rjkroege/madlines/util"
)

// MemStore is a growable store made of BufferSize chunks. Chunks are
// allocated when a Put first reaches them and are kept across Reset.
type MemStore struct {
	buffers [][]byte
	size    int64
}

// NewMemStore returns an empty memory store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

// Size returns the number of bytes written so far.
func (m *MemStore) Size() int64 { return m.size }

// Reset empties the store. The allocated chunks are reused.
func (m *MemStore) Reset() { m.size = 0 }

func (m *MemStore) check(pos, n int64) {
	if pos < 0 || n < 0 || pos+n > m.size {
		util.InternalError("MemStore read", fmt.Errorf("range [%d,%d) outside [0,%d)", pos, pos+n, m.size))
	}
}

// Get returns the byte at pos.
func (m *MemStore) Get(pos int64) byte {
	m.check(pos, 1)
	return m.buffers[pos>>BufferBits][pos&bufferMask]
}

// GetRange fills buf from pos, crossing chunk boundaries as needed.
func (m *MemStore) GetRange(pos int64, buf []byte) {
	m.check(pos, int64(len(buf)))
	for len(buf) > 0 {
		n := copy(buf, m.buffers[pos>>BufferBits][pos&bufferMask:])
		buf = buf[n:]
		pos += int64(n)
	}
}

// Put appends buf and returns the offset of its first byte.
func (m *MemStore) Put(buf []byte) int64 {
	pos := m.size
	for len(buf) > 0 {
		idx := int(m.size >> BufferBits)
		for len(m.buffers) <= idx {
			m.buffers = append(m.buffers, make([]byte, BufferSize))
		}
		n := copy(m.buffers[idx][m.size&bufferMask:], buf)
		buf = buf[n:]
		m.size += int64(n)
	}
	return pos
}
