package lines

import (
	"fmt"

	"github.com/rjkroege/madlines/store"
	"github.com/rjkroege/madlines/util"
)

// A Block is a byte range [Pos, Pos+Size) of a backing store. Lines are
// made of blocks; the bytes themselves never move when lines are split,
// joined or edited.
type Block struct {
	Store store.Reader
	Pos   int64
	Size  int64
}

// contiguous reports whether c starts where b ends in the same store.
func (b Block) contiguous(c Block) bool {
	return b.Store == c.Store && b.Pos+b.Size == c.Pos
}

// blocksSize returns the sum of the block sizes.
func blocksSize(bs []Block) int64 {
	var n int64
	for _, b := range bs {
		n += b.Size
	}
	return n
}

// splitBlocks divides bs at byte offset off. The block straddling off is
// cut in two. Neither result shares a backing array with bs or holds
// an empty block.
func splitBlocks(bs []Block, off int64) (left, right []Block) {
	for i, b := range bs {
		if off <= 0 {
			right = append(right, bs[i:]...)
			break
		}
		if off >= b.Size {
			left = append(left, b)
			off -= b.Size
			continue
		}
		left = append(left, Block{b.Store, b.Pos, off})
		right = append(right, Block{b.Store, b.Pos + off, b.Size - off})
		right = append(right, bs[i+1:]...)
		break
	}
	return dropEmpty(left), dropEmpty(right)
}

// joinBlocks appends b to a, merging the boundary blocks when they are
// contiguous in the same store.
func joinBlocks(a, b []Block) []Block {
	b = dropEmpty(b)
	if len(b) == 0 {
		return a
	}
	a = dropEmpty(a)
	if n := len(a); n > 0 && a[n-1].contiguous(b[0]) {
		a[n-1].Size += b[0].Size
		b = b[1:]
	}
	return append(a, b...)
}

func dropEmpty(bs []Block) []Block {
	out := bs[:0]
	for _, b := range bs {
		if b.Size > 0 {
			out = append(out, b)
		}
	}
	return out
}

// readBlocks fills buf with the bytes at off in the concatenation of bs.
func readBlocks(bs []Block, off int64, buf []byte) {
	for _, b := range bs {
		if len(buf) == 0 {
			return
		}
		if off >= b.Size {
			off -= b.Size
			continue
		}
		n := b.Size - off
		if n > int64(len(buf)) {
			n = int64(len(buf))
		}
		b.Store.GetRange(b.Pos+off, buf[:n])
		buf = buf[n:]
		off = 0
	}
	if len(buf) > 0 {
		util.InternalError("readBlocks", fmt.Errorf("%d bytes past the end of the blocks", len(buf)))
	}
}

// compactBlocks merges neighbours that are contiguous in one store.
func compactBlocks(bs []Block) []Block {
	out := bs[:0]
	for _, b := range bs {
		if b.Size == 0 {
			continue
		}
		if n := len(out); n > 0 && out[n-1].contiguous(b) {
			out[n-1].Size += b.Size
			continue
		}
		out = append(out, b)
	}
	return out
}
