package lines

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rjkroege/madlines/store"
	"github.com/rjkroege/madlines/syntax"
)

// SaveToFile writes the document to filename. Saving over the file the
// document was loaded from rewrites it in place; bytes the rewrite
// would overwrite before reading are first spilled to memory or to a
// temporary file in tempDir. An empty tempDir selects Config.TempDir.
func (d *Lines) SaveToFile(filename, tempDir string) error {
	var err error
	switch {
	case d.file != nil && d.sameFile(filename):
		err = d.saveInPlace(filename, tempDir)
	default:
		if d.readOnly && d.sameFile(filename) {
			return fmt.Errorf("save %s: %w", filename, ErrReadOnly)
		}
		err = d.saveAs(filename)
	}
	if err != nil {
		return err
	}
	d.recordDisk()
	if !d.manualSyntax {
		d.setSyntax(d.detectSyntax(filename))
	}
	return nil
}

func (d *Lines) sameFile(filename string) bool {
	if d.name == "" {
		return false
	}
	if filename == d.name {
		return true
	}
	a, err := os.Stat(filename)
	if err != nil {
		return false
	}
	b, err := os.Stat(d.name)
	if err != nil {
		return false
	}
	return os.SameFile(a, b)
}

func (d *Lines) detectSyntax(filename string) *syntax.Syntax {
	head := make([]byte, min(d.size, syntax.MaxFirstLine))
	if len(head) > 0 {
		d.ReadAt(head, 0)
	}
	return d.syntaxes.ForFile(filename, head)
}

// allBlocks returns the blocks of the document in order.
func (d *Lines) allBlocks() []*Block {
	var bs []*Block
	for l := d.list.front(); l != nil; l = l.Next() {
		for i := range l.Blocks {
			bs = append(bs, &l.Blocks[i])
		}
	}
	return bs
}

func (d *Lines) compact() {
	for l := d.list.front(); l != nil; l = l.Next() {
		l.Blocks = compactBlocks(l.Blocks)
	}
}

// copyBlock appends the bytes of b to dst and returns the offset they
// were written at.
func copyBlock(dst store.Store, b *Block, buf []byte) int64 {
	pos := int64(-1)
	for off := int64(0); off < b.Size; {
		n := min(b.Size-off, int64(len(buf)))
		b.Store.GetRange(b.Pos+off, buf[:n])
		p := dst.Put(buf[:n])
		if pos < 0 {
			pos = p
		}
		off += n
	}
	return pos
}

// saveAs writes the document to a file other than the one it refers
// to. Blocks of the old file are moved to the new one once it has been
// written completely.
func (d *Lines) saveAs(filename string) error {
	target, err := store.Create(filename)
	if err != nil {
		return err
	}
	if target.ReadOnly() {
		target.Close()
		return fmt.Errorf("save %s: %w", filename, ErrReadOnly)
	}

	bs := d.allBlocks()
	pos := make([]int64, len(bs))
	buf := make([]byte, store.BufferSize)
	target.SetSavePos(0)
	for i, b := range bs {
		pos[i] = copyBlock(target, b, buf)
	}
	if err := finishFile(target, d.size); err != nil {
		target.Close()
		return fmt.Errorf("save %s: %w", filename, err)
	}

	if d.file == nil {
		target.Close()
	} else {
		for i, b := range bs {
			if b.Store == store.Reader(d.file) {
				b.Store = target
				b.Pos = pos[i]
			}
		}
		d.file.Close()
		d.file = target
		d.compact()
	}
	d.name = filename
	d.readOnly = false
	return nil
}

// finishFile truncates f to size and flushes it.
func finishFile(f *store.FileStore, size int64) error {
	if err := f.Err(); err != nil {
		return err
	}
	if f.Size() > size {
		if err := f.Truncate(size); err != nil {
			return err
		}
	}
	return f.Sync()
}

// inPlaceSchedule walks the blocks in document order, calling write
// with the offset each block belongs at. Before a block is written,
// every block of file that has not been written yet and whose source
// bytes overlap the target range is passed to spill. Blocks already at
// their offset are skipped.
func inPlaceSchedule(bs []*Block, file store.Reader, spill func(*Block), write func(*Block, int64)) {
	type source struct {
		idx       int
		pos, size int64
	}
	target := make([]int64, len(bs))
	var pending []source
	var off int64
	for i, b := range bs {
		target[i] = off
		if b.Store == file && b.Pos != off {
			pending = append(pending, source{i, b.Pos, b.Size})
		}
		off += b.Size
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].pos < pending[j].pos })

	written := make([]bool, len(bs))
	lo := 0
	for i, b := range bs {
		end := target[i] + b.Size
		for ; lo < len(pending) && pending[lo].pos < end; lo++ {
			p := pending[lo]
			if written[p.idx] || p.pos+p.size <= target[i] {
				continue
			}
			// moving left, a block may overwrite itself front to back
			if p.idx == i && p.pos > target[i] {
				continue
			}
			spill(bs[p.idx])
		}
		if b.Store == file && b.Pos == target[i] {
			continue
		}
		write(b, target[i])
		written[i] = true
	}
}

// MaxTempSize returns how many bytes saving the document to filename
// would spill.
func (d *Lines) MaxTempSize(filename string) int64 {
	if d.file == nil || !d.sameFile(filename) {
		return 0
	}
	var n int64
	inPlaceSchedule(d.allBlocks(), d.file, func(b *Block) { n += b.Size }, func(*Block, int64) {})
	return n
}

func (d *Lines) saveInPlace(filename, tempDir string) error {
	if d.readOnly {
		return fmt.Errorf("save %s: %w", filename, ErrReadOnly)
	}

	var tmp store.Store
	if need := d.MaxTempSize(filename); need > 0 {
		if tempDir == "" {
			tempDir = d.cfg.TempDir
		}
		free := d.freeMemory()
		if tempDir == "" && (free < 0 || need*2+memoryHeadroom < free) {
			tmp = store.NewMemStore()
		} else {
			if tempDir == "" {
				tempDir = filepath.Dir(filename)
			}
			ft, err := store.CreateTemp(tempDir, filepath.Base(filename)+".*.tmp")
			if err != nil {
				return fmt.Errorf("save %s: %w", filename, err)
			}
			defer ft.Remove()
			tmp = ft
		}
	}

	buf := make([]byte, store.BufferSize)
	spill := func(b *Block) {
		b.Pos = copyBlock(tmp, b, buf)
		b.Store = tmp
	}
	write := func(b *Block, pos int64) {
		d.file.SetSavePos(pos)
		copyBlock(d.file, b, buf)
		if b.Store != store.Reader(d.mem) {
			b.Store = d.file
			b.Pos = pos
		}
	}
	inPlaceSchedule(d.allBlocks(), d.file, spill, write)

	if ft, ok := tmp.(*store.FileStore); ok {
		if err := ft.Err(); err != nil {
			return fmt.Errorf("save %s: spill: %w", filename, err)
		}
	}
	if err := finishFile(d.file, d.size); err != nil {
		return fmt.Errorf("save %s: %w", filename, err)
	}
	d.compact()
	return nil
}
