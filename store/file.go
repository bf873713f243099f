package store

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"

	"github.com/rjkroege/madlines/util"
)

// FileStore is a store backed by an open file. Reads go through two
// BufferSize windows: buf1 holds the most recently loaded block and buf2
// the one before it. Writes go to the save cursor and invalidate both
// windows.
type FileStore struct {
	name     string
	f        *os.File
	size     int64
	readOnly bool

	buf1, buf2 []byte // valid bytes of each window
	pos1, pos2 int64  // file offset of each window, -1 when empty
	back1      []byte // backing arrays
	back2      []byte

	savePos int64
	err     error // first I/O error
}

// Open opens name for reading and writing, or for reading only when the
// file cannot be written. A missing file, a directory and an unreadable
// file are all errors, distinguishable with errors.Is against
// fs.ErrNotExist, ErrIsDir and fs.ErrPermission.
func Open(name string) (*FileStore, error) {
	fi, err := os.Stat(name)
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("open %s: %w", name, ErrIsDir)
	}
	d := &FileStore{name: name}
	if err := d.open(); err != nil {
		return nil, err
	}
	return d, nil
}

// Create opens name for reading and writing, creating it if needed.
// The content of an existing file is preserved.
func Create(name string) (*FileStore, error) {
	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE, 0666)
	if err != nil {
		return nil, err
	}
	f.Close()
	return Open(name)
}

// CreateTemp creates a new empty file in dir to hold spilled data. The
// caller removes it with Remove.
func CreateTemp(dir, pattern string) (*FileStore, error) {
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return nil, err
	}
	d := &FileStore{name: f.Name(), f: f}
	d.allocate()
	return d, nil
}

func (d *FileStore) allocate() {
	d.back1 = make([]byte, BufferSize)
	d.back2 = make([]byte, BufferSize)
	d.pos1, d.pos2 = -1, -1
}

func (d *FileStore) open() error {
	f, err := os.OpenFile(d.name, os.O_RDWR, 0)
	d.readOnly = false
	if err != nil {
		if !errors.Is(err, fs.ErrPermission) {
			return err
		}
		f, err = os.Open(d.name)
		if err != nil {
			return err
		}
		d.readOnly = true
	}
	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		f.Close()
		return err
	}
	d.f = f
	d.size = size
	d.allocate()

	// The first block is nearly always wanted right away.
	d.pos1 = 0
	d.buf1 = d.back1[:min(size, BufferSize)]
	d.read(d.buf1, 0)
	return nil
}

// Name returns the file name.
func (d *FileStore) Name() string { return d.name }

// Size returns the current file size as seen by the store.
func (d *FileStore) Size() int64 { return d.size }

// ReadOnly reports whether the file could only be opened for reading.
func (d *FileStore) ReadOnly() bool { return d.readOnly }

// Err returns the first I/O error seen by the store.
func (d *FileStore) Err() error { return d.err }

// Stat returns the file info of the open file.
func (d *FileStore) Stat() (os.FileInfo, error) {
	if d.f == nil {
		return nil, ErrClosed
	}
	return d.f.Stat()
}

func (d *FileStore) fail(err error) {
	if d.err == nil {
		log.Printf("%s: %v", d.name, err)
		d.err = err
	}
}

func (d *FileStore) read(buf []byte, pos int64) {
	if d.f == nil {
		d.fail(ErrClosed)
		return
	}
	n, err := d.f.ReadAt(buf, pos)
	if n < len(buf) {
		if err == nil || err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		d.fail(fmt.Errorf("reading %d bytes at %d: %w", len(buf), pos, err))
	}
}

func (d *FileStore) check(pos, n int64) {
	if pos < 0 || n < 0 || pos+n > d.size {
		util.InternalError("FileStore read", fmt.Errorf("range [%d,%d) outside [0,%d)", pos, pos+n, d.size))
	}
}

// load swaps the windows and reads the block at base into buf1.
func (d *FileStore) load(base int64) {
	if d.pos1 >= 0 {
		d.back1, d.back2 = d.back2, d.back1
		d.buf2, d.pos2 = d.buf1, d.pos1
	}
	d.pos1 = base
	d.buf1 = d.back1[:min(d.size-base, BufferSize)]
	d.read(d.buf1, base)
}

// window returns the cached window holding [pos, pos+n), or nil.
func (d *FileStore) window(pos, n int64) []byte {
	if d.pos1 >= 0 {
		if idx := pos - d.pos1; idx >= 0 && idx+n <= int64(len(d.buf1)) {
			return d.buf1[idx : idx+n]
		}
	}
	if d.pos2 >= 0 {
		if idx := pos - d.pos2; idx >= 0 && idx+n <= int64(len(d.buf2)) {
			return d.buf2[idx : idx+n]
		}
	}
	return nil
}

// Get returns the byte at pos.
func (d *FileStore) Get(pos int64) byte {
	d.check(pos, 1)
	if w := d.window(pos, 1); w != nil {
		return w[0]
	}
	d.load(pos & bufferBaseMask)
	return d.buf1[pos-d.pos1]
}

// GetRange fills buf from pos. A range inside one aligned block is
// served through the windows; a range crossing blocks is read directly.
func (d *FileStore) GetRange(pos int64, buf []byte) {
	n := int64(len(buf))
	d.check(pos, n)
	if n == 0 {
		return
	}
	if w := d.window(pos, n); w != nil {
		copy(buf, w)
		return
	}
	base := pos & bufferBaseMask
	if pos+n <= base+BufferSize {
		d.load(base)
		copy(buf, d.buf1[pos-base:])
		return
	}
	d.read(buf, pos)
}

// SetSavePos moves the write cursor used by Put.
func (d *FileStore) SetSavePos(pos int64) { d.savePos = pos }

// Put writes buf at the write cursor, advances it and returns the offset
// written at.
func (d *FileStore) Put(buf []byte) int64 {
	pos := d.savePos
	if d.f == nil {
		d.fail(ErrClosed)
		return pos
	}
	if _, err := d.f.WriteAt(buf, pos); err != nil {
		d.fail(err)
	}
	d.savePos += int64(len(buf))
	if d.size < d.savePos {
		d.size = d.savePos
	}
	d.pos1, d.pos2 = -1, -1
	return pos
}

// Truncate changes the file size.
func (d *FileStore) Truncate(size int64) error {
	if d.f == nil {
		return ErrClosed
	}
	if err := d.f.Truncate(size); err != nil {
		return err
	}
	d.size = size
	d.pos1, d.pos2 = -1, -1
	return nil
}

// Sync commits the file content to stable storage.
func (d *FileStore) Sync() error {
	if d.f == nil {
		return ErrClosed
	}
	return d.f.Sync()
}

// Close closes the file.
func (d *FileStore) Close() error {
	if d.f == nil {
		return nil
	}
	err := d.f.Close()
	d.f = nil
	d.pos1, d.pos2 = -1, -1
	return err
}

// Remove closes the file and deletes it.
func (d *FileStore) Remove() error {
	d.Close()
	return os.Remove(d.name)
}
