package store

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, content []byte) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "data.bin")
	if err := os.WriteFile(name, content, 0644); err != nil {
		t.Fatalf("can't write %s: %v", name, err)
	}
	return name
}

func TestOpenErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Open(filepath.Join(dir, "missing"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Open of missing file: got %v, want fs.ErrNotExist", err)
	}
	_, err = Open(dir)
	if !errors.Is(err, ErrIsDir) {
		t.Errorf("Open of directory: got %v, want ErrIsDir", err)
	}
}

func TestOpenReadOnlyFallback(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	name := writeTemp(t, []byte("locked"))
	if err := os.Chmod(name, 0444); err != nil {
		t.Fatal(err)
	}
	d, err := Open(name)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer d.Close()
	if !d.ReadOnly() {
		t.Errorf("store should be read-only")
	}
	if got, want := d.Get(0), byte('l'); got != want {
		t.Errorf("Get(0) = %q, want %q", got, want)
	}
}

func TestFileStoreWindows(t *testing.T) {
	content := pattern(3*BufferSize + 100)
	d, err := Open(writeTemp(t, content))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer d.Close()

	if got, want := d.Size(), int64(len(content)); got != want {
		t.Fatalf("Size %d, want %d", got, want)
	}
	if got, want := d.pos1, int64(0); got != want {
		t.Errorf("first block not preloaded: pos1 %d, want %d", got, want)
	}

	if got, want := d.Get(BufferSize+5), content[BufferSize+5]; got != want {
		t.Errorf("Get = %d, want %d", got, want)
	}
	if got, want := [2]int64{d.pos1, d.pos2}, [2]int64{BufferSize, 0}; got != want {
		t.Errorf("after miss windows at %v, want %v", got, want)
	}

	// A hit in the older window leaves the windows alone.
	if got, want := d.Get(3), content[3]; got != want {
		t.Errorf("Get = %d, want %d", got, want)
	}
	if got, want := [2]int64{d.pos1, d.pos2}, [2]int64{BufferSize, 0}; got != want {
		t.Errorf("after hit windows at %v, want %v", got, want)
	}

	// A range inside the last, short block loads it.
	buf := make([]byte, 50)
	d.GetRange(3*BufferSize+10, buf)
	if !bytes.Equal(buf, content[3*BufferSize+10:3*BufferSize+60]) {
		t.Errorf("GetRange in last block returned wrong bytes")
	}
	if got, want := [2]int64{d.pos1, d.pos2}, [2]int64{3 * BufferSize, BufferSize}; got != want {
		t.Errorf("after range miss windows at %v, want %v", got, want)
	}

	// A range crossing blocks is read directly.
	buf = make([]byte, 100)
	d.GetRange(2*BufferSize-50, buf)
	if !bytes.Equal(buf, content[2*BufferSize-50:2*BufferSize+50]) {
		t.Errorf("GetRange across blocks returned wrong bytes")
	}
	if got, want := [2]int64{d.pos1, d.pos2}, [2]int64{3 * BufferSize, BufferSize}; got != want {
		t.Errorf("direct read moved windows to %v, want %v", got, want)
	}
	if err := d.Err(); err != nil {
		t.Errorf("unexpected store error %v", err)
	}
}

func TestFileStorePutTruncate(t *testing.T) {
	name := writeTemp(t, []byte("0123456789"))
	d, err := Open(name)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer d.Close()

	d.SetSavePos(8)
	if got, want := d.Put([]byte("abcd")), int64(8); got != want {
		t.Errorf("Put at %d, want %d", got, want)
	}
	if got, want := d.Size(), int64(12); got != want {
		t.Errorf("Size %d, want %d", got, want)
	}
	if got, want := [2]int64{d.pos1, d.pos2}, [2]int64{-1, -1}; got != want {
		t.Errorf("Put kept windows %v", got)
	}
	buf := make([]byte, 12)
	d.GetRange(0, buf)
	if got, want := string(buf), "01234567abcd"; got != want {
		t.Errorf("content %q, want %q", got, want)
	}

	if err := d.Truncate(4); err != nil {
		t.Fatalf("Truncate failed: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(b), "0123"; got != want {
		t.Errorf("file holds %q, want %q", got, want)
	}
}

func TestCreateTemp(t *testing.T) {
	d, err := CreateTemp(t.TempDir(), "spill-*.tmp")
	if err != nil {
		t.Fatalf("CreateTemp failed: %v", err)
	}
	if got, want := d.Put([]byte("xyz")), int64(0); got != want {
		t.Errorf("Put at %d, want %d", got, want)
	}
	if got, want := d.Get(2), byte('z'); got != want {
		t.Errorf("Get(2) = %q, want %q", got, want)
	}
	if err := d.Remove(); err != nil {
		t.Errorf("Remove failed: %v", err)
	}
	if _, err := os.Stat(d.Name()); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("temp file still exists: %v", err)
	}
}

func TestFileStoreShrunkOnDisk(t *testing.T) {
	name := writeTemp(t, pattern(BufferSize+100))
	d, err := Open(name)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer d.Close()
	if err := d.Err(); err != nil {
		t.Fatalf("Err after Open = %v", err)
	}
	if err := os.Truncate(name, BufferSize+10); err != nil {
		t.Fatal(err)
	}

	// the second block is read after the file shrank
	d.Get(BufferSize + 50)
	if err := d.Err(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("Err after a short read = %v, want io.ErrUnexpectedEOF", err)
	}
}
