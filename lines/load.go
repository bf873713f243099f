package lines

import (
	"fmt"
	"log"

	"github.com/rjkroege/madlines/charset"
	"github.com/rjkroege/madlines/store"
)

const (
	// sniffSize is how much of a file is read to pick its encoding and
	// syntax.
	sniffSize = 4096

	// memoryHeadroom is the free memory that must remain after reading
	// a file into memory.
	memoryHeadroom = 15 * 1024 * 1024
)

// LoadFromFile replaces the document with the content of filename. An
// empty encoding name asks for detection. When the file cannot be
// opened or read, the document is left unchanged.
func (d *Lines) LoadFromFile(filename, encoding string) error {
	fd, err := store.Open(filename)
	if err != nil {
		return err
	}
	if fd.ReadOnly() {
		log.Printf("%s opened read-only", filename)
	}

	size := fd.Size()
	head := make([]byte, min(size, sniffSize))
	fd.GetRange(0, head)

	mem := store.NewMemStore()
	var data store.Reader = fd
	inMemory := size > 0 && d.fitsInMemory(size)
	if inMemory {
		buf := make([]byte, store.BufferSize)
		for pos := int64(0); pos < size; pos += store.BufferSize {
			n := min(size-pos, store.BufferSize)
			fd.GetRange(pos, buf[:n])
			mem.Put(buf[:n])
		}
		data = mem
	}
	if err := fd.Err(); err != nil {
		fd.Close()
		return fmt.Errorf("reading %s: %w", filename, err)
	}

	// The file is readable: the old content can go.
	if d.file != nil {
		d.file.Close()
		d.file = nil
	}
	d.mem = mem
	d.empty()
	d.name = filename
	d.readOnly = fd.ReadOnly()
	d.hexMode = false
	d.hasTab = false
	d.newline = NewlineDefault
	d.manualSyntax = false
	d.disk = nil
	if inMemory || size == 0 {
		fd.Close()
	} else {
		d.file = fd
	}
	defer d.recordDisk()

	if d.cfg.UseDefaultSyntax {
		d.syn = d.syntaxes.Default()
	} else {
		d.syn = d.syntaxes.ForFile(filename, head)
	}

	if size == 0 {
		switch {
		case encoding != "":
			d.enc = d.encodings.Get(encoding)
		case d.syn.Encoding() != "":
			d.enc = d.encodings.Get(d.syn.Encoding())
		default:
			d.enc = d.encodings.Get(d.defaultEncoding())
		}
		return nil
	}

	l := d.list.front()
	l.Blocks = []Block{{Store: data, Pos: 0, Size: size}}
	l.Size = size
	l.Rows[1].Start = size
	d.size = size

	hex := d.cfg.MaxTextFileSize > 0 && size >= d.cfg.MaxTextFileSize
	preset := false
	if !hex {
		preset = d.presetEncoding(encoding, head)
	}
	if !preset {
		d.detectEncoding(encoding, head, !hex && !preset)
		if !hex {
			hex = charset.IsBinary(head, d.enc)
		}
	}
	if hex {
		d.hexMode = true
		d.maxLineWidth = -1
		return nil
	}
	d.Reformat(l, l)
	return nil
}

// fitsInMemory reports whether a file of size bytes may be read into
// memory.
func (d *Lines) fitsInMemory(size int64) bool {
	if size > d.cfg.MaxSizeToLoad {
		return false
	}
	free := d.freeMemory()
	return free > 0 && size*2+memoryHeadroom < free
}

// presetEncoding selects the encoding named by the caller or by a
// byte order mark or valid UTF-8 at the start of the file.
func (d *Lines) presetEncoding(encoding string, head []byte) bool {
	if encoding != "" {
		d.enc = d.encodings.Get(encoding)
		return true
	}
	if name := charset.Match(head); name != "" {
		d.enc = d.encodings.Get(name)
		return true
	}
	return false
}

// detectEncoding selects the encoding named by the caller, the one
// the syntax declares, or the one the content suggests.
func (d *Lines) detectEncoding(encoding string, head []byte, skipUTF8 bool) {
	switch {
	case encoding != "":
		d.enc = d.encodings.Get(encoding)
	case d.syn.Encoding() != "":
		d.enc = d.encodings.Get(d.syn.Encoding())
	default:
		def := d.defaultEncoding()
		if d.enc != nil && !d.enc.IsSimpleUnicode() {
			def = d.enc.Name()
		}
		d.enc = d.encodings.Get(charset.Detect(head, def, skipUTF8))
	}
}

func (d *Lines) recordDisk() {
	dd, err := store.NewDiskDetails(d.name)
	if err != nil {
		log.Printf("cannot record the state of %s: %v", d.name, err)
		return
	}
	d.disk = dd
}
