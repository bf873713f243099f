// Package session implements encoding and decoding of the session file.
//
// A session file stores per-file editor state so that a document can
// be reopened the way it was left: its encoding, a manually chosen
// syntax, its newline convention and its bookmarks.
package session

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const version = 1

// Content stores the state of all remembered files.
type Content struct {
	Files []File // Most recently saved last
}

// File stores the state of one document.
type File struct {
	Name      string // Absolute path of the file
	Encoding  string // Encoding name as accepted by charset.Registry
	Syntax    string `json:",omitempty"` // Syntax title, only when chosen by hand
	Newline   string `json:",omitempty"` // DOS, Unix or Mac
	Bookmarks []int  `json:",omitempty"` // 1-based line numbers
}

type versionedContent struct {
	Version int // Session file format version
	*Content
}

// Load parses the session file and returns its content.
func Load(file string) (*Content, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return decode(bufio.NewReader(f))
}

func decode(r io.Reader) (*Content, error) {
	vc := versionedContent{Content: &Content{}}

	dec := json.NewDecoder(r)
	err := dec.Decode(&vc)
	if err != nil {
		return nil, err
	}
	if vc.Version != version {
		return nil, fmt.Errorf("session file format %v; expected %v", vc.Version, version)
	}
	return vc.Content, nil
}

// Save encodes the session content and writes it to file.
func (c *Content) Save(file string) error {
	f, err := os.OpenFile(file, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	if err := c.encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (c *Content) encode(w io.Writer) error {
	vc := versionedContent{
		Version: version,
		Content: c,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "\t")
	return enc.Encode(&vc)
}

// Key returns the name a file is remembered under.
func Key(name string) string {
	if abs, err := filepath.Abs(name); err == nil {
		return abs
	}
	return filepath.Clean(name)
}

// Lookup returns the state remembered for the file name.
func (c *Content) Lookup(name string) (File, bool) {
	key := Key(name)
	for _, f := range c.Files {
		if f.Name == key {
			return f, true
		}
	}
	return File{}, false
}

// Put remembers f, replacing an earlier entry for the same file.
func (c *Content) Put(f File) {
	f.Name = Key(f.Name)
	for i, g := range c.Files {
		if g.Name == f.Name {
			c.Files = append(c.Files[:i], c.Files[i+1:]...)
			break
		}
	}
	c.Files = append(c.Files, f)
}
