package store

import (
	"fmt"
	"os"
)

// DiskDetails remembers what a document's file looked like the last time
// the document read or wrote it.
type DiskDetails struct {
	Name string
	Info os.FileInfo
	Hash Hash // Used to check if the file has changed on disk since loaded.
}

// NewDiskDetails records the current state of filename.
func NewDiskDetails(filename string) (*DiskDetails, error) {
	info, err := os.Stat(filename)
	if err != nil {
		return nil, err
	}
	h, err := HashFor(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to compute hash for %v: %v", filename, err)
	}
	return &DiskDetails{Name: filename, Info: info, Hash: h}, nil
}

// Changed reports whether the file differs from the recorded state. A
// matching size and modification time short-circuit the hash.
func (d *DiskDetails) Changed() (bool, error) {
	info, err := os.Stat(d.Name)
	if err != nil {
		return true, err
	}
	if d.Info != nil && info.Size() == d.Info.Size() && info.ModTime().Equal(d.Info.ModTime()) {
		return false, nil
	}
	h, err := HashFor(d.Name)
	if err != nil {
		return true, fmt.Errorf("failed to compute hash for %v: %v", d.Name, err)
	}
	return !h.Eq(d.Hash), nil
}
