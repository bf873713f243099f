package lines

import (
	"github.com/rjkroege/madlines/session"
)

// SessionFile returns the state of the document to remember in a
// session file.
func (d *Lines) SessionFile() session.File {
	f := session.File{
		Name:      d.name,
		Encoding:  d.enc.Name(),
		Bookmarks: d.BookmarkLines(),
	}
	if d.manualSyntax {
		f.Syntax = d.syn.Title()
	}
	if d.newline != NewlineDefault {
		f.Newline = d.newline.String()
	}
	return f
}

// ApplySession restores the bookmarks and a hand-picked syntax from f.
// The encoding is applied by passing f.Encoding to LoadFromFile.
func (d *Lines) ApplySession(f session.File) error {
	if f.Syntax != "" {
		if err := d.SetSyntax(f.Syntax); err != nil {
			return err
		}
	}
	d.RestoreBookmarks(f.Bookmarks)
	return nil
}
