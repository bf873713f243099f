package store

import (
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
)

// Hash is a content hash used to notice that a file changed on disk
// behind the document's back.
type Hash uint64

// EmptyHash is the hash of a document that was never read from disk.
var EmptyHash Hash

func (h Hash) Eq(h1 Hash) bool {
	return h == h1
}

// CalcHash returns the hash of b.
func CalcHash(b []byte) Hash {
	return Hash(xxhash.Sum64(b))
}

// HashFor returns the hash of the content of filename.
func HashFor(filename string) (Hash, error) {
	fd, err := os.Open(filename)
	if err != nil {
		return EmptyHash, err
	}
	defer fd.Close()

	d := xxhash.New()
	if _, err := io.Copy(d, fd); err != nil {
		return EmptyHash, err
	}
	return Hash(d.Sum64()), nil
}
