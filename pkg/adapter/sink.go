package adapter

import (
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
)

// Sink receives an exported artifact. Save either writes the whole file
// or nothing; a partial file is never left behind.
type Sink interface {
	Save(name string, data []byte) error
}

// DirSink saves artifacts into a local directory
type DirSink struct {
	dir string
}

func NewDirSink(dir string) (*DirSink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, goerr.Wrap(err, "failed to create export directory",
			goerr.V("dir", dir))
	}
	return &DirSink{dir: dir}, nil
}

func (s *DirSink) Save(name string, data []byte) error {
	dst := filepath.Join(s.dir, name)

	// Write to a temp file first so a failed write leaves no partial file
	tmp, err := os.CreateTemp(s.dir, "."+name+".*")
	if err != nil {
		return goerr.Wrap(err, "failed to create temporary file", goerr.V("dir", s.dir))
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return goerr.Wrap(err, "failed to write artifact", goerr.V("name", name))
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return goerr.Wrap(err, "failed to close artifact", goerr.V("name", name))
	}

	if err := os.Rename(tmp.Name(), dst); err != nil {
		_ = os.Remove(tmp.Name())
		return goerr.Wrap(err, "failed to place artifact", goerr.V("path", dst))
	}

	return nil
}
