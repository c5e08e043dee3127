package build3d

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Bundler is implemented by sinks that can archive their content.
type Bundler interface {
	Bundle(w io.Writer) error
}

// Bundle archives every output the job produced through its sink into
// w as a zip. The sink must be able to enumerate its content.
func (j *Job) Bundle(w io.Writer) error {
	b, ok := j.sink.(Bundler)
	if !ok {
		return fmt.Errorf("%T cannot bundle its outputs", j.sink)
	}
	return b.Bundle(w)
}

// Bundle zips every regular file in the sink directory. Archives from
// previous runs are skipped.
func (s *DirSink) Bundle(w io.Writer) error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return err
	}
	zw := zip.NewWriter(w)
	for _, e := range entries {
		if e.IsDir() || strings.HasSuffix(e.Name(), ".zip") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			return err
		}
		f, err := zw.Create(e.Name())
		if err != nil {
			return err
		}
		if _, err := f.Write(data); err != nil {
			return err
		}
	}
	return zw.Close()
}

// Bundle zips the stored files in name order.
func (s *MemSink) Bundle(w io.Writer) error {
	zw := zip.NewWriter(w)
	for _, name := range s.Names() {
		if strings.HasSuffix(name, ".zip") {
			continue
		}
		data, _ := s.Bytes(name)
		f, err := zw.Create(name)
		if err != nil {
			return err
		}
		if _, err := f.Write(data); err != nil {
			return err
		}
	}
	return zw.Close()
}
