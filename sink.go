package build3d

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// FileSink persists job outputs under caller controlled storage. All
// names are flat, the pipeline never asks for subdirectories.
type FileSink interface {
	// Write stores data under name, replacing previous content.
	Write(name string, data []byte) error
	// WriteIfAbsent stores data under name only when the name does not
	// exist yet. Concurrent callers racing on one name all succeed
	// with a single winner.
	WriteIfAbsent(name string, data []byte) error
}

// DirSink writes outputs into one directory.
type DirSink struct {
	dir string
}

// NewDirSink creates dir if needed and returns a sink rooted there.
func NewDirSink(dir string) (*DirSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DirSink{dir: dir}, nil
}

// Dir returns the sink root.
func (s *DirSink) Dir() string { return s.dir }

func (s *DirSink) path(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("unsafe output name %q", name)
	}
	return filepath.Join(s.dir, name), nil
}

func (s *DirSink) Write(name string, data []byte) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o644)
}

func (s *DirSink) WriteIfAbsent(name string, data []byte) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil
		}
		return err
	}
	_, werr := f.Write(data)
	cerr := f.Close()
	if werr != nil {
		return werr
	}
	return cerr
}

// MemSink keeps outputs in memory. It is safe for concurrent use and
// useful for tests and for callers that bundle outputs themselves.
type MemSink struct {
	mu    sync.Mutex
	files map[string][]byte
}

func NewMemSink() *MemSink {
	return &MemSink{files: make(map[string][]byte)}
}

func (s *MemSink) Write(name string, data []byte) error {
	s.mu.Lock()
	s.files[name] = append([]byte(nil), data...)
	s.mu.Unlock()
	return nil
}

func (s *MemSink) WriteIfAbsent(name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[name]; ok {
		return nil
	}
	s.files[name] = append([]byte(nil), data...)
	return nil
}

// Bytes returns the stored content of name.
func (s *MemSink) Bytes(name string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[name]
	return data, ok
}

// Names lists the stored file names in sorted order.
func (s *MemSink) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.files))
	for name := range s.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len reports the number of stored files.
func (s *MemSink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}
