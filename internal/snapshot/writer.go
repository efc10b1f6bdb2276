package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Writer writes snapshots as json files into a directory.
type Writer struct {
	dir string
}

// NewWriter creates a Writer for `dir`, an empty dir means the working directory.
func NewWriter(dir string) Writer {
	if dir == "" {
		dir = "."
	}
	return Writer{dir: dir}
}

func (w Writer) Dir() string {
	return w.dir
}

// Write encodes `s` into <dir>/<name>.json, creating the directory if needed.
// The file is written next to its destination and renamed into place, so
// readers only ever observe complete files. A snapshot with the same name
// replaces the previous file.
func (w Writer) Write(s Snapshot) (string, error) {
	if s.Name == "" {
		return "", fmt.Errorf("snapshot: cannot write a snapshot without a name")
	}

	contents, err := s.Encode()
	if err != nil {
		return "", fmt.Errorf("snapshot: encode: %w", err)
	}

	err = os.MkdirAll(w.dir, 0755)
	if err != nil {
		return "", err
	}

	path := filepath.Join(w.dir, FileName(s))
	tmp, err := os.CreateTemp(w.dir, fmt.Sprintf(".%s.*", FileName(s)))
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	_, err = tmp.Write(contents)
	if err != nil {
		tmp.Close()
		return "", err
	}
	err = tmp.Close()
	if err != nil {
		return "", err
	}

	err = os.Rename(tmp.Name(), path)
	if err != nil {
		return "", err
	}
	return path, nil
}

// Read loads a snapshot file written by Writer.
func Read(path string) (Snapshot, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, err
	}

	var s Snapshot
	err = s.UnmarshalJSON(contents)
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot: read %s: %w", path, err)
	}

	s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	takenAt, err := ParseName(s.Name)
	if err == nil {
		s.TakenAt = takenAt
	}
	return s, nil
}
