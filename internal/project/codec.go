package project

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// ErrUnsupportedFormat is returned for a Format other than JSON or TOML.
var ErrUnsupportedFormat = errors.New("unsupported project format")

// Format is the encoding of a project file.
type Format int

const (
	// JSON is the interchange format.
	JSON Format = iota
	// TOML is the hand-editable format.
	TOML
)

// FormatForPath picks TOML for a .toml extension and JSON otherwise.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return TOML
	}
	return JSON
}

// Decode reads a project in format f.
func Decode(r io.Reader, f Format) (Project, error) {
	var p Project
	switch f {
	case JSON:
		if err := json.NewDecoder(r).Decode(&p); err != nil {
			return Project{}, fmt.Errorf("decoding json project: %w", err)
		}
	case TOML:
		if err := toml.NewDecoder(r).Decode(&p); err != nil {
			return Project{}, fmt.Errorf("decoding toml project: %w", err)
		}
	default:
		return Project{}, fmt.Errorf("%w: %d", ErrUnsupportedFormat, f)
	}
	return p, nil
}

// Encode writes p in format f.
func Encode(w io.Writer, p Project, f Format) error {
	switch f {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("encoding json project: %w", err)
		}
	case TOML:
		if err := toml.NewEncoder(w).Encode(p); err != nil {
			return fmt.Errorf("encoding toml project: %w", err)
		}
	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedFormat, f)
	}
	return nil
}

// LoadFile reads the project at path, choosing the format by extension.
func LoadFile(path string) (Project, error) {
	f, err := os.Open(path)
	if err != nil {
		return Project{}, fmt.Errorf("opening project file: %w", err)
	}
	defer f.Close()
	return Decode(f, FormatForPath(path))
}

// SaveFile writes p to path atomically (write temp + rename), choosing the
// format by extension.
func SaveFile(path string, p Project) error {
	var buf bytes.Buffer
	if err := Encode(&buf, p, FormatForPath(path)); err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing temp project file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming project file: %w", err)
	}
	return nil
}
