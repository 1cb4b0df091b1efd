package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	errs "raisonne/pkg/errors"
	"raisonne/pkg/models"
)

// Manager owns one output directory. The directory is created the first
// time something is written to it, and existing files are overwritten.
type Manager struct {
	outputDir string
	saved     map[int]string
}

// NewManager creates a storage manager rooted at outputDir
func NewManager(outputDir string) (*Manager, error) {
	if outputDir == "" {
		return nil, fmt.Errorf("output directory is required")
	}

	return &Manager{
		outputDir: outputDir,
		saved:     make(map[int]string),
	}, nil
}

func (m *Manager) ensureDir() error {
	if err := os.MkdirAll(m.outputDir, 0755); err != nil {
		return errs.NewIOError(m.outputDir, err)
	}
	return nil
}

// ImagePath returns where the image for artworkID is stored
func (m *Manager) ImagePath(artworkID int, ext string) string {
	return filepath.Join(m.outputDir, "img"+strconv.Itoa(artworkID)+ext)
}

// SaveImage writes the bytes from r to img<artworkID><ext> and returns the path
func (m *Manager) SaveImage(r io.Reader, artworkID int, ext string) (string, error) {
	if err := m.ensureDir(); err != nil {
		return "", err
	}

	filename := m.ImagePath(artworkID, ext)
	if err := writeAtomic(filename, func(w io.Writer) error {
		_, err := io.Copy(w, r)
		return err
	}); err != nil {
		return "", err
	}

	m.saved[artworkID] = filename
	return filename, nil
}

// SaveCollection writes the whole collection to filename inside the output
// directory, replacing any previous file.
func (m *Manager) SaveCollection(collection models.Collection, filename string) (string, error) {
	if err := m.ensureDir(); err != nil {
		return "", err
	}

	path := filepath.Join(m.outputDir, filename)
	if err := writeAtomic(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(collection)
	}); err != nil {
		return "", err
	}

	return path, nil
}

// LoadCollection reads a collection previously written by SaveCollection
func (m *Manager) LoadCollection(filename string) (models.Collection, error) {
	path := filepath.Join(m.outputDir, filename)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.NewIOError(path, err)
	}

	collection := models.NewCollection()
	if err := json.Unmarshal(data, &collection); err != nil {
		return nil, fmt.Errorf("failed to decode collection %s: %w", path, err)
	}
	return collection, nil
}

// writeAtomic writes through a temporary file and renames it into place
func writeAtomic(filename string, write func(io.Writer) error) error {
	tempFile := filename + ".tmp"
	out, err := os.Create(tempFile)
	if err != nil {
		return errs.NewIOError(tempFile, err)
	}

	err = write(out)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return errs.NewIOError(filename, err)
	}
	if closeErr != nil {
		os.Remove(tempFile)
		return errs.NewIOError(filename, closeErr)
	}

	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		return errs.NewIOError(filename, err)
	}
	return nil
}

// OutputDir returns the output directory path
func (m *Manager) OutputDir() string {
	return m.outputDir
}

// SavedCount returns the number of distinct images written by this manager
func (m *Manager) SavedCount() int {
	return len(m.saved)
}
