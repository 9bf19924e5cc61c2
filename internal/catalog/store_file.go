package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileSnapshotter keeps the collection as one indented JSON array. Saves go
// through a temp file and rename so readers never see a torn snapshot.
type FileSnapshotter struct {
	path string
}

func NewFileSnapshotter(path string) *FileSnapshotter {
	return &FileSnapshotter{path: path}
}

func (s *FileSnapshotter) Load(context.Context) ([]Product, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}

	var products []Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return products, nil
}

func (s *FileSnapshotter) Save(_ context.Context, products []Product) error {
	if products == nil {
		products = []Product{}
	}
	data, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

func (s *FileSnapshotter) Ping(context.Context) error {
	_, err := os.Stat(filepath.Dir(s.path))
	return err
}
