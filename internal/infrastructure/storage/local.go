package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/jhoicas/oficialia-api/internal/application/correspondence"
	"github.com/jhoicas/oficialia-api/internal/domain"
)

var _ correspondence.DocumentStore = (*LocalStore)(nil)

// LocalStore guarda los documentos en <basePath>/correspondenciaFile/.
type LocalStore struct {
	basePath string
}

// NewLocalStore crea el directorio de documentos si no existe.
func NewLocalStore(basePath string) (*LocalStore, error) {
	if err := os.MkdirAll(filepath.Join(basePath, Prefix), 0o755); err != nil {
		return nil, fmt.Errorf("storage: crear directorio: %w", err)
	}
	return &LocalStore{basePath: basePath}, nil
}

func (s *LocalStore) fullPath(name string) (string, error) {
	key, err := objectKey(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.basePath, filepath.FromSlash(key)), nil
}

// Put escribe en un temporal y lo renombra, así un lector nunca ve un PDF a medias.
func (s *LocalStore) Put(_ context.Context, name string, r io.Reader) error {
	dst, err := s.fullPath(name)
	if err != nil {
		return err
	}
	tmp := filepath.Join(filepath.Dir(dst), ".tmp-"+uuid.NewString())
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("storage: crear archivo: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("storage: escribir %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("storage: cerrar %s: %w", name, err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("storage: mover %s: %w", name, err)
	}
	return nil
}

// Open abre el documento; domain.ErrNotFound si no existe.
func (s *LocalStore) Open(_ context.Context, name string) (io.ReadCloser, error) {
	p, err := s.fullPath(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: documento %s", domain.ErrNotFound, name)
		}
		return nil, fmt.Errorf("storage: abrir %s: %w", name, err)
	}
	return f, nil
}

// Delete elimina el documento; no falla si ya no existe.
func (s *LocalStore) Delete(_ context.Context, name string) error {
	p, err := s.fullPath(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: eliminar %s: %w", name, err)
	}
	return nil
}
