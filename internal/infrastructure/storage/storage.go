// Package storage almacén de los PDF de correspondencia: disco local o S3.
package storage

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/jhoicas/oficialia-api/internal/application/correspondence"
	"github.com/jhoicas/oficialia-api/internal/domain"
	"github.com/jhoicas/oficialia-api/pkg/config"
)

// Prefix carpeta (o prefijo de llave en S3) donde viven los documentos.
const Prefix = "correspondenciaFile"

const (
	TypeLocal = "local"
	TypeS3    = "s3"
)

// New construye el backend indicado en la configuración.
func New(ctx context.Context, cfg config.StorageConfig) (correspondence.DocumentStore, error) {
	switch cfg.Type {
	case TypeLocal, "":
		return NewLocalStore(cfg.BasePath)
	case TypeS3:
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("storage: tipo desconocido %q", cfg.Type)
	}
}

// objectKey valida el nombre (sin rutas) y lo ubica bajo Prefix.
func objectKey(name string) (string, error) {
	if name == "" || name != path.Base(name) || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("%w: nombre de archivo inválido %q", domain.ErrInvalidInput, name)
	}
	return Prefix + "/" + name, nil
}
