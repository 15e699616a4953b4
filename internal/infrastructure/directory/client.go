// Package directory adaptador HTTP del directorio institucional de áreas.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/jhoicas/oficialia-api/internal/application/correspondence"
	"github.com/jhoicas/oficialia-api/internal/domain"
	"github.com/jhoicas/oficialia-api/internal/domain/entity"
)

var _ correspondence.DirectoryClient = (*Client)(nil)

// areaPayload forma de un área en las respuestas del directorio.
type areaPayload struct {
	ID     int64  `json:"id"`
	Nombre string `json:"nombre"`
}

// Client consulta GET {base}/areas/{id} y GET {base}/areas.
// Cualquier falla de red o respuesta 5xx se reporta como domain.ErrUpstream.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient construye el cliente. timeout acota cada llamada además del contexto del caller.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GetArea obtiene un área por ID. 404 -> domain.ErrNotFound.
func (c *Client) GetArea(ctx context.Context, id int64) (*entity.Area, error) {
	var p areaPayload
	if err := c.get(ctx, "/areas/"+strconv.FormatInt(id, 10), &p); err != nil {
		return nil, err
	}
	return &entity.Area{ID: p.ID, Name: p.Nombre}, nil
}

// ListAreas catálogo completo de áreas.
func (c *Client) ListAreas(ctx context.Context) ([]entity.Area, error) {
	var list []areaPayload
	if err := c.get(ctx, "/areas", &list); err != nil {
		return nil, err
	}
	out := make([]entity.Area, 0, len(list))
	for _, p := range list {
		out = append(out, entity.Area{ID: p.ID, Name: p.Nombre})
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("directorio: crear request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: directorio %s: %v", domain.ErrUpstream, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: directorio %s", domain.ErrNotFound, path)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: directorio %s respondió %d: %s", domain.ErrUpstream, path, resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: directorio %s: respuesta inválida: %v", domain.ErrUpstream, path, err)
	}
	return nil
}
