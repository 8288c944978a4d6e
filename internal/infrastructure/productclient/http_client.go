package productclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jhoicas/ventas-api/internal/application/dto"
	"github.com/jhoicas/ventas-api/internal/application/ports"
	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/pkg/logger"
)

// Verificar en tiempo de compilación que HTTPClient implementa ProductClient.
var _ ports.ProductClient = (*HTTPClient)(nil)

// Config parámetros del cliente remoto.
type Config struct {
	BaseURL      string        // p. ej. http://localhost:8082
	Timeout      time.Duration // por solicitud
	FetchRetries int           // reintentos adicionales de Fetch ante ErrRemoteUnavailable
	RetryBackoff time.Duration // espera entre reintentos (lineal)
}

// HTTPClient adaptador REST del servicio de productos (GET/PUT /products/{id}).
// Usa net/http de la librería estándar de Go.
type HTTPClient struct {
	baseURL    string
	retries    int
	backoff    time.Duration
	httpClient *http.Client
	log        *logger.Logger
}

// NewHTTPClient construye el adaptador.
func NewHTTPClient(cfg Config, log *logger.Logger) *HTTPClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.FetchRetries < 0 {
		cfg.FetchRetries = 0
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 100 * time.Millisecond
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		retries: cfg.FetchRetries,
		backoff: cfg.RetryBackoff,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		log: log,
	}
}

// Fetch GET /products/{id}. 404 → domain.ErrRemoteNotFound; cualquier otro fallo →
// domain.ErrRemoteUnavailable. Los fallos de disponibilidad se reintentan.
func (c *HTTPClient) Fetch(ctx context.Context, id int64) (*entity.Product, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			c.log.Warn().Err(lastErr).Int64("product_id", id).Int("attempt", attempt).
				Msg("reintentando lectura de producto")
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", domain.ErrRemoteUnavailable, ctx.Err())
			case <-time.After(time.Duration(attempt) * c.backoff):
			}
		}
		p, err := c.fetchOnce(ctx, id)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, domain.ErrRemoteUnavailable) || ctx.Err() != nil {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (c *HTTPClient) fetchOnce(ctx context.Context, id int64) (*entity.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.productURL(id), nil)
	if err != nil {
		return nil, fmt.Errorf("productos: crear request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET producto %d: %v", domain.ErrRemoteUnavailable, id, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: leer respuesta: %v", domain.ErrRemoteUnavailable, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrRemoteNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: GET producto %d: HTTP %d: %s",
			domain.ErrRemoteUnavailable, id, resp.StatusCode, truncate(raw))
	}

	var body dto.ProductResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("%w: decodificar producto %d: %v", domain.ErrRemoteUnavailable, id, err)
	}
	return &entity.Product{
		ID:          body.ID,
		Name:        body.Name,
		Price:       body.Price,
		Description: body.Description,
		Stock:       body.Stock,
	}, nil
}

// UpdateStock PUT /products/{id} con el producto completo y el nuevo stock.
// No se reintenta: un PUT con timeout pudo haberse aplicado.
func (c *HTTPClient) UpdateStock(ctx context.Context, product *entity.Product, newStock int) error {
	payload := dto.ProductRequest{
		Name:        product.Name,
		Price:       product.Price,
		Description: product.Description,
		Stock:       newStock,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("productos: serializar producto %d: %w", product.ID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.productURL(product.ID), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("productos: crear request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: PUT producto %d: %v", domain.ErrRemoteUnavailable, product.ID, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode == http.StatusNotFound {
		return domain.ErrRemoteNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: PUT producto %d: HTTP %d: %s",
			domain.ErrRemoteUnavailable, product.ID, resp.StatusCode, truncate(raw))
	}
	return nil
}

func (c *HTTPClient) productURL(id int64) string {
	return fmt.Sprintf("%s/products/%d", c.baseURL, id)
}

func truncate(b []byte) string {
	const max = 200
	s := strings.TrimSpace(string(b))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
