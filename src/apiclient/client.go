// Package apiclient talks to the ticker backend over its REST contract.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ticker-desk/src/logger"
	"ticker-desk/src/models"
)

const maxBodyBytes = 1 << 20

type BackendClient struct {
	BaseURL string
	HTTP    *http.Client
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewBackendClient(baseURL string, timeout time.Duration, log *logger.Logger) *BackendClient {
	return &BackendClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
		Logger:  log,
	}
}

// -----------------------------------------------------------------------------

func (c *BackendClient) ListStocks(ctx context.Context) ([]models.MStock, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/stocks", nil)
	if err != nil {
		return nil, &TransportError{Op: "list stocks", Err: err}
	}
	req.Header.Set("Cache-Control", "no-store")

	body, err := c.do(req, "list stocks")
	if err != nil {
		return nil, err
	}

	var stocks []models.MStock
	if err := json.Unmarshal(body, &stocks); err != nil {
		return nil, &TransportError{Op: "decode stocks", Err: err}
	}
	if stocks == nil {
		stocks = []models.MStock{}
	}
	return stocks, nil
}

// -----------------------------------------------------------------------------

// AddStock posts the ticker as a query parameter, uppercased and trimmed.
func (c *BackendClient) AddStock(ctx context.Context, ticker string) (string, error) {
	q := url.Values{"ticker": {strings.ToUpper(strings.TrimSpace(ticker))}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/stocks?"+q.Encode(), nil)
	if err != nil {
		return "", &TransportError{Op: "add stock", Err: err}
	}

	body, err := c.do(req, "add stock")
	if err != nil {
		return "", err
	}

	var created models.MAddStockResponse
	if err := json.Unmarshal(body, &created); err != nil {
		return "", &TransportError{Op: "decode add stock", Err: err}
	}
	if created.TaskID == "" {
		return "", &TransportError{Op: "decode add stock", Err: errMissingTaskID}
	}
	return created.TaskID, nil
}

// -----------------------------------------------------------------------------

func (c *BackendClient) StartJob(ctx context.Context, id int64) error {
	path := fmt.Sprintf("%s/api/stocks/%s/start", c.BaseURL, strconv.FormatInt(id, 10))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, path, nil)
	if err != nil {
		return &TransportError{Op: "start job", Err: err}
	}

	_, err = c.do(req, "start job")
	return err
}

// -----------------------------------------------------------------------------

// do returns the body of a 2xx response, an *APIError for any other status
// and a *TransportError when no response could be read.
func (c *BackendClient) do(req *http.Request, op string) ([]byte, error) {
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: parseErrorMessage(body)}
		c.Logger.Debug("%s %s -> %v", req.Method, req.URL.Path, apiErr)
		return nil, apiErr
	}
	return body, nil
}
