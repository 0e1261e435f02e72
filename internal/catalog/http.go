package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/villagegaming/storebot/core/logger"
)

const (
	gamesPath       = "/api/games"
	maxPayloadBytes = 4 << 20
)

// ErrMalformedPayload is returned when the backend answers with something that
// is not a list of games.
var ErrMalformedPayload = errors.New("catalog: malformed payload")

// StatusError reports a non-2xx answer from the catalog API.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog: unexpected status %d", e.Code)
}

// HTTPStatus implements netutil.StatusCoder.
func (e *StatusError) HTTPStatus() int { return e.Code }

// Source fetches the full catalog from a backend.
type Source interface {
	Fetch(ctx context.Context) ([]Item, error)
}

// HTTPSource reads GET {base}/api/games.
type HTTPSource struct {
	endpoint string
	client   *http.Client
}

// NewHTTPSource builds a source for the store API at baseURL.
func NewHTTPSource(baseURL string, client *http.Client) *HTTPSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSource{
		endpoint: strings.TrimRight(strings.TrimSpace(baseURL), "/") + gamesPath,
		client:   client,
	}
}

// Endpoint returns the URL the source reads from.
func (s *HTTPSource) Endpoint() string { return s.endpoint }

// Fetch performs a single GET request and decodes the answer.
func (s *HTTPSource) Fetch(ctx context.Context) ([]Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxPayloadBytes))
		return nil, &StatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return nil, fmt.Errorf("catalog: read body: %w", err)
	}
	items, dropped, err := decodeItems(body)
	if err != nil {
		return nil, err
	}
	if dropped > 0 {
		logger.Warn(ctx, "catalog", "catalog.decode",
			slog.String("status", "partial"),
			slog.Int("items", len(items)),
			slog.Int("dropped", dropped),
		)
	}
	return items, nil
}

type wireItem struct {
	ID               flexNumber `json:"id"`
	Title            string     `json:"title"`
	Price            flexNumber `json:"price"`
	OriginalPrice    flexNumber `json:"original_price"`
	OriginalPriceAlt flexNumber `json:"originalPrice"`
	Description      *string    `json:"description"`
	Image            *string    `json:"image"`
	Platform         StringList `json:"platform"`
	Categories       StringList `json:"categories"`
}

// decodeItems converts the API answer. Rows that do not decode or carry an
// unusable id or price are dropped and counted; a body that is not a JSON
// array fails as a whole.
func decodeItems(body []byte) (items []Item, dropped int, err error) {
	var rows []json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if rows == nil {
		return nil, 0, fmt.Errorf("%w: null body", ErrMalformedPayload)
	}
	items = make([]Item, 0, len(rows))
	for _, raw := range rows {
		var row wireItem
		if err := json.Unmarshal(raw, &row); err != nil {
			dropped++
			continue
		}
		it, err := row.item()
		if err != nil {
			dropped++
			continue
		}
		items = append(items, it)
	}
	return items, dropped, nil
}

func (w wireItem) item() (Item, error) {
	id, err := w.ID.Int64()
	if err != nil {
		return Item{}, fmt.Errorf("catalog: id %q: %w", w.ID.raw, err)
	}
	price, err := w.Price.Float64()
	if err != nil {
		return Item{}, fmt.Errorf("catalog: price %q: %w", w.Price.raw, err)
	}
	it := Item{
		ID:          id,
		Title:       strings.TrimSpace(w.Title),
		Price:       price,
		Description: w.Description,
		Image:       w.Image,
		Platforms:   w.Platform,
		Categories:  w.Categories,
	}
	orig := w.OriginalPrice
	if orig.absent() {
		orig = w.OriginalPriceAlt
	}
	// A broken original price only hides the discount.
	if v, err := orig.Float64(); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
		it.OriginalPrice = &v
	}
	if err := it.valid(); err != nil {
		return Item{}, err
	}
	return it, nil
}

// flexNumber holds a JSON number or a numeric string. null and "" are absent;
// anything else is kept and fails on conversion.
type flexNumber struct {
	raw string
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *flexNumber) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		n.raw = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return fmt.Errorf("catalog: decode number: %w", err)
		}
		s = strings.TrimSpace(str)
	}
	n.raw = s
	return nil
}

func (n flexNumber) absent() bool { return n.raw == "" }

var errAbsent = errors.New("missing value")

// Int64 parses the value as a base-10 integer.
func (n flexNumber) Int64() (int64, error) {
	if n.absent() {
		return 0, errAbsent
	}
	return strconv.ParseInt(n.raw, 10, 64)
}

// Float64 parses the value as a decimal number.
func (n flexNumber) Float64() (float64, error) {
	if n.absent() {
		return 0, errAbsent
	}
	return strconv.ParseFloat(n.raw, 64)
}
