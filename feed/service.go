package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	swap "go-token-swap"
)

// DefaultURL the price feed endpoint
const DefaultURL = "https://interview.switcheo.com/prices.json"

// DefaultTimeout how long a single feed request may take. The feed has no
// retry policy; a slow or dead upstream fails the whole load attempt.
const DefaultTimeout = 5 * time.Second

// Service wraps the price feed endpoint
type Service interface {
	Prices(ctx context.Context) ([]swap.PriceObservation, error)
}

// service price feed client
type service struct {
	// url feed URL
	url string

	// client for HTTP requests
	client http.Client
}

// NewService constructs a valid feed Service.
func NewService(url string, timeout time.Duration) Service {
	return &service{
		url: url,
		client: http.Client{
			Timeout: timeout,
		},
	}
}

// Prices loads the current batch of price observations. One batch per call;
// the feed may contain several observations for the same symbol.
func (s *service) Prices(ctx context.Context) ([]swap.PriceObservation, error) {
	// row for unmarshalling one feed entry
	type row struct {
		Currency string  `json:"currency"`
		Date     string  `json:"date"`
		Price    float64 `json:"price"`
	}

	request, err := http.NewRequestWithContext(ctx, "GET", s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("building http request: %w", err)
	}
	httpResponse, err := s.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer httpResponse.Body.Close()

	if httpResponse.StatusCode < 200 || httpResponse.StatusCode > 299 {
		return nil, &swap.FetchError{StatusText: httpResponse.Status}
	}

	bytes, err := io.ReadAll(httpResponse.Body)
	if err != nil {
		return nil, fmt.Errorf("reading json: %w", err)
	}

	var rows []row
	err = json.Unmarshal(bytes, &rows)
	if err != nil {
		return nil, fmt.Errorf("decoding json: %w", err)
	}

	observations := make([]swap.PriceObservation, 0, len(rows))
	for _, r := range rows {
		observations = append(observations, swap.PriceObservation{
			Symbol: swap.Symbol(r.Currency),
			Date:   r.Date,
			Price:  swap.Rate(r.Price),
		})
	}

	return observations, nil
}
