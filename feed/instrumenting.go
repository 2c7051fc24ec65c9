package feed

import (
	"context"

	swap "go-token-swap"
	"go-token-swap/observability"
)

// instrumentingService decorates a feed.Service with Prometheus counters
type instrumentingService struct {
	next    Service
	metrics *observability.Metrics
}

// NewInstrumentingService returns a Service that counts fetches and failures
func NewInstrumentingService(m *observability.Metrics, s Service) Service {
	return &instrumentingService{
		next:    s,
		metrics: m,
	}
}

func (s *instrumentingService) Prices(ctx context.Context) ([]swap.PriceObservation, error) {
	s.metrics.FeedFetchesTotal.Inc()
	observations, err := s.next.Prices(ctx)
	if err != nil {
		s.metrics.FeedFetchErrorsTotal.Inc()
	}
	return observations, err
}
