package feed

import (
	"context"
	"time"

	"github.com/go-kit/log"

	swap "go-token-swap"
)

// loggingService decorates a feed.Service with logging
type loggingService struct {
	next   Service
	logger log.Logger
}

// NewLoggingService returns a new logging Service
func NewLoggingService(logger log.Logger, s Service) Service {
	return &loggingService{
		next:   s,
		logger: logger,
	}
}

func (s *loggingService) Prices(ctx context.Context) (observations []swap.PriceObservation, err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "prices",
			"observations", len(observations),
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Prices(ctx)
}
