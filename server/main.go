package main

import (
	"context"
	"os"

	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"

	"go-token-swap/config"
	"go-token-swap/exchange"
	"go-token-swap/feed"
	swaphttp "go-token-swap/http"
	"go-token-swap/observability"
	"go-token-swap/rates"
	"go-token-swap/session"

	nhttp "net/http"
)

func main() {
	w := log.NewSyncWriter(os.Stderr)
	logger := log.NewLogfmtLogger(w)
	logger = log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)

	cfg := config.Load(logger)
	metrics := observability.New(prometheus.DefaultRegisterer)

	feedService := feed.NewService(cfg.FeedURL, cfg.FeedTimeout)
	feedService = feed.NewLoggingService(log.With(logger, "component", "feed"), feedService)
	feedService = feed.NewInstrumentingService(metrics, feedService)

	source := rates.NewSource(feedService, cfg.DefaultFromToken, cfg.DefaultToToken, log.With(logger, "component", "rates"))

	ctx := context.Background()
	if err := source.Load(ctx); err != nil {
		// The API surfaces the failure as a blocking error; the refresh
		// loop keeps trying.
		logger.Log("msg", "initial price load failed", "err", err)
	}
	go source.RefreshPeriodically(ctx, cfg.RefreshInterval)

	convertService := exchange.NewService(source)
	convertService = exchange.NewLoggingService(log.With(logger, "component", "exchange"), convertService)

	server := swaphttp.NewServer(swaphttp.Options{
		Source:    source,
		Convert:   convertService,
		Scheduler: session.TimerScheduler{},
		SessionConfig: session.Config{
			Debounce:        cfg.CalculationDebounce,
			SwapDuration:    cfg.SwapDuration,
			SuccessDuration: cfg.SuccessNotificationDuration,
			Slippage:        cfg.DefaultSlippage,
		},
		DefaultAmount: cfg.DefaultAmount,
		Metrics:       metrics,
		Logger:        log.With(logger, "component", "http"),
	})

	logger.Log("msg", "listening", "port", cfg.HTTPPort)
	err := nhttp.ListenAndServe(":"+cfg.HTTPPort, server)
	logger.Log("msg", "server stopped", "err", err)
}
