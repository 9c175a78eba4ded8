package main

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dmitrymomot/sealedsession/pkg/config"
	"github.com/dmitrymomot/sealedsession/pkg/httpserver"
	"github.com/dmitrymomot/sealedsession/pkg/logger"
	"github.com/dmitrymomot/sealedsession/pkg/requestid"
	"github.com/dmitrymomot/sealedsession/pkg/session"
)

func run(ctx context.Context) error {
	var (
		logCfg     logger.Config
		sessionCfg session.Config
		httpCfg    httpserver.Config
	)
	if err := config.Load(&logCfg); err != nil {
		return err
	}
	if err := config.Load(&sessionCfg); err != nil {
		return err
	}
	if err := config.Load(&httpCfg); err != nil {
		return err
	}

	log, err := logger.NewFromConfig(logCfg,
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)
	if err != nil {
		return err
	}
	logger.SetAsDefault(log)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	manager, err := session.NewFromConfig(sessionCfg,
		session.WithLogger(log),
		session.WithMetrics(session.NewPrometheusMetrics(session.WithMetricsRegistry(registry))),
	)
	if err != nil {
		log.ErrorContext(ctx, "session manager init failed", logger.Error(err))
		return err
	}

	log.InfoContext(ctx, "starting sessiond", slog.String("version", version))
	srv := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log))
	return srv.Run(ctx, newRouter(manager, log, registry))
}
