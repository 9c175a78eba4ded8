// Package httpserver runs an http.Server with graceful shutdown, server
// timeouts, health-check handlers and structured logging via slog.
//
// Run blocks until the context is cancelled, SIGINT or SIGTERM arrives, or
// Shutdown is called, then drains in-flight requests for at most the
// configured shutdown timeout. The request base context is detached from
// the Run context, so handlers finishing during the drain keep a live
// context.
//
// Construction goes through New or NewFromConfig plus Option helpers such
// as WithAddr, WithReadTimeout and WithLogger. Options ignore zero values,
// which lets a partially filled Config pass straight through.
//
// Ready and Addr expose the bound listener, which makes ":0" addresses
// usable in tests.
//
// # Usage
//
//	r := chi.NewRouter()
//	r.Get("/livez", httpserver.LivenessHandler())
//	r.Get("/readyz", httpserver.ReadinessHandler(log, checkSealer))
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, r); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
//
// # Errors
//
// Run wraps listen errors with ErrStart, while Shutdown wraps underlying
// shutdown errors with ErrShutdown. Use errors.Is to distinguish them.
package httpserver
