// Package logger builds *slog.Logger values for the session service and
// holds the attribute helpers used across packages, so that keys such as
// "error", "cookie" or "request_id" are spelled the same everywhere.
//
// New takes functional options:
//
//	log := logger.New(
//	    logger.WithEnvironment(logger.EnvProduction, "sessiond"),
//	    logger.WithRedact("password", "token"),
//	    logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//
// WithEnvironment picks a preset: development logs text at debug level,
// staging and production log JSON at info level. WithRedact masks attribute
// values by key at any group depth. Context extractors run on every record,
// which is how request scoped values such as the request ID reach log lines
// written deep inside the session middleware.
//
// NewFromConfig builds the same logger from a Config loaded from the
// environment (APP_ENV, APP_NAME, LOG_LEVEL, LOG_FORMAT, LOG_REDACT) and
// returns an error for an unknown level or format.
//
// Nop returns a logger that drops everything. Packages use it as their
// default so that a missing logger never needs a nil check.
//
// Error and Errors return an empty attribute for nil errors, which slog
// omits:
//
//	log.Info("session committed", logger.Error(err))
package logger
