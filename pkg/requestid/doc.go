// Package requestid tags every request with a correlation ID.
//
// Middleware reuses a valid X-Request-ID header sent by the client, or
// generates a UUIDv7, stores it in the request context and echoes it in the
// response header. IDs longer than 128 characters or containing anything but
// letters, digits, '-' and '_' are replaced.
//
// LoggerExtractor adds the ID to every log record written with the request
// context, which ties session commit failures back to the request that
// caused them:
//
//	log := logger.New(logger.WithContextExtractors(requestid.LoggerExtractor()))
//
// New accepts options for a custom header, a custom generator, or for
// ignoring client supplied IDs.
package requestid
