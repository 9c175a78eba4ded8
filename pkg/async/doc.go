// Package async provides a small generic Future used to run work in the
// background and collect its result later.
//
// Async starts the supplied function in its own goroutine and immediately
// returns a *Future. The caller waits with Await, bounds the wait with
// AwaitContext or AwaitWithTimeout, or polls with IsComplete. Resolved and
// Failed build futures that are already complete, which keeps call sites
// uniform when a result is known synchronously.
//
// # Usage
//
//	f := async.Async(ctx, payload, func(ctx context.Context, p []byte) (string, error) {
//	    return sealer.SealBytes(p)
//	})
//
//	token, err := f.Await()
//
// # Error Handling
//
// Await returns the error produced by the callback. AwaitContext returns the
// context error if the wait is abandoned and AwaitWithTimeout returns
// ErrTimeout. Abandoning a wait never cancels the running computation.
package async
