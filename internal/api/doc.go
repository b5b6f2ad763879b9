// Package api provides an HTTP client for the CineVibe REST backend.
//
// # Overview
//
// The package is split into three files:
//
//   - client.go: transport, auth header, throttling, retries, error decoding
//   - endpoints.go: one method per backend operation, grouped behind the
//     MovieReader, ReviewService, CommentService, ConnectionService and
//     ProfileService interfaces
//   - types.go: data structures mirroring the API schema
//
// # Client Usage
//
//	client, err := api.NewClient(api.Options{
//		BaseURL: cfg.APIURL,
//		Tokens:  identity,
//		Logger:  logger,
//	})
//	if err != nil {
//		return fmt.Errorf("init api client: %w", err)
//	}
//
//	page, err := client.FetchMovieReviews(ctx, movieID, 0, 20)
//
// # Paging
//
// Listing endpoints take a zero-based page index and a page size and return
// Page[T]. A page shorter than the requested size, or one flagged is_last,
// ends the collection.
//
// # Request Handling
//
// All requests:
//   - Use context for cancellation
//   - Wait on a token-bucket limiter (requests_per_second)
//   - Send Authorization: Bearer <Firebase ID token> when a TokenSource is set
//   - Send an Idempotency-Key header on POST so retried creates are safe
//
// Only GET requests that fail in transit are retried, with exponential
// delay starting at 200ms and capped at 2s.
//
// # Errors
//
// Every error returned is classified through apperr:
//
//   - transport failures and timeouts: apperr.KindNetwork
//   - status >= 400: apperr.KindServer carrying the status code and the
//     message from the {"error":{...}} envelope when present
//   - decode and request-building failures: apperr.KindUnknown
//
// Context cancellation is returned unwrapped.
package api
