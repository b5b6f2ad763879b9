// Package feed implements the paged, optimistically updated collections
// behind every CineVibe list screen.
//
// # Controller
//
// Controller owns one remote collection fetched in fixed-size pages:
//
//	ctrl := feed.NewController(fetchComments, func(c api.Comment) int64 { return c.ID },
//		feed.WithPageSize(20), feed.WithLogger(logger))
//	ctrl.Load(ctx, true)  // first page (Loading -> Success)
//	ctrl.Load(ctx, false) // next page (LoadingMore -> Success)
//
// A page with fewer items than the page size (or flagged is_last) ends the
// collection; further non-refresh loads are no-ops until the next refresh.
// Non-refresh loads are also no-ops while a fetch is in flight. A refresh
// always proceeds; the superseded fetch's result is dropped when it lands.
//
// Failures never escape Load. They are classified through apperr and
// published as an Error view that keeps the last successfully shown items.
//
// # Mutator
//
// Mutator gives toggle-style actions (like/unlike, follow/unfollow) immediate
// feedback:
//
//	ApplyOptimistic ──> remote call ──ok──> Reconcile(server state)
//	                               └─fail─> Rollback(prior state)
//
// Each apply stamps a per-item sequence number. A reconcile or rollback
// carrying an older number than the newest apply for that item is dropped,
// so rapid like/unlike/like settles on the last response only.
package feed
