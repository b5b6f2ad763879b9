// Package state holds the observable view state of CineVibe collections.
//
// # Overview
//
// Every paged list in the client (movies, reviews, comments, connections) and
// the cached current-user profile exposes exactly one View at a time:
//
//	Initial ──load──> Loading ──ok──> Success(items)
//	                     │                │
//	                     │             load more
//	                     │                ↓
//	                     │        LoadingMore(items) ──ok──> Success(items+page)
//	                     │                │
//	                     └─────fail───────┴──fail──> Error(err, lastGood)
//
// LoadingMore carries the items already on screen so the UI never flashes
// to an empty list during an incremental fetch. Error carries the last list
// that was successfully shown, so a failed refresh does not lose pages.
//
// # Store
//
// Store is the coordination point between the goroutines that fetch and the
// UI that renders:
//
//	Controller goroutine:          UI (Bubble Tea):
//	┌──────────────────┐          ┌───────────────────┐
//	│ fetch page       │          │                   │
//	│      ↓           │          │                   │
//	│ store.Publish()  │─────────→│ store.Snapshot()  │
//	│                  │ (RWMutex)│      ↓            │
//	│                  │          │  render           │
//	└──────────────────┘          └───────────────────┘
//
// Publish and Snapshot both copy the item slice, so neither side can mutate
// what the other holds. Watch callbacks run after the lock is released and
// receive their own copy.
//
// Snapshot also tracks LastUpdated, LastError and ConsecutiveFailures; the UI
// uses IsOffline to switch the header into an offline badge.
//
// The zero Store is ready to use and reports PhaseInitial.
package state
