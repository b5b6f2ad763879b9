package state

import "fmt"

// Phase discriminates the variants of View.
type Phase int

const (
	PhaseInitial Phase = iota
	PhaseLoading
	PhaseLoadingMore
	PhaseSuccess
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseInitial:
		return "initial"
	case PhaseLoading:
		return "loading"
	case PhaseLoadingMore:
		return "loading-more"
	case PhaseSuccess:
		return "success"
	case PhaseError:
		return "error"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// View is the tagged union a collection screen renders. Only the fields of
// the active Phase are meaningful:
//
//   - Initial, Loading: no payload
//   - LoadingMore: Items holds what was already on screen
//   - Success: Items holds the full accumulated list
//   - Error: Err holds the failure, Items the last successfully shown list
type View[T any] struct {
	Phase Phase
	Items []T
	Err   error
}

func Initial[T any]() View[T] { return View[T]{Phase: PhaseInitial} }

func Loading[T any]() View[T] { return View[T]{Phase: PhaseLoading} }

func LoadingMore[T any](current []T) View[T] {
	return View[T]{Phase: PhaseLoadingMore, Items: current}
}

func Success[T any](items []T) View[T] {
	return View[T]{Phase: PhaseSuccess, Items: items}
}

func Failed[T any](err error, lastGood []T) View[T] {
	return View[T]{Phase: PhaseError, Items: lastGood, Err: err}
}

// IsLoading reports whether a fetch is in flight.
func (v View[T]) IsLoading() bool {
	return v.Phase == PhaseLoading || v.Phase == PhaseLoadingMore
}

// First returns the first item, used by single-value holders such as the
// profile cache.
func (v View[T]) First() (T, bool) {
	var zero T
	if len(v.Items) == 0 {
		return zero, false
	}
	return v.Items[0], true
}

func (v View[T]) clone() View[T] {
	v.Items = cloneItems(v.Items)
	return v
}

func cloneItems[T any](items []T) []T {
	if items == nil {
		return nil
	}
	dup := make([]T, len(items))
	copy(dup, items)
	return dup
}
