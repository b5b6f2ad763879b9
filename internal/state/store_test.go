package state

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

type row struct {
	ID    int
	Label string
}

func TestStore_ZeroValueIsInitial(t *testing.T) {
	var s Store[row]
	if got := s.View().Phase; got != PhaseInitial {
		t.Fatalf("Phase = %v, want %v", got, PhaseInitial)
	}
}

func TestStore_PublishAndSnapshotClone(t *testing.T) {
	var s Store[row]

	before := time.Now()
	s.Publish(Success([]row{{ID: 1}, {ID: 2}}))

	snap := s.Snapshot()
	if snap.View.Phase != PhaseSuccess || len(snap.View.Items) != 2 {
		t.Fatalf("snapshot view = %#v, want success with 2 items", snap.View)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}

	snap.View.Items[0].ID = 999
	if again := s.Snapshot(); again.View.Items[0].ID != 1 {
		t.Fatalf("Snapshot should clone items; got id %d want 1", again.View.Items[0].ID)
	}
}

func TestStore_PublishClonesInput(t *testing.T) {
	var s Store[row]
	items := []row{{ID: 1}}
	s.Publish(Success(items))
	items[0].ID = 42
	if got := s.View().Items[0].ID; got != 1 {
		t.Fatalf("stored item id = %d, want 1", got)
	}
}

func TestStore_ErrorKeepsLastGoodAndCountsFailures(t *testing.T) {
	var s Store[row]
	s.Publish(Success([]row{{ID: 1}}))

	origErr := errors.New("boom")
	s.Publish(Failed(origErr, []row{{ID: 1}}))
	s.Publish(Failed(origErr, []row{{ID: 1}}))

	snap := s.Snapshot()
	if snap.View.Phase != PhaseError {
		t.Fatalf("Phase = %v, want error", snap.View.Phase)
	}
	if len(snap.View.Items) != 1 {
		t.Fatalf("Items = %#v, want last good list", snap.View.Items)
	}
	if snap.ConsecutiveFailures != 2 || !snap.IsOffline() {
		t.Fatalf("ConsecutiveFailures = %d, want 2 and offline", snap.ConsecutiveFailures)
	}
	if snap.LastError == nil || snap.LastError.Error() != "boom" {
		t.Fatalf("LastError = %v, want boom", snap.LastError)
	}
	if reflect.ValueOf(snap.LastError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("Snapshot should clone error instance")
	}

	s.Publish(Success([]row{{ID: 2}}))
	snap = s.Snapshot()
	if snap.ConsecutiveFailures != 0 || snap.LastError != nil {
		t.Fatalf("success should reset failures, got %d / %v", snap.ConsecutiveFailures, snap.LastError)
	}
}

func TestStore_LoadingDoesNotResetFailures(t *testing.T) {
	var s Store[row]
	s.Publish(Failed[row](errors.New("boom"), nil))
	s.Publish(Loading[row]())
	if got := s.Snapshot().ConsecutiveFailures; got != 1 {
		t.Fatalf("ConsecutiveFailures = %d, want 1", got)
	}
}

func TestStore_WatchReceivesTransitions(t *testing.T) {
	var s Store[row]
	var phases []Phase
	stop := s.Watch(func(v View[row]) { phases = append(phases, v.Phase) })

	s.Publish(Loading[row]())
	s.Publish(Success([]row{{ID: 1}}))
	stop()
	s.Publish(LoadingMore([]row{{ID: 1}}))

	want := []Phase{PhaseLoading, PhaseSuccess}
	if !reflect.DeepEqual(phases, want) {
		t.Fatalf("phases = %v, want %v", phases, want)
	}
}

func TestView_Helpers(t *testing.T) {
	if !Loading[row]().IsLoading() || !LoadingMore([]row{{ID: 1}}).IsLoading() {
		t.Fatalf("IsLoading should be true for loading phases")
	}
	if Success([]row{}).IsLoading() {
		t.Fatalf("IsLoading should be false for success")
	}
	if _, ok := Success[row](nil).First(); ok {
		t.Fatalf("First on empty view should report false")
	}
	first, ok := Success([]row{{ID: 7}, {ID: 8}}).First()
	if !ok || first.ID != 7 {
		t.Fatalf("First = %#v, %v; want id 7", first, ok)
	}
	if PhaseLoadingMore.String() != "loading-more" {
		t.Fatalf("String = %q", PhaseLoadingMore.String())
	}
}
