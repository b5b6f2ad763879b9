package apperr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"testing"
)

func TestClassify_PassesThroughClassified(t *testing.T) {
	orig := Server(503, "maintenance")
	wrapped := fmt.Errorf("fetch reviews: %w", orig)
	if got := Classify(wrapped); got != wrapped {
		t.Fatalf("Classify = %v, want the same error back", got)
	}
	if KindOf(wrapped) != KindServer {
		t.Fatalf("KindOf = %q, want %q", KindOf(wrapped), KindServer)
	}
}

func TestClassify_NetworkErrors(t *testing.T) {
	cases := []error{
		context.DeadlineExceeded,
		&net.DNSError{Err: "no such host", Name: "api.cinevibe.app"},
		&net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")},
		errors.New("dial tcp 127.0.0.1:1: connect: connection refused"),
	}
	for _, err := range cases {
		got := Classify(err)
		if !errors.Is(got, ErrNetwork) {
			t.Fatalf("Classify(%v) = %v, want network error", err, got)
		}
	}
}

func TestClassify_CanceledLeftAlone(t *testing.T) {
	if got := Classify(context.Canceled); got != context.Canceled {
		t.Fatalf("Classify(Canceled) = %v, want context.Canceled", got)
	}
}

func TestClassify_Unknown(t *testing.T) {
	got := Classify(errors.New("decode response: unexpected EOF"))
	if !errors.Is(got, ErrUnknown) {
		t.Fatalf("Classify = %v, want unknown error", got)
	}
	if Classify(nil) != nil {
		t.Fatalf("Classify(nil) should be nil")
	}
}

func TestError_IsMatchesCode(t *testing.T) {
	err := Server(404, "not found")
	if !errors.Is(err, ErrServer) {
		t.Fatalf("errors.Is(ErrServer) = false, want true")
	}
	if !errors.Is(err, &Error{Kind: KindServer, Code: 404}) {
		t.Fatalf("errors.Is(404) = false, want true")
	}
	if errors.Is(err, &Error{Kind: KindServer, Code: 500}) {
		t.Fatalf("errors.Is(500) = true, want false")
	}
	if errors.Is(err, ErrNetwork) {
		t.Fatalf("errors.Is(ErrNetwork) = true, want false")
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"network", Network(errors.New("timeout")), "check your connection"},
		{"server with message", Server(503, "maintenance"), "server error (503): maintenance"},
		{"server without message", Server(500, ""), "server error (500)"},
		{"unauthorized", Server(401, "token expired"), "sign in again"},
		{"validation", Validation("comment cannot be empty"), "comment cannot be empty"},
		{"raw refused", errors.New("connection refused"), "check your connection"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UserMessage(tt.err)
			if tt.want == "" {
				if got != "" {
					t.Fatalf("UserMessage = %q, want empty", got)
				}
				return
			}
			if !strings.Contains(got, tt.want) {
				t.Fatalf("UserMessage = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}
