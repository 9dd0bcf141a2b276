package backend

import (
	"errors"
	"net/http"
	"testing"

	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/domain"
)

func TestClassifyStatus(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   domain.ConflictKind
	}{
		{"duplicate marker", http.StatusConflict, "record with Key1 26090008 already exists", domain.ConflictDuplicateKey},
		{"duplicate word", http.StatusConflict, "Duplicate record", domain.ConflictDuplicateKey},
		{"bare conflict", http.StatusConflict, "row changed since last read", domain.ConflictStaleRevision},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := classifyStatus(tc.status, tc.body)
			var conflict *domain.ConflictError
			if !errors.As(err, &conflict) {
				t.Fatalf("expected ConflictError, got %T: %v", err, err)
			}
			if conflict.Kind != tc.want {
				t.Fatalf("kind = %s, want %s", conflict.Kind, tc.want)
			}
		})
	}
}

func TestClassifyStatusNonConflict(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusInternalServerError, http.StatusBadGateway} {
		err := classifyStatus(status, "boom")
		var te *domain.TransportError
		if !errors.As(err, &te) {
			t.Fatalf("status %d: expected TransportError, got %T", status, err)
		}
		if te.Status != status {
			t.Fatalf("status %d carried as %d", status, te.Status)
		}
	}
}

func TestClassifiedDuplicateSatisfiesRetryCheck(t *testing.T) {
	dup := classifyStatus(http.StatusConflict, "Key1 value is taken")
	if !domain.IsDuplicateKey(dup) {
		t.Fatal("classified duplicate must be retryable by the allocator")
	}
	stale := classifyStatus(http.StatusConflict, "row changed since last read")
	if domain.IsDuplicateKey(stale) {
		t.Fatal("stale revision must not be retryable")
	}
}
