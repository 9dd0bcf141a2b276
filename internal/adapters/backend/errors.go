package backend

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/domain"
)

// The backend does not expose a structured error contract; rejections
// are classified here, once, from status code and message text. A 409
// whose text carries a duplicate marker is a duplicate-key conflict;
// any other 409 is treated as a stale revision. Everything else is a
// TransportError surfaced verbatim.

var duplicateMarkers = []string{"duplicate", "already exists", "key1"}

func classifyStatus(status int, body string) error {
	if status == http.StatusConflict {
		lower := strings.ToLower(body)
		for _, marker := range duplicateMarkers {
			if strings.Contains(lower, marker) {
				return &domain.ConflictError{
					Kind:    domain.ConflictDuplicateKey,
					Message: body,
				}
			}
		}
		return &domain.ConflictError{
			Kind:    domain.ConflictStaleRevision,
			Message: body,
		}
	}
	return &domain.TransportError{Status: status, Message: body}
}

func classifyNetErr(err error) error {
	return &domain.TransportError{Status: 0, Message: fmt.Sprintf("backend unreachable: %v", err)}
}
