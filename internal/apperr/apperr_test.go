package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestKindSurvivesWrapping(t *testing.T) {
	base := Wrap(KindMalformed, "invalid qualification", errors.New("missing score"))
	wrapped := fmt.Errorf("lead 3: %w", base)

	if !Is(wrapped, KindMalformed) {
		t.Fatalf("expected malformed kind through fmt wrap, got %v", GetKind(wrapped))
	}
	if Retryable(wrapped) {
		t.Fatalf("malformed responses must not be retryable")
	}
}

func TestRetryableKinds(t *testing.T) {
	if !Retryable(New(KindTransport, "timeout")) {
		t.Fatalf("transport failures should be retryable")
	}
	if !Retryable(RateLimited("slow down", 0)) {
		t.Fatalf("rate limits should be retryable")
	}
	if Retryable(New(KindAuth, "bad key")) {
		t.Fatalf("auth failures should not be retryable")
	}
	if Retryable(errors.New("plain")) {
		t.Fatalf("unknown errors should not be retryable")
	}
}

func TestRetryAfterOnlyForRateLimits(t *testing.T) {
	if d := RetryAfter(RateLimited("slow down", 5*time.Second)); d != 5*time.Second {
		t.Fatalf("expected 5s, got %s", d)
	}
	if d := RetryAfter(New(KindTransport, "x")); d != 0 {
		t.Fatalf("expected 0 for transport, got %s", d)
	}
}

func TestHTTPStatus(t *testing.T) {
	if s := Validation("reason is required").HTTPStatus(); s != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", s)
	}
	if s := Conflict("batch running").HTTPStatus(); s != http.StatusConflict {
		t.Fatalf("expected 409, got %d", s)
	}
	if s := NotFound("lead").HTTPStatus(); s != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", s)
	}
}
