package services_test

import (
	"errors"
	"strings"
	"testing"

	"vetter/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("connection refused")
	err := services.Wrap(services.ErrCollaborator, "ingest", "fetch rows", "source unreachable", base)
	if !errors.Is(err, services.ErrCollaborator) {
		t.Fatalf("expected ErrCollaborator marker, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped cause to survive, got %v", err)
	}
	for _, fragment := range []string{"ingest", "fetch rows", "source unreachable"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Errorf("error message missing %q: %s", fragment, err)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "evaluate", "score", "", nil)
	if !errors.Is(err, services.ErrCollaborator) {
		t.Fatalf("expected default collaborator marker, got %v", err)
	}
}

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{services.Wrap(services.ErrValidation, "ingest", "", "", nil), false},
		{services.Wrap(services.ErrMissingKey, "ingest", "", "", nil), false},
		{services.Wrap(services.ErrCollaborator, "questions", "", "", nil), true},
		{services.Wrap(services.ErrParse, "questions", "", "", nil), true},
		{errors.New("plain"), true},
	}
	for _, tc := range cases {
		if got := services.IsRetryable(tc.err); got != tc.want {
			t.Errorf("IsRetryable(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
