package x11

import (
	"errors"
	"testing"
)

func TestMoveResizeWith(t *testing.T) {
	errRequest := errors.New("request rejected")
	errFallback := errors.New("bad window")
	ok := func() error { return nil }

	tests := []struct {
		name         string
		request      func() error
		fallback     func() error
		wantFallback bool
		wantErr      []error
	}{
		{name: "request succeeds", request: ok, fallback: ok},
		{
			name:         "fallback recovers",
			request:      func() error { return errRequest },
			fallback:     ok,
			wantFallback: true,
		},
		{
			name:         "both fail",
			request:      func() error { return errRequest },
			fallback:     func() error { return errFallback },
			wantFallback: true,
			wantErr:      []error{errRequest, errFallback},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ranFallback := false
			err := moveResizeWith(tt.request, func() error {
				ranFallback = true
				return tt.fallback()
			})
			if ranFallback != tt.wantFallback {
				t.Fatalf("fallback ran = %v, want %v", ranFallback, tt.wantFallback)
			}
			if len(tt.wantErr) == 0 {
				if err != nil {
					t.Fatalf("moveResizeWith() error = %v", err)
				}
				return
			}
			for _, want := range tt.wantErr {
				if !errors.Is(err, want) {
					t.Fatalf("moveResizeWith() error = %v, want it to wrap %v", err, want)
				}
			}
		})
	}
}
