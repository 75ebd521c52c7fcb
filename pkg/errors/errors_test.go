package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeConflict, "package %q declared twice", "NotJson")

	if err.Code != ErrCodeConflict {
		t.Errorf("Code = %q, want %q", err.Code, ErrCodeConflict)
	}
	want := `GRAPH_CONFLICT: package "NotJson" declared twice`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(ErrCodeFetchTransport, cause, "failed to clone %s", "https://example.com/repo")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error should match cause via errors.Is")
	}
	if err.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{"MatchingCode", New(ErrCodeCycle, "cycle"), ErrCodeCycle, true},
		{"DifferentCode", New(ErrCodeCycle, "cycle"), ErrCodeConflict, false},
		{"WrappedInFmt", fmt.Errorf("outer: %w", New(ErrCodeCycle, "cycle")), ErrCodeCycle, true},
		{"PlainError", stderrors.New("plain"), ErrCodeCycle, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeCompileFailed, "boom")); got != ErrCodeCompileFailed {
		t.Errorf("GetCode = %q, want %q", got, ErrCodeCompileFailed)
	}
	if got := GetCode(stderrors.New("plain")); got != "" {
		t.Errorf("GetCode on plain error = %q, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeInvalidManifest, "missing package name")
	if got := UserMessage(err); got != "missing package name" {
		t.Errorf("UserMessage = %q", got)
	}
	plain := stderrors.New("plain failure")
	if got := UserMessage(plain); got != "plain failure" {
		t.Errorf("UserMessage on plain error = %q", got)
	}
}
