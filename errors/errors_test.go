package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestErrorClass_String(t *testing.T) {
	tests := []struct {
		class    ErrorClass
		expected string
	}{
		{ErrorTransient, "transient"},
		{ErrorInvalid, "invalid"},
		{ErrorFatal, "fatal"},
		{ErrorClass(999), "unknown"},
	}

	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			result := test.class.String()
			if result != test.expected {
				t.Errorf("expected %s, got %s", test.expected, result)
			}
		})
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection timeout", ErrConnectionTimeout, true},
		{"context deadline exceeded", context.DeadlineExceeded, true},
		{"context canceled", context.Canceled, true},
		{"ambiguous delimiter", ErrAmbiguousDelimiter, false},
		{"transport failure", ErrTransport, false},
		{"wrapped timeout", fmt.Errorf("publish: %w", ErrConnectionTimeout), true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := IsTransient(test.err); got != test.expected {
				t.Errorf("IsTransient(%v) = %v, want %v", test.err, got, test.expected)
			}
		})
	}
}

func TestIsInvalid(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"missing argument", ErrMissingArgument, true},
		{"ambiguous delimiter", ErrAmbiguousDelimiter, true},
		{"unsupported scheme", ErrUnsupportedScheme, true},
		{"resource not found", ErrResourceNotFound, true},
		{"transport failure", ErrTransport, false},
		{"wrapped scheme error", fmt.Errorf("encode: %w", ErrUnsupportedScheme), true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := IsInvalid(test.err); got != test.expected {
				t.Errorf("IsInvalid(%v) = %v, want %v", test.err, got, test.expected)
			}
		})
	}
}

func TestIsFatal(t *testing.T) {
	if !IsFatal(ErrTransport) {
		t.Error("ErrTransport should be fatal")
	}
	if !IsFatal(ErrSendFailure) {
		t.Error("ErrSendFailure should be fatal")
	}
	if IsFatal(ErrConnectionTimeout) {
		t.Error("ErrConnectionTimeout should not be fatal")
	}
	if IsFatal(nil) {
		t.Error("nil should not be fatal")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorClass
	}{
		{"timeout is transient", ErrConnectionTimeout, ErrorTransient},
		{"parse error is invalid", ErrAmbiguousDelimiter, ErrorInvalid},
		{"transport error is fatal", ErrTransport, ErrorFatal},
		{"send failure is fatal", ErrSendFailure, ErrorFatal},
		{"unknown defaults to transient", errors.New("mystery"), ErrorTransient},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := Classify(test.err); got != test.expected {
				t.Errorf("Classify(%v) = %v, want %v", test.err, got, test.expected)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	base := errors.New("boom")
	err := Wrap(base, "encoder", "EncodeEvent", "payload sizing")
	if err == nil {
		t.Fatal("expected error")
	}
	expected := "encoder.EncodeEvent: payload sizing failed: boom"
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}
	if !errors.Is(err, base) {
		t.Error("wrapped error should match base with errors.Is")
	}
	if Wrap(nil, "a", "b", "c") != nil {
		t.Error("wrapping nil should return nil")
	}
}

func TestWrapClassified(t *testing.T) {
	base := errors.New("boom")

	terr := WrapTransient(base, "transport", "Offer", "publish")
	if !IsTransient(terr) {
		t.Error("WrapTransient result should be transient")
	}

	ferr := WrapFatal(base, "transport", "Offer", "publish")
	if !IsFatal(ferr) {
		t.Error("WrapFatal result should be fatal")
	}

	ierr := WrapInvalid(base, "parse", "ParsePair", "token split")
	if !IsInvalid(ierr) {
		t.Error("WrapInvalid result should be invalid")
	}

	var ce *ClassifiedError
	if !errors.As(terr, &ce) {
		t.Fatal("expected ClassifiedError")
	}
	if ce.Component != "transport" || ce.Operation != "Offer" {
		t.Errorf("unexpected component/operation: %s/%s", ce.Component, ce.Operation)
	}
	if !errors.Is(terr, base) {
		t.Error("classified error should unwrap to base")
	}
}
