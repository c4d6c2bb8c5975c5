package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"testing"
)

func TestError(t *testing.T) {
	err := New(KindValidation, "invalid input")
	if err.Error() != "invalid input" {
		t.Errorf("expected 'invalid input', got '%s'", err.Error())
	}

	wrapped := Wrap(err, KindInternal, "failed to validate")
	if wrapped.Error() != "failed to validate: invalid input" {
		t.Errorf("expected 'failed to validate: invalid input', got '%s'", wrapped.Error())
	}

	if Wrap(nil, KindInternal, "nothing") != nil {
		t.Errorf("expected Wrap(nil) to be nil")
	}
}

func TestGetKind(t *testing.T) {
	err := New(KindValidation, "invalid input")
	if GetKind(err) != KindValidation {
		t.Errorf("expected KindValidation, got %v", GetKind(err))
	}

	wrapped := Wrap(err, KindInternal, "failed")
	if GetKind(wrapped) != KindInternal {
		t.Errorf("expected KindInternal, got %v", GetKind(wrapped))
	}

	if GetKind(errors.New("std error")) != KindUnknown {
		t.Errorf("expected KindUnknown, got %v", GetKind(errors.New("std error")))
	}
}

func TestAttributes(t *testing.T) {
	err := New(KindNotFound, "missing")
	err = Attr(err, "path", "/proc/net/tcp6")

	wrapped := Wrap(err, KindUnavailable, "sampler failed")
	wrapped = Attr(wrapped, "source", "procfs")

	attrs := GetAttributes(wrapped)
	if attrs["path"] != "/proc/net/tcp6" || attrs["source"] != "procfs" {
		t.Errorf("missing attributes: %v", attrs)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"permission", fmt.Errorf("open: %w", fs.ErrPermission), KindPermission},
		{"not exist", fmt.Errorf("open: %w", fs.ErrNotExist), KindNotFound},
		{"missing binary", fmt.Errorf("exec: %w", exec.ErrNotFound), KindUnavailable},
		{"categorized", New(KindTimeout, "slow"), KindTimeout},
		{"other", errors.New("boom"), KindInternal},
		{"nil", nil, KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExpected(t *testing.T) {
	if !Expected(WrapOS(fs.ErrPermission, "read stat")) {
		t.Errorf("permission errors should be expected")
	}
	if Expected(errors.New("parse failure")) {
		t.Errorf("unclassified errors should not be expected")
	}
}
