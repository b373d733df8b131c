package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	l, err := New(false, "")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if l.Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("info should be disabled by default")
	}
	if !l.Core().Enabled(zapcore.WarnLevel) {
		t.Fatalf("warn should be enabled")
	}

	l, err = New(true, "console")
	if err != nil {
		t.Fatalf("new verbose: %v", err)
	}
	if !l.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("debug should be enabled when verbose")
	}
}

func TestNew_UnknownEncoding(t *testing.T) {
	if _, err := New(false, "xml"); err == nil {
		t.Fatalf("expected error")
	}
}
