package errors_test

import (
	stderrors "errors"
	"strings"
	"testing"

	coderrors "github.com/akorchagin/jxl-coder/errors"
)

func TestSink_RecordOrderAndFatal(t *testing.T) {
	sink := coderrors.NewSink()

	sink.Info("jxl.decode", "a.jxl", stderrors.New("starting"))
	sink.Warn(coderrors.KindCorruptOrUnreadable, "jxl.decode", "a.jxl", stderrors.New("odd box"))
	first := sink.Throw(coderrors.KindInsufficientInputData, "jxl.decode", "a.jxl", stderrors.New("eof"))
	sink.Throw(coderrors.KindCorruptOrUnreadable, "jxl.decode", "a.jxl", stderrors.New("later"))

	if got := sink.Len(); got != 4 {
		t.Fatalf("Len: got %d, want 4", got)
	}
	if sink.Fatal() != first {
		t.Errorf("Fatal: got %v, want first fatal record", sink.Fatal())
	}

	records := sink.Records()
	wantSeverity := []coderrors.Severity{
		coderrors.SeverityInfo,
		coderrors.SeverityWarning,
		coderrors.SeverityFatal,
		coderrors.SeverityFatal,
	}
	for i, r := range records {
		if r.Severity != wantSeverity[i] {
			t.Errorf("record %d severity: got %v, want %v", i, r.Severity, wantSeverity[i])
		}
	}
}

func TestSink_FatalOnSuccess(t *testing.T) {
	sink := coderrors.NewSink()
	sink.Info("jxl.decode", "a.jxl", stderrors.New("note"))
	if sink.Fatal() != nil {
		t.Error("Fatal on a sink without fatal records should be nil")
	}
}

func TestCoderError_MessageAndUnwrap(t *testing.T) {
	cause := stderrors.New("out of budget")
	err := coderrors.New(coderrors.KindAllocationFailure, "jxl.decode", "photo.jxl", cause)

	if !stderrors.Is(err, cause) {
		t.Error("Unwrap should expose the cause")
	}
	msg := err.Error()
	for _, want := range []string{"allocation_failure", "jxl.decode", "photo.jxl"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
}

func TestIsKind(t *testing.T) {
	err := coderrors.New(coderrors.KindUnsupportedVariant, "jxl.decode", "anim.jxl", stderrors.New("animated"))
	if !coderrors.IsKind(err, coderrors.KindUnsupportedVariant) {
		t.Error("IsKind should match the record's kind")
	}
	if coderrors.IsKind(err, coderrors.KindEncodeFailure) {
		t.Error("IsKind should not match a different kind")
	}
	if coderrors.IsKind(stderrors.New("plain"), coderrors.KindEncodeFailure) {
		t.Error("IsKind on a plain error should be false")
	}
}
