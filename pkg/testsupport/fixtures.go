// Package testsupport holds fixtures and golden-file helpers shared by the
// package tests.
package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-docsubmit/pkg/form"
	"github.com/goliatone/go-docsubmit/pkg/validation"
)

// Now is the fixed instant used by fixture clocks.
var Now = time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)

// Clock returns Now.
func Clock() time.Time {
	return Now
}

// Schema returns the default schema evaluated against Clock.
func Schema(opts ...validation.Option) *validation.Schema {
	return validation.New(append([]validation.Option{validation.WithClock(Clock)}, opts...)...)
}

// CompleteState returns a snapshot the default schema accepts: an adult
// applicant, a residential address mirrored to the permanent one and two
// attached documents.
func CompleteState() form.State {
	return form.State{
		PersonalInfo: form.PersonalInfo{
			FirstName: "Jane",
			LastName:  "Doe",
			Email:     "jane@example.com",
			DOB:       "1990-01-01",
		},
		ResidentialAddress: form.Address{Street1: "1 Main St", Street2: "Apt 4"},
		SameAsResidential:  true,
		PermanentAddress:   form.Address{Street1: "1 Main St", Street2: "Apt 4"},
		Documents: []form.Document{
			{FileName: "id.png", FileType: form.FileTypeImage, File: form.NewAttachment("id.png", "image/png", []byte("png-bytes"))},
			{FileName: "lease.pdf", FileType: form.FileTypePDF, File: form.NewAttachment("lease.pdf", "application/pdf", []byte("%PDF-1.7"))},
		},
	}
}

// AttachmentComparer compares attachments by identity for cmp.Diff.
var AttachmentComparer = cmp.Comparer(func(a, b *form.Attachment) bool { return a == b })

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// CompareJSONGolden marshals got and diffs it against the JSON golden at path,
// ignoring key order and whitespace.
func CompareJSONGolden(t *testing.T, path string, got any) {
	t.Helper()

	payload, err := json.MarshalIndent(got, "", "  ")
	if err != nil {
		t.Fatalf("marshal value: %v", err)
	}
	if WriteMaybeGolden(t, path, append(payload, '\n')) {
		return
	}

	var want, have any
	if err := json.Unmarshal(MustReadGolden(t, path), &want); err != nil {
		t.Fatalf("unmarshal golden: %v", err)
	}
	if err := json.Unmarshal(payload, &have); err != nil {
		t.Fatalf("unmarshal value: %v", err)
	}
	if diff := cmp.Diff(want, have); diff != "" {
		t.Fatalf("golden mismatch %s (-want +got):\n%s", path, diff)
	}
}
