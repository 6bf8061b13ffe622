package form_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-docsubmit/pkg/form"
)

func TestStore_DispatchAndSnapshot(t *testing.T) {
	store := form.NewStore()

	if err := store.Dispatch(form.UpdateField{Section: form.SectionPersonalInfo, Field: form.FieldLastName, Value: "Doe"}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	snap := store.Snapshot()
	if snap.PersonalInfo.LastName != "Doe" {
		t.Fatalf("last name = %q, want Doe", snap.PersonalInfo.LastName)
	}

	// Snapshots are detached from the store.
	snap.Documents[0].FileName = "tampered"
	snap.Documents = append(snap.Documents, form.Document{FileName: "extra"})
	if got := store.Snapshot().Documents; len(got) != 1 || got[0].FileName != "" {
		t.Fatalf("snapshot mutation leaked into store: %+v", got)
	}
}

func TestStore_RejectedActionKeepsState(t *testing.T) {
	store := form.NewStore()
	before := store.Snapshot()

	err := store.Dispatch(form.RemoveDocument{Index: 0})
	if !errors.Is(err, form.ErrLastDocument) {
		t.Fatalf("expected ErrLastDocument, got %v", err)
	}
	if diff := cmp.Diff(before, store.Snapshot(), cmpAttachments); diff != "" {
		t.Fatalf("state changed (-want +got):\n%s", diff)
	}
}

func TestStore_Subscribe(t *testing.T) {
	store := form.NewStore()

	var seen []int
	unsubscribe := store.Subscribe(func(s form.State) {
		seen = append(seen, len(s.Documents))
	})

	_ = store.Dispatch(form.AddNewDocument{})
	_ = store.Dispatch(form.AddNewDocument{})
	_ = store.Dispatch(form.RemoveDocument{Index: 99})
	unsubscribe()
	_ = store.Dispatch(form.AddNewDocument{})

	if diff := cmp.Diff([]int{2, 3}, seen); diff != "" {
		t.Fatalf("notifications mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_Sanitizer(t *testing.T) {
	store := form.NewStore(form.WithSanitizer(strings.ToUpper))

	_ = store.Dispatch(form.UpdateField{Section: form.SectionPersonalInfo, Field: form.FieldFirstName, Value: "jane"})
	_ = store.Dispatch(form.UpdateDocument{Index: 0, Field: form.FieldFileName, Value: "scan.pdf"})
	_ = store.Dispatch(form.UpdateDocument{Index: 0, Field: form.FieldFileType, Value: "pdf"})

	snap := store.Snapshot()
	if snap.PersonalInfo.FirstName != "JANE" {
		t.Fatalf("first name = %q, want sanitised value", snap.PersonalInfo.FirstName)
	}
	if snap.Documents[0].FileName != "SCAN.PDF" {
		t.Fatalf("file name = %q, want sanitised value", snap.Documents[0].FileName)
	}
	if snap.Documents[0].FileType != form.FileTypePDF {
		t.Fatalf("file type = %q, want untouched enum value", snap.Documents[0].FileType)
	}
}

func TestStore_WithInitialState(t *testing.T) {
	seed := form.State{PersonalInfo: form.PersonalInfo{FirstName: "Ada"}}
	store := form.NewStore(form.WithInitialState(seed))

	snap := store.Snapshot()
	if snap.PersonalInfo.FirstName != "Ada" {
		t.Fatalf("first name = %q, want Ada", snap.PersonalInfo.FirstName)
	}
	if len(snap.Documents) != 1 {
		t.Fatalf("expected placeholder document, got %d", len(snap.Documents))
	}
}

func TestStore_DispatchAtVersion(t *testing.T) {
	store := form.NewStore()
	snap, version := store.SnapshotVersion()
	if diff := cmp.Diff(form.InitialState(), snap, cmpAttachments); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}

	update := form.UpdateField{Section: form.SectionPersonalInfo, Field: form.FieldFirstName, Value: "Jane"}
	if err := store.Dispatch(update); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if store.Version() != version+1 {
		t.Fatalf("version = %d, want %d", store.Version(), version+1)
	}

	applied, err := store.DispatchAtVersion(context.Background(), version, form.ResetFormFields{})
	if err != nil || applied {
		t.Fatalf("stale version must not apply: applied=%v err=%v", applied, err)
	}
	if store.Snapshot().PersonalInfo.FirstName != "Jane" {
		t.Fatalf("stale batch changed state")
	}

	applied, err = store.DispatchAtVersion(context.Background(), store.Version(), form.AddNewDocument{}, form.RemoveDocument{Index: 5})
	if !errors.Is(err, form.ErrIndexOutOfRange) || applied {
		t.Fatalf("expected ErrIndexOutOfRange, got applied=%v err=%v", applied, err)
	}
	if len(store.Snapshot().Documents) != 1 {
		t.Fatalf("failed batch must be discarded as a whole")
	}

	applied, err = store.DispatchAtVersion(context.Background(), store.Version(), form.ResetFormFields{}, form.ResetDocuments{})
	if err != nil || !applied {
		t.Fatalf("current version should apply: applied=%v err=%v", applied, err)
	}
	if diff := cmp.Diff(form.InitialState(), store.Snapshot(), cmpAttachments); diff != "" {
		t.Fatalf("reset mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_ConcurrentReaders(t *testing.T) {
	store := form.NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = store.Snapshot()
			}
		}()
	}
	for j := 0; j < 50; j++ {
		_ = store.Dispatch(form.AddNewDocument{})
	}
	wg.Wait()

	if got := len(store.Snapshot().Documents); got != 51 {
		t.Fatalf("documents = %d, want 51", got)
	}
}

func TestAttachment(t *testing.T) {
	data := []byte("%PDF-1.4 sample")
	a := form.NewAttachment(" report.pdf ", "", data)
	data[0] = 'X'

	if a.Name() != "report.pdf" {
		t.Fatalf("name = %q", a.Name())
	}
	if a.ContentType() != "application/pdf" {
		t.Fatalf("content type = %q, want application/pdf", a.ContentType())
	}
	if got := string(a.Bytes()); got != "%PDF-1.4 sample" {
		t.Fatalf("attachment aliased caller buffer: %q", got)
	}
	if a.Size() != len(data) {
		t.Fatalf("size = %d", a.Size())
	}

	var missing *form.Attachment
	if missing.Size() != 0 || missing.Name() != "" || missing.Bytes() != nil {
		t.Fatalf("nil attachment accessors should be zero")
	}
}

func TestAttachmentFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scan.png")
	png := []byte("\x89PNG\r\n\x1a\n0000")
	if err := os.WriteFile(path, png, 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	a, err := form.AttachmentFromFile(path)
	if err != nil {
		t.Fatalf("attachment from file: %v", err)
	}
	if a.Name() != "scan.png" || a.ContentType() != "image/png" || a.Size() != len(png) {
		t.Fatalf("unexpected attachment: %s %s %d", a.Name(), a.ContentType(), a.Size())
	}

	if _, err := form.AttachmentFromFile(filepath.Join(dir, "missing.pdf")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
