package docsubmit

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goliatone/go-docsubmit/internal/intakestub"
	"github.com/goliatone/go-docsubmit/pkg/form"
	"github.com/goliatone/go-docsubmit/pkg/orchestrator"
	"github.com/goliatone/go-docsubmit/pkg/validation"
)

func TestNewStore_SanitizesByDefault(t *testing.T) {
	store := NewStore()
	if err := store.Dispatch(form.UpdateField{Section: form.SectionPersonalInfo, Field: form.FieldFirstName, Value: "<b>Jane</b>"}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if got := store.Snapshot().PersonalInfo.FirstName; got != "Jane" {
		t.Fatalf("first name = %q, want Jane", got)
	}

	raw := NewStore(form.WithSanitizer(nil))
	if err := raw.Dispatch(form.UpdateField{Section: form.SectionPersonalInfo, Field: form.FieldFirstName, Value: "<b>Jane</b>"}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if got := raw.Snapshot().PersonalInfo.FirstName; got != "<b>Jane</b>" {
		t.Fatalf("sanitizer override ignored, got %q", got)
	}
}

func TestNewStore_KeepsTextThatIsNotMarkup(t *testing.T) {
	store := NewStore()
	for _, value := range []string{"Flat 3<B High St", "a<b", "Unit 2 > rear"} {
		if err := store.Dispatch(form.UpdateField{Section: form.SectionResidentialAddress, Field: form.FieldStreet1, Value: value}); err != nil {
			t.Fatalf("dispatch: %v", err)
		}
		if got := store.Snapshot().ResidentialAddress.Street1; got != value {
			t.Fatalf("street1 = %q, want %q", got, value)
		}
	}
}

func TestDefaults(t *testing.T) {
	if _, err := DefaultContract(context.Background()); err != nil {
		t.Fatalf("default contract: %v", err)
	}
	c, err := DefaultCatalogue()
	if err != nil {
		t.Fatalf("default catalogue: %v", err)
	}
	if len(c.Sections) != len(form.Sections()) {
		t.Fatalf("expected %d sections, got %d", len(form.Sections()), len(c.Sections))
	}
	if Validate(form.InitialState()).Accepted() {
		t.Fatalf("initial state must not validate")
	}
	if len(Package(form.InitialState()).FileParts()) != 0 {
		t.Fatalf("initial state has no files to package")
	}
}

func TestSubmit(t *testing.T) {
	stub := intakestub.New()
	srv := httptest.NewServer(stub.Handler())
	t.Cleanup(srv.Close)

	store := NewStore(form.WithInitialState(form.State{
		PersonalInfo:       form.PersonalInfo{FirstName: "Jane", LastName: "Doe", Email: "jane@example.com", DOB: "2000-05-01"},
		ResidentialAddress: form.Address{Street1: "1 Main St"},
		Documents: []form.Document{
			{FileName: "a.png", FileType: form.FileTypeImage, File: form.NewAttachment("a.png", "", []byte("a"))},
			{FileName: "b.pdf", FileType: form.FileTypePDF, File: form.NewAttachment("b.pdf", "", []byte("b"))},
		},
	}))
	schema := validation.New(validation.WithClock(func() time.Time {
		return time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)
	}))

	outcome, err := Submit(context.Background(), store, srv.URL, orchestrator.WithSchema(schema))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if outcome.Status != orchestrator.StatusSubmitted {
		t.Fatalf("status = %s", outcome.Status)
	}
	if got := len(stub.Receipts()); got != 1 {
		t.Fatalf("expected one receipt, got %d", got)
	}
}
