package validation_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-docsubmit/pkg/form"
	"github.com/goliatone/go-docsubmit/pkg/testsupport"
	"github.com/goliatone/go-docsubmit/pkg/validation"
)

var fixedNow = testsupport.Clock

func validState() form.State {
	return form.State{
		PersonalInfo: form.PersonalInfo{
			FirstName: "Jane",
			LastName:  "Doe",
			Email:     "jane@example.com",
			DOB:       "1990-01-01",
		},
		ResidentialAddress: form.Address{Street1: "1 Main St"},
		Documents: []form.Document{
			{FileName: "a.png", FileType: form.FileTypeImage, File: form.NewAttachment("a.png", "image/png", []byte("png"))},
			{FileName: "b.pdf", FileType: form.FileTypePDF, File: form.NewAttachment("b.pdf", "application/pdf", []byte("%PDF"))},
		},
	}
}

func TestValidate_AcceptsCompleteSubmission(t *testing.T) {
	result := validation.Validate(validState(), validation.WithClock(fixedNow))

	if !result.Accepted() {
		t.Fatalf("expected accepted, got errors %v", result.Errors.Flatten())
	}
	if result.Err() != nil {
		t.Fatalf("accepted result returned error: %v", result.Err())
	}
	if !result.Errors.Empty() {
		t.Fatalf("accepted result carries errors")
	}
}

func TestValidate_RejectsUnderage(t *testing.T) {
	state := validState()
	state.PersonalInfo.DOB = fmt.Sprintf("%d-06-01", fixedNow().Year()-10)

	result := validation.Validate(state, validation.WithClock(fixedNow))

	if result.Verdict != validation.Rejected {
		t.Fatalf("expected rejected verdict")
	}
	want := []validation.Issue{{Kind: validation.KindBusinessRule, Message: validation.MsgUnderage}}
	if diff := cmp.Diff(want, result.Errors.Issues("personalInfo.dob")); diff != "" {
		t.Fatalf("dob issues mismatch (-want +got):\n%s", diff)
	}
	if got := result.Errors.Paths(); len(got) != 1 {
		t.Fatalf("expected only the dob path, got %v", got)
	}
}

func TestValidate_RejectsTooFewDocuments(t *testing.T) {
	state := validState()
	state.Documents = state.Documents[:1]

	result := validation.Validate(state, validation.WithClock(fixedNow))

	want := []validation.Issue{{Kind: validation.KindTooFew, Message: validation.MsgTooFewDocuments}}
	if diff := cmp.Diff(want, result.Errors.Issues("documents")); diff != "" {
		t.Fatalf("documents issues mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_AgeUsesYearsOnly(t *testing.T) {
	state := validState()
	// Turns 18 in December of the clock's year; year arithmetic already counts 18.
	state.PersonalInfo.DOB = fmt.Sprintf("%d-12-31", fixedNow().Year()-18)

	if result := validation.Validate(state, validation.WithClock(fixedNow)); !result.Accepted() {
		t.Fatalf("expected year-only arithmetic to accept, got %v", result.Errors.Flatten())
	}

	state.PersonalInfo.DOB = fmt.Sprintf("%d-01-01", fixedNow().Year()-17)
	if result := validation.Validate(state, validation.WithClock(fixedNow)); result.Accepted() {
		t.Fatalf("expected 17 year old to be rejected")
	}
}

func TestValidate_CollectsEveryFailure(t *testing.T) {
	state := form.State{
		PersonalInfo: form.PersonalInfo{Email: "not-an-email", DOB: "garbage"},
		Documents: []form.Document{
			{FileType: "zip"},
		},
	}

	result := validation.Validate(state, validation.WithClock(fixedNow))

	want := map[string][]string{
		"personalInfo.firstName":     {validation.MsgFirstNameRequired},
		"personalInfo.lastName":      {validation.MsgLastNameRequired},
		"personalInfo.email":         {validation.MsgInvalidEmail},
		"personalInfo.dob":           {validation.MsgUnderage},
		"residentialAddress.street1": {validation.MsgResidentialStreet1},
		"documents.0.fileName":       {validation.MsgFileNameRequired},
		"documents.0.fileType":       {validation.MsgFileTypeInvalid},
		"documents.0.file":           {validation.MsgFileRequired},
		"documents":                  {validation.MsgTooFewDocuments},
	}
	if diff := cmp.Diff(want, result.Errors.Flatten()); diff != "" {
		t.Fatalf("error tree mismatch (-want +got):\n%s", diff)
	}
	if result.Errors.Len() != len(want) {
		t.Fatalf("Len() = %d, want %d", result.Errors.Len(), len(want))
	}

	var verr *validation.ValidationError
	if !errors.As(result.Err(), &verr) || verr.Tree != result.Errors {
		t.Fatalf("expected ValidationError wrapping the tree, got %v", result.Err())
	}
}

func TestValidate_EmailFormats(t *testing.T) {
	cases := map[string]bool{
		"jane@example.com":      true,
		"jane.doe+tag@mail.org": true,
		"":                      false,
		"jane":                  false,
		"jane@":                 false,
		"@example.com":          false,
		"jane doe@example.com":  false,
	}
	for email, ok := range cases {
		state := validState()
		state.PersonalInfo.Email = email
		result := validation.Validate(state, validation.WithClock(fixedNow))
		if got := !result.Errors.Has("personalInfo.email"); got != ok {
			t.Errorf("email %q valid=%v, want %v", email, got, ok)
		}
	}
}

func TestValidate_PermanentAddressOptionalByDefault(t *testing.T) {
	state := validState()
	state.PermanentAddress = form.Address{}

	if result := validation.Validate(state, validation.WithClock(fixedNow)); !result.Accepted() {
		t.Fatalf("expected permanent address to be optional, got %v", result.Errors.Flatten())
	}
}

func TestValidate_PermanentAddressRequiredOptIn(t *testing.T) {
	opts := []validation.Option{validation.WithClock(fixedNow), validation.WithPermanentAddressRequired()}

	state := validState()
	result := validation.Validate(state, opts...)
	if diff := cmp.Diff([]string{validation.MsgPermanentStreet1}, result.Errors.Messages("permanentAddress.street1")); diff != "" {
		t.Fatalf("permanent street1 mismatch (-want +got):\n%s", diff)
	}

	state.SameAsResidential = true
	state.PermanentAddress = state.ResidentialAddress
	if result := validation.Validate(state, opts...); !result.Accepted() {
		t.Fatalf("mirrored address should satisfy strict mode, got %v", result.Errors.Flatten())
	}
}

func TestValidate_Thresholds(t *testing.T) {
	state := validState()
	state.PersonalInfo.DOB = fmt.Sprintf("%d-01-01", fixedNow().Year()-19)

	result := validation.Validate(state,
		validation.WithClock(fixedNow),
		validation.WithMinimumAge(21),
		validation.WithMinimumDocuments(3),
	)

	want := map[string][]string{
		"personalInfo.dob": {"You must be at least 21 years old"},
		"documents":        {"At least 3 documents are required"},
	}
	if diff := cmp.Diff(want, result.Errors.Flatten()); diff != "" {
		t.Fatalf("threshold errors mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_CustomRules(t *testing.T) {
	noPOBox := validation.Field(form.SectionResidentialAddress, form.FieldStreet1, validation.Check{
		Kind:    validation.KindBusinessRule,
		Message: "PO boxes are not accepted",
		Valid:   func(v string) bool { return v != "PO Box 1" },
	})

	state := validState()
	state.ResidentialAddress.Street1 = "PO Box 1"
	result := validation.Validate(state, validation.WithClock(fixedNow), validation.WithRules(noPOBox))

	if diff := cmp.Diff([]string{"PO boxes are not accepted"}, result.Errors.Messages("residentialAddress.street1")); diff != "" {
		t.Fatalf("custom rule mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_Totality(t *testing.T) {
	states := []form.State{
		{},
		form.InitialState(),
		{Documents: make([]form.Document, 5)},
		{PersonalInfo: form.PersonalInfo{DOB: "0000-00-00"}},
		{PersonalInfo: form.PersonalInfo{DOB: "9999-12-31"}},
	}
	for i, state := range states {
		result := validation.Validate(state, validation.WithClock(fixedNow))
		if result.Verdict != validation.Accepted && result.Verdict != validation.Rejected {
			t.Fatalf("state %d: unexpected verdict %q", i, result.Verdict)
		}
		if result.Verdict == validation.Rejected && result.Errors.Empty() {
			t.Fatalf("state %d: rejected without errors", i)
		}
	}

	var nilSchema *validation.Schema
	if !nilSchema.Validate(validState()).Accepted() {
		t.Fatalf("nil schema should accept")
	}
}

func TestValidate_DoesNotMutateSnapshot(t *testing.T) {
	state := validState()
	before := state.Clone()
	_ = validation.Validate(state, validation.WithClock(fixedNow))

	if diff := cmp.Diff(before, state, cmp.Comparer(func(a, b *form.Attachment) bool { return a == b })); diff != "" {
		t.Fatalf("validation mutated input (-want +got):\n%s", diff)
	}
}

func TestErrorTree_JSONShape(t *testing.T) {
	tree := validation.NewErrorTree()
	tree.Add("personalInfo.email", validation.Issue{Kind: validation.KindInvalidFormat, Message: "Invalid email address"})
	tree.Add("documents", validation.Issue{Kind: validation.KindTooFew, Message: "At least 2 documents are required"})

	raw, err := json.Marshal(tree)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	want := map[string]any{
		"_errors": []any{},
		"personalInfo": map[string]any{
			"_errors": []any{},
			"email":   map[string]any{"_errors": []any{"Invalid email address"}},
		},
		"documents": map[string]any{"_errors": []any{"At least 2 documents are required"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("json shape mismatch (-want +got):\n%s", diff)
	}
}

func TestErrorTree_AddNormalisesMessages(t *testing.T) {
	tree := validation.NewErrorTree()
	tree.Add("documents.0.file", validation.Issue{Kind: validation.KindRequired, Message: " File is required "})
	tree.Add("documents.0.file", validation.Issue{Kind: validation.KindRequired, Message: "File is required"})
	tree.Add("documents.0.file", validation.Issue{Kind: validation.KindRequired, Message: "   "})

	if diff := cmp.Diff([]string{"File is required"}, tree.Messages("documents.0.file")); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
	if tree.At("documents.0") == nil || tree.At("documents.1") != nil {
		t.Fatalf("At() did not navigate the tree")
	}
	if tree.Has("documents") {
		t.Fatalf("parent node should not report child issues as its own")
	}
}
