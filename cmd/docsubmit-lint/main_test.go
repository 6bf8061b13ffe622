package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-docsubmit/pkg/contract"
)

func TestLintFile_BundledDocumentsAreClean(t *testing.T) {
	ctx := context.Background()
	for _, path := range []string{
		"../../pkg/contract/intake.openapi.yaml",
		"../../pkg/fieldconfig/docsubmission.yaml",
	} {
		got, err := lintFile(ctx, path, contract.DefaultOperationID)
		if err != nil {
			t.Fatalf("lint %s: %v", path, err)
		}
		if len(got) != 0 {
			t.Fatalf("expected no violations for %s, got %+v", path, got)
		}
	}
}

func TestLintFile_ReportsUnknownParts(t *testing.T) {
	doc := `openapi: 3.0.3
info:
  title: x
  version: "1"
paths:
  /submit:
    post:
      operationId: submitForm
      requestBody:
        content:
          multipart/form-data:
            schema:
              type: object
              required: [firstName, middleName]
              properties:
                firstName:
                  type: string
                middleName:
                  type: string
      responses:
        "201":
          description: ok
`
	path := filepath.Join(t.TempDir(), "contract.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := lintFile(context.Background(), path, contract.DefaultOperationID)
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	want := []violation{
		{file: path, location: "operation > submitForm > properties.middleName", message: "declared part is never sent"},
		{file: path, location: "operation > submitForm > required", message: `required part "middleName" is never sent`},
	}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(violation{})); diff != "" {
		t.Fatalf("violations mismatch (-want +got):\n%s", diff)
	}

	got, err = lintFile(context.Background(), path, "missingOp")
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	if len(got) != 1 || got[0].message != "operation not found" {
		t.Fatalf("expected missing operation violation, got %+v", got)
	}
}

func TestLintFile_Catalogue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalogue.yaml")
	if err := os.WriteFile(path, []byte("sections:\n  - name: billing\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := lintFile(context.Background(), path, contract.DefaultOperationID)
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	if len(got) != 1 || got[0].location != "catalogue" {
		t.Fatalf("expected catalogue violation, got %+v", got)
	}
}

func TestCanonical(t *testing.T) {
	if got := canonical("documents[12][fileType]"); got != "documents[0][fileType]" {
		t.Fatalf("canonical = %q", got)
	}
	if got := canonical("residentialAddress[street1]"); got != "residentialAddress[street1]" {
		t.Fatalf("canonical = %q", got)
	}
}
