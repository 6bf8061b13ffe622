package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/goliatone/go-docsubmit/pkg/contract"
	"github.com/goliatone/go-docsubmit/pkg/fieldconfig"
	"github.com/goliatone/go-docsubmit/pkg/form"
	"github.com/goliatone/go-docsubmit/pkg/packager"
)

type violation struct {
	file     string
	location string
	message  string
}

var documentIndex = regexp.MustCompile(`^documents\[\d+\]`)

func main() {
	operation := flag.String("operation", contract.DefaultOperationID, "operation ID to check in contract documents")
	flag.Usage = func() {
		if _, err := fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [-operation id] [paths...]\n", filepath.Base(os.Args[0])); err != nil {
			panic(err)
		}
		if _, err := fmt.Fprintf(flag.CommandLine.Output(), "\nLint intake contracts and field catalogues against the parts the packager emits.\n"); err != nil {
			panic(err)
		}
	}
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		paths = []string{
			"pkg/contract/intake.openapi.yaml",
			"pkg/fieldconfig/docsubmission.yaml",
		}
	}

	ctx := context.Background()
	var violations []violation
	for _, path := range paths {
		linted, err := lintFile(ctx, path, *operation)
		if err != nil {
			fmt.Fprintf(os.Stderr, "lint %s: %v\n", path, err)
			os.Exit(1)
		}
		violations = append(violations, linted...)
	}

	if len(violations) > 0 {
		sort.Slice(violations, func(i, j int) bool {
			if violations[i].file == violations[j].file {
				if violations[i].location == violations[j].location {
					return violations[i].message < violations[j].message
				}
				return violations[i].location < violations[j].location
			}
			return violations[i].file < violations[j].file
		})
		for _, v := range violations {
			fmt.Fprintf(os.Stderr, "%s: %s -> %s\n", v.file, v.location, v.message)
		}
		os.Exit(1)
	}
}

func lintFile(ctx context.Context, path, operation string) ([]violation, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if isContract(raw) {
		return lintContract(ctx, path, raw, operation)
	}
	if _, err := fieldconfig.Load(raw); err != nil {
		return []violation{{file: path, location: "catalogue", message: err.Error()}}, nil
	}
	return nil, nil
}

func isContract(raw []byte) bool {
	text := string(raw)
	return strings.Contains(text, "openapi:") || strings.Contains(text, `"openapi"`)
}

func lintContract(ctx context.Context, path string, raw []byte, operation string) ([]violation, error) {
	ct, err := contract.Load(ctx, raw)
	if err != nil {
		return nil, err
	}
	op, ok := ct.Operation(operation)
	if !ok {
		return []violation{{file: path, location: formatLocation([]string{"operation", operation}), message: "operation not found"}}, nil
	}

	emitted := emittedParts()
	base := []string{"operation", op.ID}

	var result []violation
	for _, name := range op.Properties {
		if !emitted[canonical(name)] {
			result = append(result, violation{
				file:     path,
				location: formatLocation(appendPath(base, "properties."+name)),
				message:  "declared part is never sent",
			})
		}
	}
	for _, name := range ct.RequiredParts(op.ID) {
		if !emitted[canonical(name)] {
			result = append(result, violation{
				file:     path,
				location: formatLocation(appendPath(base, "required")),
				message:  fmt.Sprintf("required part %q is never sent", name),
			})
		}
	}
	return result, nil
}

// emittedParts lists every part name a fully populated submission produces,
// with document indexes collapsed to zero.
func emittedParts() map[string]bool {
	state := form.InitialState()
	state.Documents[0].File = form.NewAttachment("sample.pdf", "application/pdf", nil)
	out := make(map[string]bool)
	for _, name := range packager.Package(state).Names() {
		out[canonical(name)] = true
	}
	return out
}

func canonical(name string) string {
	return documentIndex.ReplaceAllString(name, "documents[0]")
}

func appendPath(path []string, segment string) []string {
	next := append([]string(nil), path...)
	next = append(next, segment)
	return next
}

func formatLocation(path []string) string {
	return strings.Join(path, " > ")
}
