// Package contract loads the intake endpoint description from an OpenAPI
// document and checks outgoing payloads against the parts it declares.
package contract

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-docsubmit/pkg/packager"
)

// DefaultOperationID names the submission operation in the bundled document.
const DefaultOperationID = "submitForm"

const multipartFormData = "multipart/form-data"

//go:embed intake.openapi.yaml
var defaultDocument []byte

// Operation is the subset of an OpenAPI operation the intake client needs.
type Operation struct {
	ID         string
	Method     string
	Path       string
	Required   []string
	Properties []string
	minItems   map[string]int
}

// Contract indexes multipart operations by operation id.
type Contract struct {
	operations map[string]Operation
}

// Default loads the bundled intake document.
func Default(ctx context.Context) (*Contract, error) {
	return Load(ctx, defaultDocument)
}

// DefaultDocument returns a copy of the bundled OpenAPI document.
func DefaultDocument() []byte {
	return append([]byte(nil), defaultDocument...)
}

// Load parses and validates an OpenAPI 3 document, keeping every operation
// whose request body accepts multipart/form-data.
func Load(ctx context.Context, data []byte) (*Contract, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("contract: document payload is empty")
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("contract: load document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("contract: invalid document: %w", err)
	}

	c := &Contract{operations: make(map[string]Operation)}
	if doc.Paths != nil {
		for path, item := range doc.Paths.Map() {
			if item == nil {
				continue
			}
			for method, op := range item.Operations() {
				collectOperation(c.operations, method, path, op)
			}
		}
	}
	if len(c.operations) == 0 {
		return nil, errors.New("contract: no multipart operations found")
	}
	return c, nil
}

func collectOperation(dest map[string]Operation, method, path string, op *openapi3.Operation) {
	if op == nil || strings.TrimSpace(op.OperationID) == "" {
		return
	}
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return
	}
	media := op.RequestBody.Value.Content.Get(multipartFormData)
	if media == nil || media.Schema == nil || media.Schema.Value == nil {
		return
	}
	schema := media.Schema.Value

	out := Operation{
		ID:       op.OperationID,
		Method:   strings.ToUpper(method),
		Path:     path,
		Required: append([]string(nil), schema.Required...),
		minItems: make(map[string]int),
	}
	for name, prop := range schema.Properties {
		out.Properties = append(out.Properties, name)
		if prop != nil && prop.Value != nil && prop.Value.MinItems > 0 {
			out.minItems[name] = int(prop.Value.MinItems)
		}
	}
	sort.Strings(out.Properties)
	dest[op.OperationID] = out
}

// Operation returns the named operation.
func (c *Contract) Operation(id string) (Operation, bool) {
	if c == nil {
		return Operation{}, false
	}
	op, ok := c.operations[id]
	return op, ok
}

// Endpoint returns the method and path of the named operation.
func (c *Contract) Endpoint(id string) (method, path string, err error) {
	op, ok := c.Operation(id)
	if !ok {
		return "", "", fmt.Errorf("contract: unknown operation %q", id)
	}
	return op.Method, op.Path, nil
}

// RequiredParts returns the part names the named operation marks required,
// or nil for an unknown operation.
func (c *Contract) RequiredParts(id string) []string {
	op, ok := c.Operation(id)
	if !ok {
		return nil
	}
	return append([]string(nil), op.Required...)
}

// CheckError lists payload parts the contract expects but did not find.
type CheckError struct {
	OperationID string
	Missing     []string
	Short       map[string]int
}

func (e *CheckError) Error() string {
	var problems []string
	if len(e.Missing) > 0 {
		problems = append(problems, "missing "+strings.Join(e.Missing, ", "))
	}
	names := make([]string, 0, len(e.Short))
	for name := range e.Short {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		problems = append(problems, fmt.Sprintf("%s needs at least %d part(s)", name, e.Short[name]))
	}
	return fmt.Sprintf("contract: payload does not satisfy %s: %s", e.OperationID, strings.Join(problems, "; "))
}

// Check verifies payload carries every required part and enough repeats of
// array parts. It does not inspect values; the intake service owns that.
func (c *Contract) Check(id string, payload packager.Payload) error {
	op, ok := c.Operation(id)
	if !ok {
		return fmt.Errorf("contract: unknown operation %q", id)
	}

	counts := make(map[string]int, len(payload.Parts))
	for _, part := range payload.Parts {
		counts[part.Name]++
	}

	checkErr := &CheckError{OperationID: id}
	for _, name := range op.Required {
		if counts[name] == 0 {
			checkErr.Missing = append(checkErr.Missing, name)
		}
	}
	for name, min := range op.minItems {
		if got := counts[name]; got > 0 && got < min {
			if checkErr.Short == nil {
				checkErr.Short = make(map[string]int)
			}
			checkErr.Short[name] = min
		}
	}
	if len(checkErr.Missing) == 0 && len(checkErr.Short) == 0 {
		return nil
	}
	return checkErr
}
