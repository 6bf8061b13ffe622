package docsubmit

import (
	"context"

	"github.com/goliatone/go-docsubmit/pkg/contract"
)

// LoadContract parses an OpenAPI document describing the intake endpoint.
func LoadContract(ctx context.Context, data []byte) (*contract.Contract, error) {
	return contract.Load(ctx, data)
}

// DefaultContract loads the bundled intake contract.
func DefaultContract(ctx context.Context) (*contract.Contract, error) {
	return contract.Default(ctx)
}
