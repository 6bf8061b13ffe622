package docsubmit

import "github.com/goliatone/go-docsubmit/pkg/fieldconfig"

// DefaultCatalogue exposes the bundled field catalogue so callers can build
// their own front ends without importing fieldconfig directly.
func DefaultCatalogue() (*fieldconfig.Catalogue, error) {
	return fieldconfig.Default()
}
