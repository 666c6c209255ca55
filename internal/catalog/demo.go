package catalog

import (
	_ "embed"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/kailas-cloud/prodsearch/internal/domain"
)

//go:embed demo_products.json
var demoProductsJSON []byte

// Demo returns the embedded demo catalog used for local runs and tests.
// The embedded data is validated at build time by the catalog tests, so a
// decode failure here means a corrupted binary.
func Demo(logger *zap.Logger) (*Snapshot, error) {
	var products []domain.Product
	if err := json.Unmarshal(demoProductsJSON, &products); err != nil {
		return nil, err
	}
	return New(products, logger)
}
