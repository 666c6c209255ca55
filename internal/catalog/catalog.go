// Package catalog provides the in-memory product snapshot the search pipeline
// reads from. A snapshot is immutable after construction; swapping catalogs
// means building a new Snapshot and rewiring, never mutating in place.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/kailas-cloud/prodsearch/internal/domain"
)

// Snapshot is a validated, deduplicated set of products.
type Snapshot struct {
	products []domain.Product
	maxID    int
}

// New builds a snapshot from raw products. Every product is validated;
// duplicate ids keep the first occurrence. The input slice is copied.
func New(products []domain.Product, logger *zap.Logger) (*Snapshot, error) {
	seen := make(map[int]struct{}, len(products))
	out := make([]domain.Product, 0, len(products))
	maxID := 0

	for i := range products {
		p := products[i]
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("catalog entry %d: %w", i, err)
		}
		if _, dup := seen[p.ID]; dup {
			logger.Warn("duplicate product id in catalog, keeping first occurrence",
				zap.Int("product_id", p.ID))
			continue
		}
		seen[p.ID] = struct{}{}
		if p.ID > maxID {
			maxID = p.ID
		}
		out = append(out, p)
	}

	return &Snapshot{products: out, maxID: maxID}, nil
}

// LoadFile reads a JSON product array from disk and builds a snapshot.
func LoadFile(path string, logger *zap.Logger) (*Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	var products []domain.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, fmt.Errorf("parse catalog file %s: %w", path, err)
	}
	snap, err := New(products, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("catalog loaded",
		zap.String("path", path),
		zap.Int("products", snap.Len()))
	return snap, nil
}

// Products returns the snapshot contents. Callers must not mutate the
// returned slice.
func (s *Snapshot) Products() []domain.Product {
	return s.products
}

// Len returns the number of products in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.products)
}

// MaxID returns the largest product id, used as the freshness denominator
// in ranking. Empty snapshots return 0.
func (s *Snapshot) MaxID() int {
	return s.maxID
}

// ByID looks a product up by id.
func (s *Snapshot) ByID(id int) (domain.Product, bool) {
	for i := range s.products {
		if s.products[i].ID == id {
			return s.products[i], true
		}
	}
	return domain.Product{}, false
}
