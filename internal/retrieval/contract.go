package retrieval

import "github.com/kailas-cloud/prodsearch/internal/domain"

// Catalog supplies the read-only product snapshot for one search call.
type Catalog interface {
	Products() []domain.Product
}
