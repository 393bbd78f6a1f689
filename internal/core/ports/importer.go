package ports

import "context"

// Importer resolves an origin into a local directory tree.
type Importer interface {
	// Load imports origin into destination and returns the directory holding
	// the result. An empty destination makes the importer allocate a fresh
	// temporary directory, which the caller then owns.
	Load(ctx context.Context, origin, destination string) (string, error)
}

// ImporterFactory selects the importer able to handle an origin.
type ImporterFactory interface {
	Create(origin string) (Importer, error)
}
