package scaffold

import "context"

// Extractor maps a molecule to its scaffold key.  Implementations must be safe
// for concurrent use when the Indexer runs with more than one worker.
type Extractor interface {
	Scaffold(ctx context.Context, mol string) (Key, error)
}

// ExtractorFunc adapts a plain function to the Extractor interface.
type ExtractorFunc func(ctx context.Context, mol string) (Key, error)

// Scaffold calls f(ctx, mol).
func (f ExtractorFunc) Scaffold(ctx context.Context, mol string) (Key, error) {
	return f(ctx, mol)
}

//Personal.AI order the ending
