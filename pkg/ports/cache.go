package ports

import "context"

// TranslationCache stores SQL translations. Keys combine the natural-language
// question with whatever scopes its translation (see steps.TranslationKey).
type TranslationCache interface {
	// Get returns the cached SQL and whether it was found.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores the SQL for key.
	Set(ctx context.Context, key, sql string) error
}
