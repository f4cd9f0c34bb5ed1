package config

import "context"

// SecretProvider resolves secret values by key. SSMProvider serves deployed
// environments; local runs skip resolution entirely.
type SecretProvider interface {
	// GetParametersBatch returns the value of each key it could resolve.
	// Unresolved keys are absent from the map.
	GetParametersBatch(ctx context.Context, keys []string) (map[string]string, error)
}
