package main

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
)

// localDefaults are added to exported files so the services start in local
// mode against the seeded values.
var localDefaults = map[string]string{
	"APP_ENV":        "local",
	"LOG_LEVEL":      "debug",
	"ENABLE_METRICS": "false",
}

// ExportEnv reads every inventory parameter back from SSM and writes them as
// a dotenv file at path. Missing optional parameters are omitted.
func ExportEnv(ctx context.Context, m *SSMManager, steps []Step, path string) (map[string]string, error) {
	vars := make(map[string]string, len(steps)+len(localDefaults))
	for k, v := range localDefaults {
		vars[k] = v
	}

	for _, step := range steps {
		value, ok, err := m.Get(ctx, m.Path(step.Key))
		if err != nil {
			return nil, err
		}
		if !ok {
			if step.Optional {
				continue
			}
			return nil, fmt.Errorf("required parameter %s is missing; run bootstrap first", m.Path(step.Key))
		}
		vars[step.EnvVar] = value
	}

	if err := godotenv.Write(vars, path); err != nil {
		return nil, fmt.Errorf("writing %s: %w", path, err)
	}
	return vars, nil
}
