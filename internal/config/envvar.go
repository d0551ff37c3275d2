package config

import (
	"fmt"
	"regexp"
	"strings"
)

// LookupFunc resolves an environment variable, like os.LookupEnv.
type LookupFunc func(string) (string, bool)

// envVarPattern matches ${VAR} and ${VAR:default}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:[^}]*)?\}`)

// ExpandEnv replaces every ${VAR} and ${VAR:default} reference in value.
// A reference without default to an unset variable is an error.
//
// Examples:
//
//	ExpandEnv("${DB_URL}", lookup)                     -> value of DB_URL
//	ExpandEnv("${REDIS_ADDR:localhost:6379}", lookup)  -> REDIS_ADDR or localhost:6379
//	ExpandEnv("redis://${HOST:localhost}:6379", lookup) -> embedded reference
func ExpandEnv(value string, lookup LookupFunc) (string, error) {
	var missing []string
	out := envVarPattern.ReplaceAllStringFunc(value, func(ref string) string {
		m := envVarPattern.FindStringSubmatch(ref)
		name, def := m[1], m[2]
		if v, ok := lookup(name); ok {
			return v
		}
		if def != "" {
			return strings.TrimPrefix(def, ":")
		}
		missing = append(missing, name)
		return ""
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("environment variable %s is not set", strings.Join(missing, ", "))
	}
	return out, nil
}

func expandTree(v any, lookup LookupFunc) (any, error) {
	switch t := v.(type) {
	case string:
		return ExpandEnv(t, lookup)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			e, err := expandTree(val, lookup)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = e
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			e, err := expandTree(val, lookup)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = e
		}
		return out, nil
	}
	return v, nil
}
