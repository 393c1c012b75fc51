// Package interpolation expands ${VAR} and ${VAR:default} references in
// configuration values.
package interpolation

import (
	"errors"
	"fmt"
	"os"
	"regexp"
)

// Captures the variable name, an optional colon, and an optional default.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:)?([^}]*)\}`)

// ExpandEnvVars replaces ${VAR_NAME} and ${VAR_NAME:default} references with
// values from the process environment. A reference without a default for an
// unset variable is an error; ${VAR:} resolves to the empty string.
func ExpandEnvVars(input string) (string, error) {
	if input == "" {
		return "", nil
	}

	var missing []error
	result := envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		parts := envVarPattern.FindStringSubmatch(match)
		name := parts[1]
		hasDefault := parts[2] == ":"
		fallback := parts[3]

		if value, ok := os.LookupEnv(name); ok {
			return value
		}
		if hasDefault {
			return fallback
		}

		missing = append(missing, fmt.Errorf("environment variable not defined: %s", name))
		return match
	})

	return result, errors.Join(missing...)
}
