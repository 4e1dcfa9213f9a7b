package template

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// =============================================================================
// Environment Files
// =============================================================================

// EnvError reports a problem with a project's environment file.
type EnvError struct {
	Message string
	Missing []string
}

// Error implements the error interface.
func (e *EnvError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Missing, ", "))
	}
	return e.Message
}

// ParseEnvFile parses dotenv-style content: one KEY=VALUE per line, blank
// lines and # comments skipped, optional surrounding quotes stripped from
// values.
func ParseEnvFile(content string) map[string]string {
	values := make(map[string]string)
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		value = strings.TrimSpace(value)
		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') ||
				(value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}
		values[key] = value
	}
	return values
}

// LoadEnvFile reads and parses a dotenv file. A missing file yields an empty
// map only when the template declares no required variables; otherwise it is
// an EnvError.
func LoadEnvFile(path string, required []EnvRequirement) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if len(required) > 0 {
				return nil, &EnvError{Message: fmt.Sprintf("missing env file %s required for template", path)}
			}
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read env file %s: %w", path, err)
	}
	values := ParseEnvFile(string(data))
	if err := EnsureRequired(values, required); err != nil {
		return nil, err
	}
	return values, nil
}

// EnsureRequired validates that every declared variable is present and
// non-empty, reporting all missing names at once.
func EnsureRequired(values map[string]string, required []EnvRequirement) error {
	var missing []string
	for _, req := range required {
		if values[req.Name] == "" {
			missing = append(missing, req.Name)
		}
	}
	if len(missing) > 0 {
		return &EnvError{Message: "missing required environment variables", Missing: missing}
	}
	return nil
}

// =============================================================================
// Variable Expansion
// =============================================================================

var varPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// ExpandEnv expands ${VAR} and ${VAR:-default} references in template env
// values against the project's environment, then overlays the project values
// on top. Project values always win over template defaults; the :-default
// fallback applies only when the key is absent, not when it is empty.
func ExpandEnv(templateEnv, projectEnv map[string]string) map[string]string {
	merged := make(map[string]string, len(templateEnv)+len(projectEnv))
	for key, value := range templateEnv {
		if strings.Contains(value, "${") {
			value = varPattern.ReplaceAllStringFunc(value, func(match string) string {
				expr := match[2 : len(match)-1]
				if name, def, ok := strings.Cut(expr, ":-"); ok {
					if v, present := projectEnv[strings.TrimSpace(name)]; present {
						return v
					}
					return strings.TrimSpace(def)
				}
				return projectEnv[strings.TrimSpace(expr)]
			})
		}
		merged[key] = value
	}
	for key, value := range projectEnv {
		merged[key] = value
	}
	return merged
}
