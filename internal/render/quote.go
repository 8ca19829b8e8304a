package render

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/shlex"
)

var (
	safeWord   = regexp.MustCompile(`^[A-Za-z0-9_@%+=:,./-]+$`)
	envVarName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// ShellQuote single-quotes s for POSIX shells unless it is made only of
// characters that never need quoting.
func ShellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if safeWord.MatchString(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// splitCurlArgs tokenizes the configured extra arguments and re-quotes each
// word so the rendered command reproduces them exactly.
func splitCurlArgs(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	words, err := shlex.Split(raw)
	if err != nil {
		return nil, fmt.Errorf("parse curl args %q: %w", raw, err)
	}
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = ShellQuote(w)
	}
	return quoted, nil
}

func validateEnvName(name string) error {
	if !envVarName.MatchString(name) {
		return fmt.Errorf("api key env %q is not a valid variable name", name)
	}
	return nil
}
