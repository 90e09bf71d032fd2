package config

import (
	"os"
	"strings"
)

// substituteEnvVars expands ${VAR} references, e.g. an API key embedded in
// an RPC url or header value.
func substituteEnvVars(s string) string {
	if s == "" {
		return s
	}
	for {
		start := strings.Index(s, "${")
		if start == -1 {
			break
		}
		end := strings.Index(s[start:], "}")
		if end == -1 {
			break
		}
		end += start
		varName := s[start+2 : end]
		envValue := os.Getenv(varName)
		s = strings.ReplaceAll(s, "${"+varName+"}", envValue)
	}
	return s
}
