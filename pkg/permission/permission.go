// Package permission implements wildcard-aware capability checks and sandbox
// admission for tool execution.
package permission

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// Wildcard grants every permission.
const Wildcard = "*"

// Decision is the outcome of a permission check.
type Decision struct {
	Allowed bool     `json:"allowed"`
	Missing []string `json:"missing,omitempty"`
}

// Check verifies that every required permission is covered by the available
// set. A requirement matches verbatim, through any dotted prefix wildcard
// ("fs.read" matches "fs.*"), or through the universal wildcard.
func Check(required []string, available []string) Decision {
	if len(required) == 0 {
		return Decision{Allowed: true}
	}

	granted := make(map[string]struct{}, len(available))
	for _, perm := range available {
		granted[perm] = struct{}{}
	}

	var missing []string
	for _, req := range required {
		if !matches(req, granted) {
			missing = append(missing, req)
		}
	}

	return Decision{Allowed: len(missing) == 0, Missing: missing}
}

func matches(required string, granted map[string]struct{}) bool {
	if _, ok := granted[required]; ok {
		return true
	}
	if _, ok := granted[Wildcard]; ok {
		return true
	}

	parts := strings.Split(required, ".")
	for i := 1; i < len(parts); i++ {
		prefix := strings.Join(parts[:i], ".") + ".*"
		if _, ok := granted[prefix]; ok {
			return true
		}
	}
	return false
}

// Expand resolves a caller's grants (wildcards included) into the concrete
// subset of known permissions they cover. Used for introspection surfaces,
// not the hot check path.
func Expand(grants []string, known []string) []string {
	granted := make(map[string]struct{}, len(grants))
	for _, g := range grants {
		granted[g] = struct{}{}
	}

	var expanded []string
	for _, perm := range known {
		if matches(perm, granted) {
			expanded = append(expanded, perm)
		}
	}
	sort.Strings(expanded)
	return expanded
}

// IsSandboxAllowed decides whether a tool may run under sandbox mode.
// The denylist always wins; an empty allowlist admits everything not denied;
// a non-empty allowlist admits only the names it lists. Entries may use glob
// patterns.
func IsSandboxAllowed(toolName string, allowlist, denylist []string) bool {
	for _, pattern := range denylist {
		if matchName(pattern, toolName) {
			return false
		}
	}

	if len(allowlist) == 0 {
		return true
	}

	for _, pattern := range allowlist {
		if matchName(pattern, toolName) {
			return true
		}
	}
	return false
}

func matchName(pattern, name string) bool {
	if pattern == name || pattern == Wildcard {
		return true
	}
	matched, err := filepath.Match(pattern, name)
	if err != nil {
		log.Warn().Err(err).Str("pattern", pattern).Msg("Invalid sandbox pattern")
		return false
	}
	return matched
}
