package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheck_NoRequirements(t *testing.T) {
	d := Check(nil, nil)

	assert.True(t, d.Allowed)
	assert.Empty(t, d.Missing)
}

func TestCheck_Verbatim(t *testing.T) {
	d := Check([]string{"fs.read"}, []string{"fs.read"})

	assert.True(t, d.Allowed)
}

func TestCheck_PrefixWildcard(t *testing.T) {
	d := Check([]string{"fs.read"}, []string{"fs.*"})

	assert.True(t, d.Allowed)
}

func TestCheck_NestedPrefixWildcard(t *testing.T) {
	d := Check([]string{"fs.read.meta"}, []string{"fs.*"})
	assert.True(t, d.Allowed)

	d = Check([]string{"fs.read.meta"}, []string{"fs.read.*"})
	assert.True(t, d.Allowed)
}

func TestCheck_UniversalWildcard(t *testing.T) {
	d := Check([]string{"net.fetch", "fs.write"}, []string{"*"})

	assert.True(t, d.Allowed)
}

func TestCheck_Missing(t *testing.T) {
	d := Check([]string{"fs.read", "net.fetch"}, []string{"fs.read"})

	assert.False(t, d.Allowed)
	assert.Equal(t, []string{"net.fetch"}, d.Missing)
}

func TestCheck_WildcardDoesNotMatchSiblingNamespace(t *testing.T) {
	d := Check([]string{"net.fetch"}, []string{"fs.*"})

	assert.False(t, d.Allowed)
}

func TestCheck_NoReverseWildcard(t *testing.T) {
	// A wildcard requirement is not satisfied by a concrete grant.
	d := Check([]string{"fs.*"}, []string{"fs.read"})

	assert.False(t, d.Allowed)
}

func TestExpand(t *testing.T) {
	known := []string{"fs.read", "fs.write", "net.fetch"}

	expanded := Expand([]string{"fs.*"}, known)
	assert.Equal(t, []string{"fs.read", "fs.write"}, expanded)

	expanded = Expand([]string{"*"}, known)
	assert.Equal(t, []string{"fs.read", "fs.write", "net.fetch"}, expanded)

	expanded = Expand(nil, known)
	assert.Empty(t, expanded)
}

func TestIsSandboxAllowed_EmptyLists(t *testing.T) {
	assert.True(t, IsSandboxAllowed("read_file", nil, nil))
}

func TestIsSandboxAllowed_DenylistWins(t *testing.T) {
	allow := []string{"*"}
	deny := []string{"exec"}

	assert.False(t, IsSandboxAllowed("exec", allow, deny))
	assert.True(t, IsSandboxAllowed("read_file", allow, deny))
}

func TestIsSandboxAllowed_AllowlistRestricts(t *testing.T) {
	allow := []string{"read_file", "list_dir"}

	assert.True(t, IsSandboxAllowed("read_file", allow, nil))
	assert.False(t, IsSandboxAllowed("write_file", allow, nil))
}

func TestIsSandboxAllowed_GlobPatterns(t *testing.T) {
	assert.False(t, IsSandboxAllowed("shell_exec", nil, []string{"shell_*"}))
	assert.True(t, IsSandboxAllowed("fs_read", []string{"fs_*"}, nil))
	assert.False(t, IsSandboxAllowed("net_fetch", []string{"fs_*"}, nil))
}

func TestIsSandboxAllowed_InvalidPatternIgnored(t *testing.T) {
	// A malformed glob never matches, so the deny entry is inert.
	assert.True(t, IsSandboxAllowed("read_file", nil, []string{"["}))
}
