package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestInfoFormatting will test the short and multi-line renderings of version information
func TestInfoFormatting(t *testing.T) {
	info := Info{
		Version:       "1.2.3",
		GitCommit:     "0123456789abcdef",
		GitCommitTime: "2024-05-01T10:00:00Z",
		GitTreeDirty:  true,
		GoVersion:     "go1.23.0",
	}

	assert.Equal(t, "0123456", info.ShortCommit())
	assert.Equal(t, "1.2.3+0123456-dirty", info.Short())
	assert.Equal(t, "2024-05-01 10:00:00 UTC", info.FormattedTime())

	rendered := info.String()
	assert.True(t, strings.HasPrefix(rendered, "soltrace version 1.2.3\n"))
	assert.Contains(t, rendered, "Commit:     0123456-dirty")
	assert.Contains(t, rendered, "Go version: go1.23.0")

	bare := Info{Version: "1.2.3", GoVersion: "go1.23.0"}
	assert.Equal(t, "1.2.3", bare.Short())
	assert.Equal(t, "unknown", bare.FormattedTime())
	assert.NotContains(t, bare.String(), "Commit")
}
