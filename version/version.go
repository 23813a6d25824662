// Package version provides build and version information for soltrace. VCS metadata embedded by the Go toolchain
// is used unless explicit values were set through ldflags.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
	"time"
)

// These variables can be set via ldflags at build time for explicit versioning.
var (
	// Version is the semantic version of the build.
	Version = "0.3.0"
	// GitCommit is the git commit hash.
	GitCommit = ""
	// GitCommitTime is the timestamp of the git commit.
	GitCommitTime = ""
	// GitTreeDirty indicates if the git tree was dirty at build time.
	GitTreeDirty = ""
)

// Info contains the full version information for the build.
type Info struct {
	Version       string
	GitCommit     string
	GitCommitTime string
	GitTreeDirty  bool
	GoVersion     string
}

var readBuildSettings = sync.OnceFunc(func() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	// ldflags values take precedence over the VCS settings
	for _, setting := range info.Settings {
		var target *string
		switch setting.Key {
		case "vcs.revision":
			target = &GitCommit
		case "vcs.time":
			target = &GitCommitTime
		case "vcs.modified":
			target = &GitTreeDirty
		default:
			continue
		}
		if *target == "" {
			*target = setting.Value
		}
	}
})

// GetInfo returns the complete version information.
func GetInfo() Info {
	readBuildSettings()
	return Info{
		Version:       Version,
		GitCommit:     GitCommit,
		GitCommitTime: GitCommitTime,
		GitTreeDirty:  GitTreeDirty == "true",
		GoVersion:     runtime.Version(),
	}
}

// ShortCommit returns the first 7 characters of the git commit hash.
func (i Info) ShortCommit() string {
	if len(i.GitCommit) >= 7 {
		return i.GitCommit[:7]
	}
	return i.GitCommit
}

// FormattedTime returns the commit time in a human-readable format.
func (i Info) FormattedTime() string {
	if i.GitCommitTime == "" {
		return "unknown"
	}
	t, err := time.Parse(time.RFC3339, i.GitCommitTime)
	if err != nil {
		return i.GitCommitTime
	}
	return t.Format("2006-01-02 15:04:05 MST")
}

// commitLabel returns the short commit, suffixed with -dirty for builds of a modified tree.
func (i Info) commitLabel() string {
	if i.GitTreeDirty {
		return i.ShortCommit() + "-dirty"
	}
	return i.ShortCommit()
}

// String returns a formatted multi-line version string.
func (i Info) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "soltrace version %s\n", i.Version)
	if i.GitCommit != "" {
		fmt.Fprintf(&sb, "  Commit:     %s\n", i.commitLabel())
	}
	if i.GitCommitTime != "" {
		fmt.Fprintf(&sb, "  Built:      %s\n", i.FormattedTime())
	}
	fmt.Fprintf(&sb, "  Go version: %s\n", i.GoVersion)
	return sb.String()
}

// Short returns a single-line version string suitable for --version output.
func (i Info) Short() string {
	if i.GitCommit == "" {
		return i.Version
	}
	return i.Version + "+" + i.commitLabel()
}
