// Package version reports build information for the slideshow binaries.
package version

import (
	"fmt"
	"runtime/debug"
	"strings"

	"go.uber.org/zap"
)

// These are set via ldflags at build time
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// Info contains version and build information
type Info struct {
	Version     string `json:"version"`
	BuildTime   string `json:"buildTime"`
	Module      string `json:"module,omitempty"`
	GoVersion   string `json:"goVersion"`
	VCSRevision string `json:"vcsRevision,omitempty"`
	VCSTime     string `json:"vcsTime,omitempty"`
	VCSModified bool   `json:"vcsModified"`
}

// Get returns the current version and build information
func Get() Info {
	info := Info{
		Version:   Version,
		BuildTime: BuildTime,
	}

	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	info.GoVersion = buildInfo.GoVersion
	info.Module = buildInfo.Main.Path
	for _, setting := range buildInfo.Settings {
		switch setting.Key {
		case "vcs.revision":
			info.VCSRevision = setting.Value
		case "vcs.time":
			info.VCSTime = setting.Value
		case "vcs.modified":
			info.VCSModified = setting.Value == "true"
		}
	}
	return info
}

// Revision is the short commit hash, marked when the tree was dirty
func (i Info) Revision() string {
	rev := i.VCSRevision
	if len(rev) > 8 {
		rev = rev[:8]
	}
	if rev != "" && i.VCSModified {
		rev += " (modified)"
	}
	return rev
}

// String returns a one-line version for --version output
func (i Info) String() string {
	parts := []string{i.Version}
	if rev := i.Revision(); rev != "" {
		parts = append(parts, "commit "+rev)
	}
	if i.BuildTime != "unknown" {
		parts = append(parts, "built "+i.BuildTime)
	}
	if i.GoVersion != "" {
		parts = append(parts, i.GoVersion)
	}
	return strings.Join(parts, ", ")
}

// Fields returns the build information as structured log fields
func (i Info) Fields() []zap.Field {
	fields := []zap.Field{zap.String("version", i.Version)}
	if rev := i.Revision(); rev != "" {
		fields = append(fields, zap.String("commit", rev))
	}
	if i.GoVersion != "" {
		fields = append(fields, zap.String("go", i.GoVersion))
	}
	return fields
}

// Check returns a warning when the binary cannot be traced to a clean commit
func (i Info) Check() string {
	switch {
	case i.VCSModified:
		return fmt.Sprintf("binary built from modified source tree at %s", i.Revision())
	case i.VCSRevision == "" && i.Version == "dev":
		return "no version control information available (development build)"
	}
	return ""
}
