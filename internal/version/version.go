package version

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// set with -ldflags "-X github.com/effective-security/xjws/internal/version.version=v1.2.3"
var version = ""

// Info describes the build
type Info struct {
	Version string
	Commit  string
}

// Current returns the build info
func Current() Info {
	v := Info{
		Version: version,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		if v.Version == "" {
			v.Version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				v.Commit = s.Value
			}
		}
	}
	if v.Version == "" || v.Version == "(devel)" {
		v.Version = "v0.0.0-dev"
	}
	return v
}

// String returns version with short commit
func (v Info) String() string {
	if v.Commit == "" {
		return v.Version
	}
	return fmt.Sprintf("%s+%s", v.Version, strings.TrimSpace(v.Commit[:min(len(v.Commit), 8)]))
}
