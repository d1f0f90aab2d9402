// Package version reports build metadata. Release builds set the variables
// with -ldflags "-X"; blanks are filled from the module build info, which
// covers binaries built with go install.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version information - set at build time via ldflags
var (
	Version   = ""
	Commit    = ""
	BuildDate = ""
)

var readBuildInfo = debug.ReadBuildInfo

// metadata returns version, commit and build date with fallbacks applied
func metadata() (ver, commit, date string) {
	ver, commit, date = Version, Commit, BuildDate

	if info, ok := readBuildInfo(); ok {
		if ver == "" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			ver = info.Main.Version
		}
		for _, s := range info.Settings {
			switch {
			case s.Key == "vcs.revision" && commit == "":
				commit = s.Value
			case s.Key == "vcs.time" && date == "":
				date = s.Value
			}
		}
	}

	if ver == "" {
		ver = "dev"
	}
	if commit == "" {
		commit = "unknown"
	}
	if date == "" {
		date = "unknown"
	}
	return ver, commit, date
}

// Info returns formatted version information
func Info() string {
	ver, commit, date := metadata()
	return fmt.Sprintf("bakecheck version %s\n  commit: %s\n  built: %s\n  go: %s\n  os/arch: %s/%s",
		ver, commit, date, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Short returns just the version string
func Short() string {
	ver, _, _ := metadata()
	return ver
}
