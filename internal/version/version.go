// Package version exposes build metadata for the systune binary.
package version

import "runtime"

// Overridden at link time via -ldflags "-X ...".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Info bundles the version together with build and runtime details.
type Info struct {
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
	Platform  string
}

// Get returns the build information for the running binary.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func (i Info) String() string {
	return i.Version
}

// Full returns the version with commit, date, and runtime appended.
func (i Info) Full() string {
	return i.Version + " (" + i.Commit + ", " + i.BuildDate + ", " + i.GoVersion + ", " + i.Platform + ")"
}
