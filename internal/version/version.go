package version

import (
	"fmt"
	"runtime"
)

// current version
const coreVersion = "0.1.0"

// Provisioned by ldflags
var commit string

// Core returns the core version.
func Core() string {
	return coreVersion
}

// Full returns the version including commit hash, runtime os and arch.
func Full() string {
	if commit != "" && commit[:1] != " " {
		commit = " " + commit
	}

	return fmt.Sprintf("v%s%s %s/%s", Core(), commit, runtime.GOOS, runtime.GOARCH)
}
