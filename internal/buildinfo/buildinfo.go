package buildinfo

import "fmt"

// Version is set at build time via -ldflags.
var Version = "dev"

// Commit is set at build time via -ldflags.
var Commit = "unknown"

// Date is set at build time via -ldflags.
var Date = "unknown"

// Short returns a compact build identifier for titles and log lines.
func Short() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if Commit != "" && Commit != "unknown" {
		if len(Commit) > 7 {
			return Commit[:7]
		}
		return Commit
	}
	return "dev"
}

// Banner is the first line written to the diagnostic sink at startup.
func Banner() string {
	if Date == "" || Date == "unknown" {
		return fmt.Sprintf("emotion %s", Short())
	}
	return fmt.Sprintf("emotion %s (%s)", Short(), Date)
}
