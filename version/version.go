// Package version reports the version of the running binary.
package version

import "runtime/debug"

// Version can be set when building, e.g.
// go build -ldflags "-X github.com/goodmultitracks/multitrack/version.Version=$(git describe --dirty)"
var Version string

// Hash is the short VCS revision the binary was built from, suffixed with
// "-dirty" if the tree had local modifications. Empty outside a VCS checkout.
var Hash = func() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	var revision string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if len(revision) > 7 {
		revision = revision[:7]
	}
	if revision != "" && dirty {
		revision += "-dirty"
	}
	return revision
}()

var VersionOrHash = func() string {
	if Version != "" {
		return Version
	}
	if Hash != "" {
		return Hash
	}
	return "devel"
}()
