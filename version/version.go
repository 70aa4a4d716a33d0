// Package version reports which pakman build is running.
package version

import "runtime/debug"

// linked is set by release builds:
//
//	go build -ldflags "-X github.com/lex00/pakman/version.linked=1.4.0" ./cmd/pakman
var linked string

// Version returns the release version of this build: the linked version,
// else the module version, else "dev" suffixed with the VCS revision when
// the toolchain stamped one.
func Version() string {
	info, _ := debug.ReadBuildInfo()
	return resolve(linked, info)
}

// String is the line printed by pakman --version.
func String() string {
	return "pakman version " + Version()
}

func resolve(linked string, info *debug.BuildInfo) string {
	if linked != "" {
		return linked
	}
	if info == nil {
		return "dev"
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}
	var rev string
	var modified bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}
	if rev == "" {
		return "dev"
	}
	if len(rev) > 12 {
		rev = rev[:12]
	}
	if modified {
		rev += "+dirty"
	}
	return "dev-" + rev
}
