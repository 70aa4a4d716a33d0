package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	stamped := func(version string, settings ...debug.BuildSetting) *debug.BuildInfo {
		return &debug.BuildInfo{Main: debug.Module{Path: "github.com/lex00/pakman", Version: version}, Settings: settings}
	}
	tests := []struct {
		name   string
		linked string
		info   *debug.BuildInfo
		want   string
	}{
		{"linked wins", "1.4.0", stamped("v1.3.0"), "1.4.0"},
		{"no build info", "", nil, "dev"},
		{"module version", "", stamped("v1.3.0"), "v1.3.0"},
		{"devel without vcs", "", stamped("(devel)"), "dev"},
		{"vcs revision", "", stamped("(devel)",
			debug.BuildSetting{Key: "vcs.revision", Value: "0123456789abcdef0123"},
			debug.BuildSetting{Key: "vcs.modified", Value: "false"},
		), "dev-0123456789ab"},
		{"modified tree", "", stamped("",
			debug.BuildSetting{Key: "vcs.revision", Value: "abc123"},
			debug.BuildSetting{Key: "vcs.modified", Value: "true"},
		), "dev-abc123+dirty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolve(tt.linked, tt.info))
		})
	}
}

func TestString(t *testing.T) {
	assert.Regexp(t, `^pakman version \S+$`, String())
}
