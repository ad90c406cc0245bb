package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveFromBuildInfo(t *testing.T) {
	read := func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{
			Main: debug.Module{Version: "v0.3.1"},
			Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "0123456789abcdef0123"},
				{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
				{Key: "vcs.modified", Value: "true"},
			},
		}, true
	}
	info := resolve(read)
	assert.Equal(t, "v0.3.1", info.Version)
	assert.Equal(t, "2026-01-02T03:04:05Z", info.BuildTime)
	assert.Equal(t, "v0.3.1 (0123456789ab-dirty)", info.String())
}

func TestResolveWithoutBuildInfo(t *testing.T) {
	info := resolve(func() (*debug.BuildInfo, bool) { return nil, false })
	assert.Equal(t, devVersion, info.Version)
	assert.Equal(t, devVersion, info.String())
	assert.NotEmpty(t, info.GoVersion)
}

func TestResolveDevelMain(t *testing.T) {
	info := resolve(func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, true
	})
	assert.Equal(t, devVersion, info.Version)
}
