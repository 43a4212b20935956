package version

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func withVars(t *testing.T, version, commit, date string) {
	t.Helper()
	oldVersion, oldCommit, oldDate := Version, Commit, Date
	Version, Commit, Date = version, commit, date
	t.Cleanup(func() { Version, Commit, Date = oldVersion, oldCommit, oldDate })
}

func TestGetUsesLdflags(t *testing.T) {
	withVars(t, "v1.2.3", "abcdef0123456789", "2025-08-20T12:00:00Z")

	info := Get()
	assert.Equal(t, "v1.2.3", info.Version)
	assert.Equal(t, "abcdef0123456789", info.Commit)
	assert.Equal(t, time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC), info.BuildTime)
	assert.NotEmpty(t, info.GoVersion)
	assert.Contains(t, info.Platform, "/")

	assert.Equal(t, "v1.2.3", GetVersion())
	assert.True(t, IsRelease())
}

func TestDevVersion(t *testing.T) {
	withVars(t, "dev", "unknown", "unknown")

	v := GetVersion()
	assert.NotEmpty(t, v)
	assert.False(t, v == "dev" && IsRelease())
}

func TestInfoString(t *testing.T) {
	withVars(t, "v0.1.0", "1234567", "2025-01-02T03:04:05Z")

	s := Get().String()
	assert.Contains(t, s, "Version: v0.1.0")
	assert.Contains(t, s, "Commit: 1234567")
	assert.Contains(t, s, "Built: 2025-01-02T03:04:05Z")
	assert.Contains(t, s, "Go: ")
}
