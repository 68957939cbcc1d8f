package version

import (
	"runtime/debug"
	"testing"
)

func stub(t *testing.T, version, commit, buildTime string, bi *debug.BuildInfo) {
	t.Helper()
	origVersion, origCommit, origBuildTime, origRead := Version, GitCommit, BuildTime, readBuildInfo
	t.Cleanup(func() {
		Version, GitCommit, BuildTime, readBuildInfo = origVersion, origCommit, origBuildTime, origRead
	})
	Version, GitCommit, BuildTime = version, commit, buildTime
	readBuildInfo = func() (*debug.BuildInfo, bool) { return bi, bi != nil }
}

func TestGetDefaults(t *testing.T) {
	stub(t, "dev", "", "", nil)
	info := Get()
	if info.Version != "dev" || info.IsRelease {
		t.Errorf("unexpected info %+v", info)
	}
	if !info.BuildDate.IsZero() {
		t.Error("BuildDate should stay zero without a build time")
	}
	if got := info.String(); got != "dev" {
		t.Errorf("String() = %q, want dev", got)
	}
}

func TestGetLdflags(t *testing.T) {
	stub(t, "1.0.0", "abc1234", "2024-01-15T10:30:00Z", &debug.BuildInfo{GoVersion: "go1.26.0"})
	info := Get()
	if !info.IsRelease {
		t.Error("1.0.0 should be a release")
	}
	if info.BuildDate.Year() != 2024 {
		t.Errorf("expected build year 2024, got %d", info.BuildDate.Year())
	}
	if got, want := info.String(), "1.0.0-abc1234 (built 2024-01-15T10:30:00Z, go1.26.0)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestGetVCSFallback(t *testing.T) {
	stub(t, "1.1.0", "", "", &debug.BuildInfo{
		GoVersion: "go1.26.0",
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.modified", Value: "true"},
			{Key: "vcs.time", Value: "2025-03-01T00:00:00Z"},
		},
	})
	info := Get()
	if info.GitCommit != "0123456" {
		t.Errorf("commit = %q, want 0123456", info.GitCommit)
	}
	if !info.IsDirty {
		t.Error("expected dirty build")
	}
	if got := info.Short(); got != "1.1.0-0123456-dirty" {
		t.Errorf("Short() = %q", got)
	}
	if info.BuildDate.Month() != 3 {
		t.Errorf("build date = %v", info.BuildDate)
	}
}

func TestLdflagsWinOverVCS(t *testing.T) {
	stub(t, "2.0.0", "feedbee", "2024-06-01T00:00:00Z", &debug.BuildInfo{
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.time", Value: "2025-03-01T00:00:00Z"},
		},
	})
	info := Get()
	if info.GitCommit != "feedbee" || info.BuildDate.Year() != 2024 {
		t.Errorf("unexpected info %+v", info)
	}
}

func TestDirtyVersionIsNotRelease(t *testing.T) {
	stub(t, "1.0.0-dirty", "", "", nil)
	if Get().IsRelease {
		t.Error("dirty version should not be a release")
	}
}
