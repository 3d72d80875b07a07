package version

import "testing"

func TestString(t *testing.T) {
	origVersion, origSHA, origTime := Version, GitSHA, BuildTime
	defer func() { Version, GitSHA, BuildTime = origVersion, origSHA, origTime }()

	Version, GitSHA, BuildTime = "1.2.0", "abc1234", "2026-10-01T00:00:00Z"
	want := "beacons 1.2.0 (commit abc1234, built 2026-10-01T00:00:00Z)"
	if got := String("beacons"); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
