package furnilytics

import (
	"strings"
	"testing"
)

func TestGetVersion(t *testing.T) {
	version := GetVersion()

	if !strings.Contains(version, Version) {
		t.Errorf("Expected version string to contain %q, got %q", Version, version)
	}

	if !strings.Contains(version, GitCommit) {
		t.Errorf("Expected version string to contain commit %q, got %q", GitCommit, version)
	}

	if !strings.HasPrefix(version, "Furnilytics Go client v") {
		t.Errorf("Unexpected version string prefix: %q", version)
	}
}

func TestGetVersionInfo(t *testing.T) {
	info := GetVersionInfo()

	for _, key := range []string{"version", "commit", "build_date", "go_version"} {
		if info[key] == "" {
			t.Errorf("Expected %q to be set in version info", key)
		}
	}

	if info["version"] != Version {
		t.Errorf("Expected version=%q, got %q", Version, info["version"])
	}
}

func TestDefaultUserAgent(t *testing.T) {
	userAgent := defaultUserAgent()

	if userAgent != "furnilytics-go/"+Version {
		t.Errorf("Expected user agent %q, got %q", "furnilytics-go/"+Version, userAgent)
	}
}
