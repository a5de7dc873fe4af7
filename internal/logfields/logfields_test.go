package logfields

import (
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    interface{}
	}{
		{"RunID", KeyRunID, "0b6f", RunID("0b6f")},
		{"Job", KeyJob, "python-3.11.1-armv7-neon-linux-gnueabihf", Job("python-3.11.1-armv7-neon-linux-gnueabihf")},
		{"Kind", KeyKind, "pypy", Kind("pypy")},
		{"Host", KeyHost, "aarch64-rpi3-linux-gnu", Host("aarch64-rpi3-linux-gnu")},
		{"Build", KeyBuild, "x86_64-pc-linux-gnu", Build("x86_64-pc-linux-gnu")},
		{"Python", KeyPython, "3.12.0a3", Python("3.12.0a3")},
		{"Worker", KeyWorker, "worker-1", Worker("worker-1")},
		{"Property", KeyProperty, "ABI flags", Property("ABI flags")},
		{"Path", KeyPath, "/tmp/x", Path("/tmp/x")},
		{"Command", KeyCommand, "make -C .", Command("make -C .")},
	}

	for _, tc := range cases {
		a := tc.attr.(slog.Attr)
		if a.Key != tc.attrKey {
			// Key drift would break log ingestion schemas.
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.attrKey, a.Key)
		}
		if got := a.Value.String(); got != tc.attrVal { // Value is slog.Value
			t.Fatalf("%s: expected value %s, got %v", tc.name, tc.attrVal, got)
		}
	}
}

// TestNumericHelpers verifies keys for numeric & float helpers.
func TestNumericHelpers(t *testing.T) {
	if v := Workers(4); v.Key != KeyWorkers {
		t.Fatalf("Workers key mismatch: %s", v.Key)
	}
	if v := Jobs(25); v.Key != KeyJobs {
		t.Fatalf("Jobs key mismatch: %s", v.Key)
	}
	if v := ExitCode(2); v.Key != KeyExitCode {
		t.Fatalf("ExitCode key mismatch: %s", v.Key)
	}
	if v := DurationMS(12.5); v.Key != KeyDurationMS {
		t.Fatalf("DurationMS key mismatch: %s", v.Key)
	}
	if v := Targets([]string{"python"}); v.Key != KeyTargets {
		t.Fatalf("Targets key mismatch: %s", v.Key)
	}
}

// TestErrorHelper ensures Error() handles nil and non-nil errors predictably.
func TestErrorHelper(t *testing.T) {
	attr := Error(nil)
	if attr.Key != KeyError {
		t.Fatalf("Error key mismatch: %s", attr.Key)
	}
	if attr.Value.String() != "" {
		t.Fatalf("Expected empty error string, got %s", attr.Value.String())
	}
	attr = Error(errTest{})
	if attr.Value.String() != "err-test" {
		t.Fatalf("Expected 'err-test', got %s", attr.Value.String())
	}
}

type errTest struct{}

func (e errTest) Error() string { return "err-test" }
