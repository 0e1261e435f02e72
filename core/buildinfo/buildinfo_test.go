package buildinfo

import (
	"strings"
	"testing"
)

func TestStringUsesStampedValues(t *testing.T) {
	defer func(v, c, d string) { Version, Commit, Date = v, c, d }(Version, Commit, Date)

	Version, Commit, Date = "v1.4.0", "abc1234", "2026-10-01T12:00:00Z"
	if got := String(); got != "v1.4.0 (abc1234, 2026-10-01T12:00:00Z)" {
		t.Fatalf("String() = %q", got)
	}
	Date = ""
	if got := String(); got != "v1.4.0 (abc1234)" {
		t.Fatalf("String() = %q", got)
	}
}

func TestStringWithoutStamp(t *testing.T) {
	defer func(c string) { Commit = c }(Commit)
	Commit = ""
	if got := String(); !strings.HasPrefix(got, Version+" (") {
		t.Fatalf("String() = %q", got)
	}
}
