package bytesize

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	cases := []struct {
		magnitude string
		unit      string
		want      int64
	}{
		{"0", "B", 0},
		{"512", "B", 512},
		{"1", "KiB", 1024},
		{"1", "MiB", 1024 * 1024},
		{"1", "GiB", 1024 * 1024 * 1024},
		{"1", "TiB", 1024 * 1024 * 1024 * 1024},
		{"1", "PiB", 1024 * 1024 * 1024 * 1024 * 1024},
		{"12.5", "GiB", 12.5 * 1024 * 1024 * 1024},
		{"3.14", "KiB", 3215}, // 3.14 * 1024 = 3215.36, truncated
	}

	for _, c := range cases {
		got, err := Parse(c.magnitude, c.unit)
		if err != nil {
			t.Fatalf("Parse(%q, %q): %v", c.magnitude, c.unit, err)
		}
		if got != c.want {
			t.Errorf("Parse(%q, %q) = %d, want %d", c.magnitude, c.unit, got, c.want)
		}
	}
}

func TestParse_UnitScaleConsistency(t *testing.T) {
	gib, err := Parse("1", "GiB")
	if err != nil {
		t.Fatal(err)
	}
	mib, err := Parse("1", "MiB")
	if err != nil {
		t.Fatal(err)
	}
	if gib != 1024*mib {
		t.Errorf("1 GiB = %d, want 1024 * 1 MiB = %d", gib, 1024*mib)
	}
}

func TestParse_MonotonicInMagnitude(t *testing.T) {
	small, _ := Parse("1.5", "GiB")
	large, _ := Parse("2.5", "GiB")
	if small >= large {
		t.Errorf("expected 1.5 GiB (%d) < 2.5 GiB (%d)", small, large)
	}
}

func TestParse_InvalidUnit(t *testing.T) {
	for _, unit := range []string{"GB", "KB", "gib", "bytes", ""} {
		if _, err := Parse("1", unit); !errors.Is(err, ErrInvalidUnit) {
			t.Errorf("Parse(1, %q): expected ErrInvalidUnit, got %v", unit, err)
		}
	}
}

func TestParse_InvalidMagnitude(t *testing.T) {
	if _, err := Parse("twelve", "GiB"); err == nil {
		t.Error("expected error for non-numeric magnitude")
	}
	if _, err := Parse("-1", "GiB"); err == nil {
		t.Error("expected error for negative magnitude")
	}
}

func TestParseSize(t *testing.T) {
	got, err := ParseSize("12.5 GiB")
	if err != nil {
		t.Fatal(err)
	}
	want := int64(12.5 * 1024 * 1024 * 1024)
	if got != want {
		t.Errorf("ParseSize(12.5 GiB) = %d, want %d", got, want)
	}

	if _, err := ParseSize("12.5GiB"); err == nil {
		t.Error("expected error for missing separator")
	}
	if _, err := ParseSize(""); err == nil {
		t.Error("expected error for empty string")
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.00 KiB"},
		{13743895347200, "12.50 TiB"},
	}
	for _, tt := range tests {
		if got := Format(tt.n); got != tt.want {
			t.Errorf("Format(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	got, err := ParseSize(Format(13743895347200))
	if err != nil {
		t.Fatal(err)
	}
	if got != 13743895347200 {
		t.Errorf("round trip = %d", got)
	}
}
