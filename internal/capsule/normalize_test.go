package capsule

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase", "AI", "ai"},
		{"trim", "  physics  ", "physics"},
		{"collapse whitespace", "machine   learning", "machine learning"},
		{"tabs and newlines", "deep\t\nlearning", "deep learning"},
		{"already normalized", "philosophy", "philosophy"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestClamp01(t *testing.T) {
	tests := []struct {
		input float64
		want  float64
	}{
		{-0.5, 0},
		{0, 0},
		{0.42, 0.42},
		{1, 1},
		{1.08, 1},
	}

	for _, tt := range tests {
		if got := Clamp01(tt.input); got != tt.want {
			t.Errorf("Clamp01(%g) = %g, want %g", tt.input, got, tt.want)
		}
	}
}

func TestInRange01(t *testing.T) {
	if InRange01(-0.01) {
		t.Error("InRange01(-0.01) should be false")
	}
	if InRange01(1.01) {
		t.Error("InRange01(1.01) should be false")
	}
	if !InRange01(0) || !InRange01(1) || !InRange01(0.5) {
		t.Error("InRange01 should accept boundary and interior values")
	}
}

func TestBumpVersion(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1.0", "1.1"},
		{"1.1", "1.2"},
		{"1.9", "2.0"},
		{"2.0", "2.1"},
		{" 1.3 ", "1.4"},
	}

	for _, tt := range tests {
		got, err := BumpVersion(tt.input)
		if err != nil {
			t.Fatalf("BumpVersion(%q) failed: %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("BumpVersion(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestBumpVersion_Invalid(t *testing.T) {
	if _, err := BumpVersion("one.two"); err == nil {
		t.Error("BumpVersion should reject non-numeric versions")
	}
	if _, err := BumpVersion(""); err == nil {
		t.Error("BumpVersion should reject empty versions")
	}
}
