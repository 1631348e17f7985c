// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import "testing"

func TestRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "smith", "smith", 100},
		{"both empty", "", "", 100},
		{"one empty", "smith", "", 0},
		{"disjoint same length", "ab", "cd", 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Ratio(tt.a, tt.b); got != tt.want {
				t.Errorf("Ratio(%q, %q) = %.1f, want %.1f", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestRatioCloseVariants(t *testing.T) {
	// muller/mueller differ by one insertion: (13-1)/13 ~= 92.3.
	if got := Ratio("muller", "mueller"); got < 90 || got > 95 {
		t.Errorf("Ratio(muller, mueller) = %.1f, want ~92.3", got)
	}
	// smith/smythe must fall below the surname gate.
	if got := Ratio("smith", "smythe"); got >= 90 {
		t.Errorf("Ratio(smith, smythe) = %.1f, want < 90", got)
	}
}

func TestRatioSymmetric(t *testing.T) {
	pairs := [][2]string{{"smith", "smythe"}, {"deep learning", "learning deep"}, {"a", "abc"}}
	for _, p := range pairs {
		if Ratio(p[0], p[1]) != Ratio(p[1], p[0]) {
			t.Errorf("Ratio not symmetric for %q/%q", p[0], p[1])
		}
	}
}

func TestPartialRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"substring scores perfect", "deep learning", "deep learning for vision", 100},
		{"initial against full name", "j", "joanne", 100},
		{"order independent of argument length", "joanne", "j", 100},
		{"both empty", "", "", 100},
		{"one empty", "", "abc", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PartialRatio(tt.a, tt.b); got != tt.want {
				t.Errorf("PartialRatio(%q, %q) = %.1f, want %.1f", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestTokenSetRatio(t *testing.T) {
	if got := TokenSetRatio("deep learning", "learning deep"); got != 100 {
		t.Errorf("reordered tokens: got %.1f, want 100", got)
	}
	if got := TokenSetRatio("deep deep learning", "deep learning"); got != 100 {
		t.Errorf("duplicate tokens: got %.1f, want 100", got)
	}
	if got := TokenSetRatio("deep learning", "deep learning methods survey"); got < 70 {
		t.Errorf("subtitle extension scored too low: %.1f", got)
	}
	if got := TokenSetRatio("", ""); got != 100 {
		t.Errorf("both empty: got %.1f, want 100", got)
	}
	if got := TokenSetRatio("deep learning", ""); got != 0 {
		t.Errorf("one empty: got %.1f, want 0", got)
	}
}
