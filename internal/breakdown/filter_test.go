package breakdown

import (
	"testing"

	"slate/internal/script"
)

func scenesNumbered(numbers ...string) []script.Scene {
	out := make([]script.Scene, len(numbers))
	for i, n := range numbers {
		out[i] = script.Scene{Number: n}
	}
	return out
}

func numbersOf(scenes []script.Scene) []string {
	out := make([]string, len(scenes))
	for i, s := range scenes {
		out[i] = s.Number
	}
	return out
}

func TestFilterRange(t *testing.T) {
	all := scenesNumbered("1", "4A", "5", "6", "7", "8", "9")

	tests := []struct {
		name string
		from string
		to   string
		want []string
	}{
		{"inclusive slice", "5", "8", []string{"5", "6", "7", "8"}},
		{"no bounds", "", "", []string{"1", "4A", "5", "6", "7", "8", "9"}},
		{"from only", "7", "", []string{"7", "8", "9"}},
		{"to only", "", "4A", []string{"1", "4A"}},
		{"unknown from defaults to start", "99", "5", []string{"1", "4A", "5"}},
		{"unknown to defaults to end", "6", "99", []string{"6", "7", "8", "9"}},
		{"case and whitespace insensitive", " 4a ", "4A", []string{"4A"}},
		{"inverted bounds yield empty", "8", "5", nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := numbersOf(FilterRange(all, tc.from, tc.to))
			if len(got) != len(tc.want) {
				t.Fatalf("FilterRange(%q, %q) = %v, want %v", tc.from, tc.to, got, tc.want)
			}
			for i := range tc.want {
				if got[i] != tc.want[i] {
					t.Errorf("result[%d] = %q, want %q", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestFilterRange_Idempotent(t *testing.T) {
	all := scenesNumbered("1", "4A", "5", "6", "7", "8", "9")

	once := FilterRange(all, "5", "8")
	twice := FilterRange(once, "5", "8")
	if len(once) != len(twice) {
		t.Fatalf("second filter changed length: %v vs %v", numbersOf(once), numbersOf(twice))
	}
	for i := range once {
		if once[i].Number != twice[i].Number {
			t.Errorf("result[%d] = %q, want %q", i, twice[i].Number, once[i].Number)
		}
	}
}
