package script

import (
	"strings"
	"testing"
)

const sampleScript = `FADE IN:

1 INT. FIRST NATIONAL BANK - DAY

JAX (32) and MIRA sprint across the marble floor carrying DUFFEL BAGS.
Twenty BYSTANDERS dive for cover.

JAX
Go! Go! Go!

2 EXT. FIRST NATIONAL BANK - CONTINUOUS

The GETAWAY VAN screeches to the curb. Four POLICE CRUISERS close in.

15A INT. VAULT - NIGHT

Mira drills the lock. Sparks fly.
`

func TestParserSplit(t *testing.T) {
	scenes := NewParser().Split(sampleScript)

	if len(scenes) != 3 {
		t.Fatalf("expected 3 scenes, got %d", len(scenes))
	}

	t.Run("headers parsed", func(t *testing.T) {
		first := scenes[0]
		if first.Number != "1" {
			t.Errorf("scene number = %q, want 1", first.Number)
		}
		if first.IntExt != "INT" {
			t.Errorf("int_ext = %q, want INT", first.IntExt)
		}
		if first.SetName != "FIRST NATIONAL BANK" {
			t.Errorf("set_name = %q", first.SetName)
		}
		if first.DayNight != "DAY" {
			t.Errorf("day_night = %q, want DAY", first.DayNight)
		}
		if !strings.Contains(first.ScriptText, "DUFFEL BAGS") {
			t.Errorf("scene body missing action text: %q", first.ScriptText)
		}
	})

	t.Run("continuous inherits time of day", func(t *testing.T) {
		second := scenes[1]
		if second.IntExt != "EXT" {
			t.Errorf("int_ext = %q, want EXT", second.IntExt)
		}
		if second.DayNight != "DAY" {
			t.Errorf("day_night = %q, want inherited DAY", second.DayNight)
		}
	})

	t.Run("alphanumeric scene numbers", func(t *testing.T) {
		if scenes[2].Number != "15A" {
			t.Errorf("scene number = %q, want 15A", scenes[2].Number)
		}
		if scenes[2].DayNight != "NIGHT" {
			t.Errorf("day_night = %q, want NIGHT", scenes[2].DayNight)
		}
	})

	t.Run("page length is at least one eighth", func(t *testing.T) {
		for _, s := range scenes {
			if s.PagesWhole*8+s.PagesEighths < 1 {
				t.Errorf("scene %s has zero page length", s.Number)
			}
		}
	})
}

func TestParserSplit_SluglineStaysInHeader(t *testing.T) {
	// Sluglines preceded by blank lines must still be cut as the header
	// line, never swallowed into the previous chunk or the scene body.
	scenes := NewParser().Split(sampleScript)
	if len(scenes) != 3 {
		t.Fatalf("expected 3 scenes, got %d", len(scenes))
	}
	for _, s := range scenes {
		if strings.Contains(s.ScriptText, "INT.") || strings.Contains(s.ScriptText, "EXT.") {
			t.Errorf("scene %s body contains a slugline: %q", s.Number, s.ScriptText)
		}
		if s.SetName == "UNKNOWN SET" {
			t.Errorf("scene %s lost its set name", s.Number)
		}
	}
}

func TestParserSplit_NoSluglines(t *testing.T) {
	scenes := NewParser().Split("Just a treatment paragraph with no scene headers.")
	if len(scenes) != 0 {
		t.Fatalf("expected no scenes, got %d", len(scenes))
	}
}

func TestScenePageLength(t *testing.T) {
	cases := []struct {
		whole, eighths int
		want           string
	}{
		{0, 3, "3/8"},
		{1, 0, "1"},
		{2, 5, "2 5/8"},
	}
	for _, tc := range cases {
		s := Scene{PagesWhole: tc.whole, PagesEighths: tc.eighths}
		if got := s.PageLength(); got != tc.want {
			t.Errorf("PageLength(%d,%d) = %q, want %q", tc.whole, tc.eighths, got, tc.want)
		}
	}
}
