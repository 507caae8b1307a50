package textutil_test

import (
	"reflect"
	"testing"

	"vetter/internal/textutil"
)

func TestNormalizeFieldName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Phone Number", "phone_number"},
		{"  Timestamp ", "timestamp"},
		{"Resume/CV", "resume/cv"},
		{"desired position", "desired_position"},
		{"ALREADY_NORMALIZED", "already_normalized"},
	}
	for _, tc := range cases {
		if got := textutil.NormalizeFieldName(tc.in); got != tc.want {
			t.Errorf("NormalizeFieldName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestExtractBracketed(t *testing.T) {
	raw := "Sure, here are the questions:\n" +
		"[1. What drew you to this position?]\n" +
		"[2) Tell us about your last project.]\n" +
		"noise between segments\n" +
		"[Why did you leave your previous role?]\n" +
		"[ ]\n"
	want := []string{
		"What drew you to this position?",
		"Tell us about your last project.",
		"Why did you leave your previous role?",
	}
	if got := textutil.ExtractBracketed(raw); !reflect.DeepEqual(got, want) {
		t.Fatalf("ExtractBracketed = %#v, want %#v", got, want)
	}
}

func TestExtractBracketedNoSegments(t *testing.T) {
	if got := textutil.ExtractBracketed("no brackets anywhere"); got != nil {
		t.Fatalf("expected nil, got %#v", got)
	}
}

func TestParseBracketedScore(t *testing.T) {
	cases := []struct {
		in    string
		want  float64
		found bool
	}{
		{"The result is [Score: 87]", 87, true},
		{"[score 8.9] trailing text", 8.9, true},
		{"[SCORE:100]", 100, true},
		{"Score: 87 without brackets", 0, false},
		{"[Score: high]", 0, false},
	}
	for _, tc := range cases {
		got, ok := textutil.ParseBracketedScore(tc.in)
		if ok != tc.found || got != tc.want {
			t.Errorf("ParseBracketedScore(%q) = (%v, %v), want (%v, %v)", tc.in, got, ok, tc.want, tc.found)
		}
	}
}
