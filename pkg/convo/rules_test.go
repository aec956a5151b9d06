package convo

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "but before index token becomes buy",
			in:   "but n1",
			want: "buy n1",
		},
		{
			name: "can i but",
			in:   "Can I but this one",
			want: "can i buy this one",
		},
		{
			name: "i want to but",
			in:   "I want to but the second",
			want: "i want to buy the second",
		},
		{
			name: "add n2 keeps the token",
			in:   "add n2",
			want: "n2",
		},
		{
			name: "ordinary but is untouched",
			in:   "nice but expensive",
			want: "nice but expensive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsNegative(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"no thanks", true},
		{"nah, not now", true},
		{"not interested at all", true},
		{"yes please", false},
		{"add 1 and 2", false},
	}

	for _, tt := range tests {
		if got := IsNegative(tt.in); got != tt.want {
			t.Errorf("IsNegative(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLooksStartLike(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"start", true},
		{"  s t a r t ", true},
		{"st", true},
		{"s", true},
		{"go", true},
		{"restart please", true},
		{"hello", false},
		{"checkout", false},
	}

	for _, tt := range tests {
		if got := LooksStartLike(tt.in); got != tt.want {
			t.Errorf("LooksStartLike(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseIndices(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want []int
	}{
		{
			name: "one and two",
			in:   "1 and 2",
			max:  3,
			want: []int{1, 2},
		},
		{
			name: "adjacent tokens",
			in:   "1 2 3",
			max:  3,
			want: []int{1, 2, 3},
		},
		{
			name: "n prefixed",
			in:   "n2, n3",
			max:  3,
			want: []int{2, 3},
		},
		{
			name: "out of range dropped",
			in:   "1 and 5",
			max:  3,
			want: []int{1},
		},
		{
			name: "duplicates dropped",
			in:   "2 and 2",
			max:  3,
			want: []int{2},
		},
		{
			name: "digits inside words ignored",
			in:   "catch22 is great",
			max:  25,
			want: nil,
		},
		{
			name: "no numbers",
			in:   "the first one",
			max:  3,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseIndices(tt.in, tt.max); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseIndices(%q, %d) = %v, want %v", tt.in, tt.max, got, tt.want)
			}
		})
	}
}

func TestExtractPreference(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		current string
		want    string
	}{
		{
			name: "verb phrase",
			in:   "recommend cozy fantasy heists",
			want: "cozy fantasy heists",
		},
		{
			name: "noise words stripped",
			in:   "suggest fantasy books please",
			want: "fantasy",
		},
		{
			name: "mood phrasing",
			in:   "i'm in the mood for space opera",
			want: "space opera",
		},
		{
			name: "scifi keyword fallback",
			in:   "got any scifi",
			want: "sci-fi",
		},
		{
			name: "wizard implies fantasy",
			in:   "something with wizards",
			want: "fantasy",
		},
		{
			name:    "keeps current when nothing matches",
			in:      "hello there",
			current: "mystery",
			want:    "mystery",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractPreference(tt.in, tt.current); got != tt.want {
				t.Errorf("ExtractPreference(%q, %q) = %q, want %q", tt.in, tt.current, got, tt.want)
			}
		})
	}
}

func TestCanonicalizeGenre(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Sci-Fi", "sci fi"},
		{"sci  fi", "sci fi"},
		{"Non Fiction", "nonfiction"},
		{"Young Adult", "ya"},
		{"fantasy", "fantasy"},
	}

	for _, tt := range tests {
		if got := CanonicalizeGenre(tt.in); got != tt.want {
			t.Errorf("CanonicalizeGenre(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLooksLikeStandaloneGenre(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"fantasy", true},
		{"sci-fi", true},
		{"space opera", true},
		{"fantasy heists tonight", true},
		{"i would like some fantasy novels for my commute", false},
		{"hello", false},
	}

	for _, tt := range tests {
		if got := LooksLikeStandaloneGenre(tt.in); got != tt.want {
			t.Errorf("LooksLikeStandaloneGenre(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
