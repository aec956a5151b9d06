// Package convo holds the deterministic text heuristics of the shopping
// assistant: typo normalization, phrase tables, index parsing, genre
// canonicalization and preference extraction. Everything here is pure
// string work so the dialogue layer stays testable without a model.
package convo

import (
	"regexp"
	"strings"
)

var (
	reButN      = regexp.MustCompile(`\bbut\s*(n\d+)\b`)
	reCanIBut   = regexp.MustCompile(`\bcan i but\b`)
	reWantToBut = regexp.MustCompile(`\bi want to but\b`)
	reAddN      = regexp.MustCompile(`\badd\s*(n\d+)\b`)
)

// Normalize lowercases the message and fixes the common "but"/"buy"
// typo family before any command matching runs.
func Normalize(s string) string {
	x := strings.ToLower(s)
	x = reButN.ReplaceAllString(x, "buy $1")
	x = reCanIBut.ReplaceAllString(x, "can i buy")
	x = reWantToBut.ReplaceAllString(x, "i want to buy")
	x = reAddN.ReplaceAllString(x, "$1")
	return x
}

var negativePhrases = []string{
	"no thank you", "no thanks", "nope", "nah", "not now", "cancel",
	"skip", "leave it", "stop", "none", "not interested",
}

// IsNegative reports whether the message reads as a decline.
func IsNegative(x string) bool {
	return ContainsAny(x, negativePhrases...)
}

var comparePhrases = []string{
	"which is best", "which one is best", "which is better", "pick one",
	"top pick", "what should i pick", "best one", "favourite", "favorite",
}

// LooksCompare reports whether the user is asking for a single best pick.
func LooksCompare(x string) bool {
	return ContainsAny(x, comparePhrases...)
}

var checkoutPhrases = []string{"checkout", "place order", "buy now", "confirm order"}

// LooksCheckout reports whether the message asks to place the order.
func LooksCheckout(x string) bool {
	return ContainsAny(x, checkoutPhrases...)
}

var bookyWords = []string{
	"book", "novel", "recommend", "sci-fi", "scifi", "science fiction",
	"fantasy", "author",
}

// LooksBooky reports whether the message is plausibly about books at all.
func LooksBooky(x string) bool {
	return ContainsAny(x, bookyWords...)
}

var reSpaces = regexp.MustCompile(`\s+`)

// LooksStartLike accepts "start" plus the sloppy variants users type
// when asked to begin ("st", "s", "go").
func LooksStartLike(m string) bool {
	x := reSpaces.ReplaceAllString(strings.ToLower(m), "")
	return strings.Contains(x, "start") || strings.HasPrefix(x, "st") || x == "s" || x == "go"
}

// ContainsAny reports whether input contains any of the needles.
func ContainsAny(input string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(input, n) {
			return true
		}
	}
	return false
}

// MatchesAny reports whether input equals one of the options exactly.
func MatchesAny(input string, options ...string) bool {
	for _, o := range options {
		if input == o {
			return true
		}
	}
	return false
}

var (
	reSeparators = regexp.MustCompile(`[,;&]`)
	reAndWord    = regexp.MustCompile(`\band\b`)
	reIndexToken = regexp.MustCompile(`(?:^|\s)(?:n)?(\d{1,2})(?:\s|$)`)
)

// ParseIndices extracts 1-based picks from free text like "1 and 3" or
// "n2, n3". Out-of-range values and duplicates are dropped; order of
// first mention is kept.
func ParseIndices(lower string, max int) []int {
	x := reSeparators.ReplaceAllString(lower, " ")
	x = reAndWord.ReplaceAllString(x, " ")
	x = reSpaces.ReplaceAllString(x, " ")

	var picks []int
	rest := x
	for {
		loc := reIndexToken.FindStringSubmatchIndex(rest)
		if loc == nil {
			break
		}
		tok := rest[loc[2]:loc[3]]
		// Re-scan from the digit end so adjacent tokens separated by a
		// single space are not swallowed by the trailing boundary.
		rest = rest[loc[3]:]

		v := 0
		for _, c := range tok {
			v = v*10 + int(c-'0')
		}
		if v >= 1 && v <= max && !containsInt(picks, v) {
			picks = append(picks, v)
		}
	}
	return picks
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

var (
	rePrefVerb  = regexp.MustCompile(`(?:recommend|suggest|like|in the mood for|mood for|interested in|prefer)\s+([^.;:]+)`)
	rePrefNoise = regexp.MustCompile(`\b(books|book|novels|novel|please)\b`)
)

// ExtractPreference pulls a preference phrase out of the message
// ("recommend cozy fantasy heists" -> "cozy fantasy heists"). Falls back
// to broad genre keywords, then to the current preference.
func ExtractPreference(lower, current string) string {
	if m := rePrefVerb.FindStringSubmatch(lower); m != nil {
		cand := strings.TrimSpace(rePrefNoise.ReplaceAllString(m[1], ""))
		cand = strings.TrimSpace(reSpaces.ReplaceAllString(cand, " "))
		if cand != "" {
			return cand
		}
	}
	if strings.Contains(lower, "sci-fi") || strings.Contains(lower, "scifi") || strings.Contains(lower, "science fiction") {
		return "sci-fi"
	}
	if strings.Contains(lower, "fantasy") || strings.Contains(lower, "wizard") || strings.Contains(lower, "magic") {
		return "fantasy"
	}
	return current
}

var canonGenres = map[string]struct{}{
	"sci fi": {}, "scifi": {}, "science fiction": {}, "fantasy": {},
	"romance": {}, "mystery": {}, "thriller": {}, "crime": {},
	"horror": {}, "historical": {}, "nonfiction": {}, "non-fiction": {},
	"ya": {}, "young adult": {}, "literary": {}, "adventure": {},
	"space opera": {}, "dystopian": {}, "urban fantasy": {}, "magical realism": {},
}

var (
	reSciFi      = regexp.MustCompile(`\bsci[-\s]*fi\b`)
	reNonFiction = regexp.MustCompile(`\bnon\s*fiction\b`)
	reYoungAdult = regexp.MustCompile(`\byoung\s*adult\b`)
)

// CanonicalizeGenre collapses spelling variants of a genre phrase.
func CanonicalizeGenre(s string) string {
	x := strings.TrimSpace(strings.ToLower(s))
	x = reSciFi.ReplaceAllString(x, "sci fi")
	x = reNonFiction.ReplaceAllString(x, "nonfiction")
	x = reYoungAdult.ReplaceAllString(x, "ya")
	return x
}

// LooksLikeStandaloneGenre reports whether the whole message is just a
// genre, optionally with a short qualifier ("sci fi epics").
func LooksLikeStandaloneGenre(m string) bool {
	x := CanonicalizeGenre(m)
	if _, ok := canonGenres[x]; ok {
		return true
	}
	if len(strings.Fields(x)) <= 3 {
		for g := range canonGenres {
			if strings.HasPrefix(x, g) {
				return true
			}
		}
	}
	return false
}
