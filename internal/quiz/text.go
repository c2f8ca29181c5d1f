package quiz

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	minSentenceChars = 20
	ellipsis         = "..."
)

var sentenceBreak = regexp.MustCompile(`[.!?]+`)

// splitSentences splits on runs of terminal punctuation, trims and drops short fragments.
func splitSentences(text string) []string {
	parts := sentenceBreak.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if utf8.RuneCountInString(p) > minSentenceChars {
			out = append(out, p)
		}
	}
	return out
}

// cut returns at most n runes of s.
func cut(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// shorten keeps s when it fits in limit runes, otherwise cuts to limit-3 and appends "...".
func shorten(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return cut(s, limit-len(ellipsis)) + ellipsis
}

// firstWords joins the first n whitespace-separated words of s.
func firstWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

// wordMatches returns up to n matches of re (all when n < 0) that are not glued
// to a letter or digit on either side. RE2's \b only knows ASCII word
// characters, so "éAlan Turing" would otherwise yield "Alan Turing".
func wordMatches(re *regexp.Regexp, text string, n int) []string {
	var out []string
	for _, loc := range re.FindAllStringIndex(text, -1) {
		if n >= 0 && len(out) >= n {
			break
		}
		before, _ := utf8.DecodeLastRuneInString(text[:loc[0]])
		after, _ := utf8.DecodeRuneInString(text[loc[1]:])
		if isWordRune(before) || isWordRune(after) {
			continue
		}
		out = append(out, text[loc[0]:loc[1]])
	}
	return out
}

func isWordRune(r rune) bool {
	return r != utf8.RuneError && (unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r))
}
