package narrative

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	bulletRe      = regexp.MustCompile(`^(?:[-*•–]|\d{1,2}[.)])\s+`)
	blankRunRe    = regexp.MustCompile(`\n{3,}`)
	preambleStart = []string{
		"sure", "certainly", "of course", "absolutely", "okay", "great",
		"here is", "here's", "here are", "below is", "as requested",
		"i've", "i have",
	}
	postambleStart = []string{
		"let me know", "feel free", "i hope", "hope this", "hope that",
		"would you like", "if you'd like", "if you need", "please let",
	}
)

// Process normalizes raw model output for a slot: strips conversational
// wrappers and code fences, shapes the text per the prompt's output kind,
// and clamps length at sentence boundaries. The returned warnings flag
// constraint misses that survived cleanup; they are advisory.
func Process(spec PromptSpec, raw string) (string, []string) {
	s := stripFences(strings.TrimSpace(raw))
	s = stripWrapper(s)

	switch spec.Kind {
	case KindList:
		s = processList(spec, s)
	default:
		s = processFragment(spec, s)
	}

	return s, checkConstraints(spec, s)
}

// stripFences removes a markdown code fence wrapping the whole output.
func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) < 2 {
		return s
	}
	lines = lines[1:]
	if strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// stripWrapper drops a conversational preamble line ("Sure, here's the
// summary:") and any trailing sign-off ("Let me know if...").
func stripWrapper(s string) string {
	lines := strings.Split(s, "\n")

	if len(lines) > 1 {
		first := strings.ToLower(strings.TrimSpace(lines[0]))
		if strings.HasSuffix(first, ":") && hasAnyPrefix(first, preambleStart) {
			lines = lines[1:]
		}
	}

	for i := 1; i < len(lines); i++ {
		if hasAnyPrefix(strings.ToLower(strings.TrimSpace(lines[i])), postambleStart) {
			lines = lines[:i]
			break
		}
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func processFragment(spec PromptSpec, s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = blankRunRe.ReplaceAllString(s, "\n\n")
	return clampAtSentence(strings.TrimSpace(s), spec.MaxChars)
}

func processList(spec PromptSpec, s string) string {
	var items []string
	for _, line := range strings.Split(s, "\n") {
		item := strings.TrimSpace(bulletRe.ReplaceAllString(strings.TrimSpace(line), ""))
		item = strings.ReplaceAll(item, "**", "")
		if item == "" {
			continue
		}
		items = append(items, clampAtSentence(item, spec.ItemMaxChars))
	}
	if spec.MaxItems > 0 && len(items) > spec.MaxItems {
		items = items[:spec.MaxItems]
	}
	return strings.Join(items, "\n")
}

// clampAtSentence cuts s to at most max runes, preferring the last full
// sentence that fits. With no sentence boundary it cuts at a word break
// and marks the cut with an ellipsis.
func clampAtSentence(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	cut := []rune(s)[:max]

	for i := len(cut) - 1; i > 0; i-- {
		switch cut[i] {
		case '.', '!', '?':
			if i == len(cut)-1 || unicode.IsSpace(cut[i+1]) {
				return strings.TrimSpace(string(cut[:i+1]))
			}
		}
	}

	for i := len(cut) - 1; i > 0; i-- {
		if unicode.IsSpace(cut[i]) {
			return strings.TrimSpace(string(cut[:i])) + "…"
		}
	}
	return string(cut)
}

// checkConstraints reports advisory misses: forbidden terms, empty
// output, and template tokens that survived rendering.
func checkConstraints(spec PromptSpec, s string) []string {
	var warns []string
	if strings.TrimSpace(s) == "" {
		warns = append(warns, "empty output")
		return warns
	}
	lower := strings.ToLower(s)
	for _, term := range spec.Forbidden {
		if strings.Contains(lower, strings.ToLower(term)) {
			warns = append(warns, fmt.Sprintf("forbidden term %q present", term))
		}
	}
	if strings.Contains(s, "{{") {
		warns = append(warns, "unrendered template token in output")
	}
	return warns
}
