package platform

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// DefaultTitlePlaceholder is used when a video has no title at all.
const DefaultTitlePlaceholder = "Facebook Video"

// Filename limits
const (
	MaxFilenameRunes = 180
	FallbackFilename = "video"
)

var (
	invalidFilenameChars = regexp.MustCompile(`[^\p{L}\p{N}_\-.() \[\]]+`)
	filenameSpaceRuns    = regexp.MustCompile(`[ _]+`)

	engagementCounter = regexp.MustCompile(`(?i)\b\d+(?:[.,]\d+)?\s*[km]?\s*(?:views|reactions|comments|shares|likes)\b`)
	separatorRuns     = regexp.MustCompile(`\s*([·|])(?:\s*[·|])+\s*`)
	whitespaceRuns    = regexp.MustCompile(`\s+`)
)

// SanitizeFilename turns an arbitrary title into a portable file stem.
// Applying it twice gives the same result as applying it once.
func SanitizeFilename(name string) string {
	name = norm.NFC.String(strings.TrimSpace(name))
	name = invalidFilenameChars.ReplaceAllString(name, "_")
	name = filenameSpaceRuns.ReplaceAllString(name, " ")
	name = strings.TrimLeft(name, " ")

	if runes := []rune(name); len(runes) > MaxFilenameRunes {
		name = string(runes[:MaxFilenameRunes])
	}
	name = strings.TrimRight(name, ". ")

	if name == "" {
		return FallbackFilename
	}
	return name
}

// CleanTitle removes engagement counters such as "1.6K views" or
// "39 reactions" that social sites append to video titles.
// An empty title yields placeholder; a title made only of counters is
// returned unchanged.
func CleanTitle(title, placeholder string) string {
	if strings.TrimSpace(title) == "" {
		return placeholder
	}

	cleaned := engagementCounter.ReplaceAllString(title, "")
	cleaned = separatorRuns.ReplaceAllString(cleaned, " $1 ")
	cleaned = whitespaceRuns.ReplaceAllString(cleaned, " ")
	cleaned = strings.Trim(cleaned, " ·|")

	if cleaned == "" {
		return title
	}
	return cleaned
}
