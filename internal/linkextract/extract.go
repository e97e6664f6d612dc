package linkextract

import "regexp"

// linkRe matches Rutube links embedded in arbitrary text. Query parameters
// are kept intact; trailing quote/bracket characters terminate the match.
var linkRe = regexp.MustCompile(`(?i)https?://(?:www\.)?rutube\.ru/[^\s"'>]+`)

// Extract returns every Rutube link found in text, deduplicated while
// preserving first-seen order.
func Extract(text string) []string {
	matches := linkRe.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	links := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		links = append(links, m)
	}
	return links
}

// ExtractLines runs Extract over each line and concatenates the results,
// deduplicating across lines. Useful for batch input where links arrive one
// per line mixed with other text.
func ExtractLines(lines []string) []string {
	seen := make(map[string]struct{})
	var links []string
	for _, line := range lines {
		for _, m := range Extract(line) {
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			links = append(links, m)
		}
	}
	return links
}
