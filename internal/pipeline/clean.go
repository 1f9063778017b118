package pipeline

import (
	"regexp"
	"strings"
)

var signaturePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)\n--\s*\n.*`),
	regexp.MustCompile(`(?is)best regards,.*`),
	regexp.MustCompile(`(?is)kind regards,.*`),
	regexp.MustCompile(`(?is)sincerely,.*`),
	regexp.MustCompile(`(?is)thank you,.*`),
	regexp.MustCompile(`(?is)\bregards,.*`),
}

// cleanContent strips quoted replies and signature blocks so the
// extraction heuristics only see the inquiry itself.
func cleanContent(content string) string {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, ">") || strings.HasPrefix(trimmed, "|") {
			continue
		}
		kept = append(kept, line)
	}

	out := strings.Join(kept, "\n")
	for _, re := range signaturePatterns {
		out = re.ReplaceAllString(out, "")
	}
	return strings.TrimSpace(out)
}
