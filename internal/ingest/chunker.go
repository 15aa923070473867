package ingest

import "strings"

// Default sliding-window parameters, in words. Adjacent chunks overlap by
// DefaultWindow - DefaultStep words.
const (
	DefaultWindow = 1200
	DefaultStep   = 600
)

// Chunks splits text into overlapping fixed-size chunks using a sliding
// window measured in words. Texts no longer than the window are returned
// as a single chunk. Window and step values below 1 fall back to the
// defaults.
func Chunks(text string, window, step int) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if window < 1 {
		window = DefaultWindow
	}
	if step < 1 {
		step = DefaultStep
	}

	words := strings.Fields(text)
	if len(words) <= window {
		return []string{text}
	}

	var chunks []string
	for i := 0; i+window <= len(words); i += step {
		chunks = append(chunks, strings.Join(words[i:i+window], " "))
	}

	return chunks
}

// Title extracts a short title from the start of a text using a few
// heuristics: a markdown heading, a line mentioning a common section or
// clinical keyword, or the first substantial line as a fallback.
func Title(text string) string {
	if strings.TrimSpace(text) == "" {
		return "Unknown Topic"
	}

	lines := strings.Split(text, "\n")
	if len(lines) > 10 {
		lines = lines[:10]
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") {
			return strings.TrimSpace(strings.TrimLeft(line, "#"))
		}
	}

	keywords := []string{"chapter", "section", "topic", "disease", "syndrome", "treatment", "diagnosis"}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if len(line) <= 10 || len(line) >= 100 {
			continue
		}
		lower := strings.ToLower(line)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				return line
			}
		}
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if len(line) > 20 && len(line) < 150 {
			return line
		}
	}

	return "Medical Topic"
}
