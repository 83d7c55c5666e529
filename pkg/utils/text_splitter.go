package utils

import "strings"

// SplitText cuts text into chunks of at most chunkSize characters, with
// the trailing overlap characters of each chunk repeated at the start
// of the next. Counting is rune-based so multibyte text never splits
// mid-character. Empty input yields no chunks.
func SplitText(text string, chunkSize int, overlap int) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	if len(runes) <= chunkSize {
		return []string{text}
	}

	step := chunkSize - overlap
	if step <= 0 {
		// Degenerate overlap would loop forever; fall back to disjoint chunks
		step = chunkSize
	}

	var chunks []string
	for i := 0; i < len(runes); i += step {
		end := i + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}
