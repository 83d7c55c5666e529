package utils

import (
	"strings"
	"testing"
)

func TestSplitText(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		chunkSize  int
		overlap    int
		wantChunks int
	}{
		{
			name:       "empty input",
			text:       "   ",
			chunkSize:  10,
			overlap:    2,
			wantChunks: 0,
		},
		{
			name:       "fits in one chunk",
			text:       "short text",
			chunkSize:  100,
			overlap:    10,
			wantChunks: 1,
		},
		{
			name:       "splits with overlap",
			text:       strings.Repeat("a", 25),
			chunkSize:  10,
			overlap:    5,
			wantChunks: 4, // steps of 5: [0:10] [5:15] [10:20] [15:25]
		},
		{
			name:       "overlap larger than chunk falls back to disjoint",
			text:       strings.Repeat("b", 30),
			chunkSize:  10,
			overlap:    15,
			wantChunks: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := SplitText(tt.text, tt.chunkSize, tt.overlap)
			if len(chunks) != tt.wantChunks {
				t.Errorf("chunk count = %d, want %d", len(chunks), tt.wantChunks)
			}
			for i, c := range chunks {
				if len([]rune(c)) > tt.chunkSize {
					t.Errorf("chunk %d has %d runes, limit %d", i, len([]rune(c)), tt.chunkSize)
				}
			}
		})
	}
}

func TestSplitTextOverlapCarriesContext(t *testing.T) {
	text := "0123456789ABCDEFGHIJ"
	chunks := SplitText(text, 10, 4)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	// The tail of chunk 0 must reappear at the head of chunk 1
	tail := chunks[0][len(chunks[0])-4:]
	if !strings.HasPrefix(chunks[1], tail) {
		t.Errorf("chunk 1 %q does not start with overlap %q", chunks[1], tail)
	}
}

func TestSplitTextMultibyte(t *testing.T) {
	text := strings.Repeat("ü", 15)
	chunks := SplitText(text, 10, 2)

	for i, c := range chunks {
		if !strings.HasPrefix(c, "ü") {
			t.Errorf("chunk %d split mid-character: %q", i, c)
		}
	}
}
