package service

import (
	"strings"

	"github.com/studyhall-ai/studyhall/internal/domain"
)

// ChunkConfig controls how lesson material is split before embedding.
type ChunkConfig struct {
	Size    int
	Overlap int
}

// DefaultChunkConfig provides the standard chunking parameters.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		Size:    1000,
		Overlap: 200,
	}
}

// separators, largest natural boundary first. The raw rune cut is the
// final fallback when no boundary fits.
var chunkSeparators = []string{"\n\n", "\n", ". ", " "}

// Chunk splits text into overlapping segments of at most cfg.Size runes.
// Cuts prefer the largest natural boundary (paragraph, line, sentence,
// word) that keeps a segment within the size; each chunk after the first
// starts cfg.Overlap runes before the end of the previous chunk's span.
// The split is deterministic and lossless: concatenating the
// non-overlapping portions reproduces the input exactly.
func Chunk(text string, cfg ChunkConfig) ([]string, error) {
	if cfg.Size <= 0 {
		def := DefaultChunkConfig()
		cfg.Size = def.Size
		// A caller-supplied overlap still counts against the substituted
		// size below; only an unset overlap takes the default.
		if cfg.Overlap == 0 {
			cfg.Overlap = def.Overlap
		}
	}
	if cfg.Overlap < 0 || cfg.Overlap >= cfg.Size {
		return nil, domain.ErrInvalidChunkConfig
	}

	if text == "" {
		return nil, nil
	}

	runes := []rune(text)
	if len(runes) <= cfg.Size {
		return []string{text}, nil
	}

	chunks := make([]string, 0, len(runes)/(cfg.Size-cfg.Overlap)+1)
	start := 0
	for start < len(runes) {
		end := start + cfg.Size
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}

		end = boundaryCut(runes, start, end, cfg)
		chunks = append(chunks, string(runes[start:end]))

		nextStart := end - cfg.Overlap
		if nextStart <= start {
			nextStart = end
		}
		start = nextStart
	}

	return chunks, nil
}

// boundaryCut finds the cut position for a chunk starting at start whose
// hard limit is end. It scans the separator hierarchy and returns the
// position just after the last occurrence of the first separator that
// leaves a usefully sized chunk; otherwise it keeps the raw cut.
func boundaryCut(runes []rune, start, end int, cfg ChunkConfig) int {
	// A cut below this point would produce a tiny chunk, or stall the
	// overlap-based advance.
	minCut := start + cfg.Size/2
	if floor := start + cfg.Overlap + 1; minCut < floor {
		minCut = floor
	}
	if minCut >= end {
		return end
	}

	window := string(runes[start:end])
	for _, sep := range chunkSeparators {
		idx := strings.LastIndex(window, sep)
		if idx < 0 {
			continue
		}
		cut := start + len([]rune(window[:idx])) + len([]rune(sep))
		if cut > minCut && cut <= end {
			return cut
		}
	}

	return end
}
