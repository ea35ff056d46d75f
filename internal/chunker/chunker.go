// Package chunker splits extracted document text into bounded, overlapping
// segments suitable for embedding. Splitting prefers natural boundaries
// (paragraph breaks first, then line breaks, sentence ends, and words),
// falling back to a hard character split only when a single token is longer
// than the configured maximum.
package chunker

import (
	"strings"
)

// Default splitting parameters, matching the embedding model's effective
// context window for a single passage.
const (
	// DefaultChunkSize is the maximum number of characters per chunk.
	DefaultChunkSize = 512

	// DefaultChunkOverlap is the number of trailing characters of one chunk
	// repeated at the start of the next, preserving context across boundaries.
	DefaultChunkOverlap = 20
)

// defaultSeparators is the boundary hierarchy tried in order when a piece of
// text exceeds the chunk size. The empty string terminates the hierarchy and
// means "split between runes".
var defaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Splitter splits text into overlapping chunks. The zero value is not usable;
// construct with New. A Splitter is immutable after construction and safe for
// concurrent use.
type Splitter struct {
	// chunkSize is the maximum chunk length in characters.
	chunkSize int

	// overlap is the character overlap between consecutive chunks.
	overlap int

	// separators is the boundary hierarchy, coarsest first.
	separators []string
}

// Option configures a Splitter.
type Option func(*Splitter)

// WithChunkSize overrides the maximum chunk size in characters.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap overrides the overlap between consecutive chunks in characters.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// New constructs a Splitter with the given options. An overlap that equals or
// exceeds the chunk size is clamped to a quarter of the chunk size so the
// split loop always advances.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		chunkSize:  DefaultChunkSize,
		overlap:    DefaultChunkOverlap,
		separators: defaultSeparators,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.overlap >= s.chunkSize {
		s.overlap = s.chunkSize / 4
	}
	return s
}

// Split divides text into chunks of at most the configured size, with the
// configured overlap between neighbours. Splitting is deterministic: the same
// input always yields the same chunk sequence. Empty or whitespace-only input
// yields nil.
func (s *Splitter) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= s.chunkSize {
		return []string{text}
	}

	pieces := s.splitRecursive(text, s.separators)
	return s.merge(pieces)
}

// splitRecursive breaks text into pieces no longer than chunkSize, trying
// each separator in order. Pieces keep their trailing separator so that the
// reassembled chunks read naturally.
func (s *Splitter) splitRecursive(text string, separators []string) []string {
	if len(text) <= s.chunkSize {
		return []string{text}
	}

	sep := ""
	rest := separators
	for i, candidate := range separators {
		if candidate == "" || strings.Contains(text, candidate) {
			sep = candidate
			rest = separators[i+1:]
			break
		}
	}

	if sep == "" {
		return s.hardSplit(text)
	}

	var out []string
	parts := strings.SplitAfter(text, sep)
	for _, part := range parts {
		if part == "" {
			continue
		}
		if len(part) <= s.chunkSize {
			out = append(out, part)
			continue
		}
		out = append(out, s.splitRecursive(part, rest)...)
	}
	return out
}

// hardSplit cuts text into chunkSize-byte windows on rune boundaries. This is
// the last resort for a single atomic token longer than the chunk size; a
// multi-byte rune straddling the boundary extends the window by at most three
// bytes rather than being cut in half.
func (s *Splitter) hardSplit(text string) []string {
	var out []string
	runes := []rune(text)
	start := 0
	for start < len(runes) {
		end := start
		size := 0
		for end < len(runes) {
			r := len(string(runes[end]))
			if size+r > s.chunkSize && size > 0 {
				break
			}
			size += r
			end++
		}
		out = append(out, string(runes[start:end]))
		start = end
	}
	return out
}

// merge greedily packs pieces into chunks of at most chunkSize characters.
// Each emitted chunk donates its last overlap characters as the start of the
// next chunk, unless prepending them would push that chunk over the size
// bound. The bound always wins over the overlap.
func (s *Splitter) merge(pieces []string) []string {
	var chunks []string
	cur := ""   // text accumulated for the chunk being built
	carry := "" // overlap carried from the previously emitted chunk

	emit := func() {
		chunk := strings.TrimSpace(cur)
		if chunk != "" {
			chunks = append(chunks, chunk)
			carry = overlapTail(chunk, s.overlap)
		}
		cur = ""
	}

	for _, piece := range pieces {
		if cur != "" && len(cur)+len(piece) > s.chunkSize {
			emit()
		}
		if cur == "" && carry != "" && len(carry)+len(piece) <= s.chunkSize {
			cur = carry
		}
		cur += piece
	}
	emit()
	return chunks
}

// overlapTail returns the last n bytes of chunk, snapped backwards to a rune
// boundary and forward to avoid starting mid-word where possible.
func overlapTail(chunk string, n int) string {
	if len(chunk) <= n {
		return chunk
	}
	tail := chunk[len(chunk)-n:]
	// Snap to a rune boundary.
	for len(tail) > 0 && !utf8RuneStart(tail[0]) {
		tail = tail[1:]
	}
	return tail
}

// utf8RuneStart reports whether b can be the first byte of a UTF-8 rune.
func utf8RuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
