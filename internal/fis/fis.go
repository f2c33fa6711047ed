// Package fis encodes text for the instrument cluster's two 8-character
// display lines. The cluster uses its own character ROM, so text is
// transcoded byte by byte before transmission.
package fis

import (
	"github.com/rnse-control/canbridge/internal/frame"
)

// LineWidth is the fixed character width of one display line.
const LineWidth = 8

// charmap translates Latin-1 code points that have no identity encoding
// in the cluster ROM. Lowercase a..p live at 0x01..0x10.
var charmap = map[rune]byte{
	'ä': 0x91,
	'ö': 0x97,
	'ü': 0x99,
	'Ä': 0x5F,
	'Ö': 0x60,
	'Ü': 0x61,
	'ß': 0x8D,
	'°': 0xBB,
	'§': 0xBF,
	'©': 0xA2,
	'±': 0xB4,
	'µ': 0xB8,
	'¹': 0xB1,
	'º': 0xBB,
}

// encodeRune maps one rune to its ROM byte. Unmappable characters
// become a space; non-Latin-1 characters a question mark.
func encodeRune(r rune) byte {
	if b, ok := charmap[r]; ok {
		return b
	}
	switch {
	case r > 0xFF:
		return '?'
	case r >= 0x20 && r <= 0x5F:
		// Digits, uppercase and common punctuation encode as ASCII.
		return byte(r)
	case r >= 'a' && r <= 'p':
		return byte(r) - 0x60
	case r >= 'q' && r <= 'z':
		// The ROM has no glyphs past p; fall back to uppercase.
		return byte(r) - 0x20
	}
	return ' '
}

// EncodeLine produces the 8-byte payload for one display line. Longer
// text is truncated at the line width; shorter text is centered.
func EncodeLine(text string) [LineWidth]byte {
	runes := []rune(text)
	if len(runes) > LineWidth {
		runes = runes[:LineWidth]
	}
	var out [LineWidth]byte
	for i := range out {
		out[i] = ' '
	}
	pad := (LineWidth - len(runes)) / 2
	for i, r := range runes {
		out[pad+i] = encodeRune(r)
	}
	return out
}

// LineFrames builds the two display frames for the configured lines.
func LineFrames(ids frame.IDMap, line1, line2 string) []frame.Frame {
	p1 := EncodeLine(line1)
	p2 := EncodeLine(line2)
	return []frame.Frame{
		frame.MustNew(ids.FISLine1, p1[:]),
		frame.MustNew(ids.FISLine2, p2[:]),
	}
}
