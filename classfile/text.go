package classfile

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// decodeName converts a constant pool literal in storage form into a
// dot-form name. Pure 7-bit literals are copied byte by byte; anything
// else goes through the modified UTF-8 decoder.
func decodeName(raw []byte) string {
	var b strings.Builder
	b.Grow(len(raw))
	for i, c := range raw {
		if c >= utf8.RuneSelf {
			return decodeModifiedUTF8(raw, i, &b)
		}
		if c == '/' {
			c = '.'
		}
		b.WriteByte(c)
	}
	return b.String()
}

// decodeModifiedUTF8 continues decoding raw from offset i into b, which
// already holds the converted ASCII prefix. Class files encode NUL as
// C0 80 and supplementary characters as surrogate pairs of three-byte
// sequences. Malformed sequences decode to U+FFFD; this is not a verifier.
func decodeModifiedUTF8(raw []byte, i int, b *strings.Builder) string {
	var pending rune = -1 // high surrogate awaiting its pair

	flush := func() {
		if pending >= 0 {
			b.WriteRune(utf8.RuneError)
			pending = -1
		}
	}

	for i < len(raw) {
		c := raw[i]
		var r rune
		switch {
		case c < 0x80:
			r = rune(c)
			i++
		case c&0xE0 == 0xC0 && i+1 < len(raw) && raw[i+1]&0xC0 == 0x80:
			r = rune(c&0x1F)<<6 | rune(raw[i+1]&0x3F)
			i += 2
		case c&0xF0 == 0xE0 && i+2 < len(raw) && raw[i+1]&0xC0 == 0x80 && raw[i+2]&0xC0 == 0x80:
			r = rune(c&0x0F)<<12 | rune(raw[i+1]&0x3F)<<6 | rune(raw[i+2]&0x3F)
			i += 3
		default:
			r = utf8.RuneError
			i++
		}

		if utf16.IsSurrogate(r) {
			if r < 0xDC00 {
				flush()
				pending = r
				continue
			}
			if pending >= 0 {
				b.WriteRune(utf16.DecodeRune(pending, r))
				pending = -1
				continue
			}
			b.WriteRune(utf8.RuneError)
			continue
		}

		flush()
		if r == '/' {
			r = '.'
		}
		b.WriteRune(r)
	}
	flush()
	return b.String()
}
