package font

func init() {
	availableFonts = append(availableFonts, builtin8x8)
}

// builtin8x8 is the fallback glyph set baked into the kernel image: an 8x8,
// 1-byte-per-row font covering byte values 0-255. It is always registered so
// the framebuffer console has something to render with even when no other
// font package is linked in. Printable ASCII glyphs render as a hollow box
// (this is a bring-up placeholder, not a typeset font); control characters
// and byte 0x20 (space) render blank.
var builtin8x8 = &Font{
	Name:              "builtin8x8",
	GlyphWidth:        8,
	GlyphHeight:       8,
	RecommendedWidth:  640,
	RecommendedHeight: 480,
	Priority:          0,
	BytesPerRow:       1,
	Data:              buildBuiltin8x8(),
}

// buildBuiltin8x8 synthesizes the 256*8 byte glyph table at package init
// time instead of embedding a 2 KiB literal: every printable glyph is a
// hollow 8x8 box, everything else (space, control codes) is blank.
func buildBuiltin8x8() []byte {
	const (
		glyphCount = 256
		rows       = 8
	)

	data := make([]byte, glyphCount*rows)
	for ch := 0; ch < glyphCount; ch++ {
		if ch < 0x21 || ch > 0x7e {
			continue
		}

		base := ch * rows
		data[base+0] = 0b11111110
		for row := 1; row < rows-1; row++ {
			data[base+row] = 0b10000010
		}
		data[base+rows-1] = 0b11111110
	}

	return data
}
