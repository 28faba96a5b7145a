// Package console implements the framebuffer text console described in
// spec §6: a scaled 8x8 glyph writer over a 32-bit pixel buffer handed off
// by the bootloader, plus text layout (cursor, newline, scroll-on-overflow).
package console

import "nyxkernel/kernel/driver/console/font"

// Dimension selects which unit Dimensions() reports in.
type Dimension uint8

// The dimension kinds a console can report.
const (
	Characters Dimension = iota
	Pixels
)

// ScrollDir is the direction text is scrolled when the cursor overflows the
// bottom of the console.
type ScrollDir uint8

// The supported scroll directions.
const (
	ScrollDirUp ScrollDir = iota
	ScrollDirDown
)

// Device is implemented by objects that can serve as the system's pixel
// text console.
type Device interface {
	// Dimensions returns the console size in characters or pixels.
	Dimensions(Dimension) (uint32, uint32)

	// Fill paints the rectangular region [x,y,x+width,y+height) (1-based,
	// in character cells) with the background color bg.
	Fill(x, y, width, height uint32, bg uint32)

	// Scroll shifts the console contents by the given number of text
	// rows in the requested direction; the caller is responsible for
	// clearing the region that scrolled into view.
	Scroll(dir ScrollDir, lines uint32)

	// Write draws ch at the 1-based character cell (x,y) using fg as the
	// foreground color and bg as the background color.
	Write(ch byte, fg, bg uint32, x, y uint32)

	// SetFont selects the glyph bitmap used for subsequent Write calls.
	SetFont(*font.Font)
}
