package console

import (
	"reflect"
	"unsafe"

	"nyxkernel/kernel"
	"nyxkernel/kernel/boot"
	"nyxkernel/kernel/driver/console/font"
	"nyxkernel/kernel/mem"
	"nyxkernel/kernel/mem/vmm"
)

const bytesPerPixel = 4

// FramebufferConsole writes 8x8 (or whatever font is installed) glyphs into
// a 32-bit-pixel framebuffer handed off by the bootloader. Unlike the
// multi-bpp, palette-indexed VESA console it is descended from, it only
// ever deals with one pixel layout: 4 bytes, byte-order given by
// boot.PixelFormat, no palette indirection.
type FramebufferConsole struct {
	fb     []byte
	format boot.PixelFormat

	width  uint32
	height uint32
	stride uint32 // pixels per scanline, not bytes

	font          *font.Font
	widthInChars  uint32
	heightInChars uint32
}

// NewFramebufferConsole maps info.Base into the kernel's virtual address
// space and returns a console ready to have a font installed.
func NewFramebufferConsole(info boot.FramebufferInfo) (*FramebufferConsole, *kernel.Error) {
	size := mem.Size(info.Height * info.Stride * bytesPerPixel)
	virtAddr := uintptr(kernelFramebufferBase)

	if err := vmm.MapPhysicalRegion(virtAddr, info.Base, size, vmm.FlagPresent|vmm.FlagWritable); err != nil {
		return nil, err
	}

	fb := *(*[]byte)(unsafe.Pointer(&reflect.SliceHeader{
		Data: virtAddr,
		Len:  int(size),
		Cap:  int(size),
	}))

	return &FramebufferConsole{
		fb:     fb,
		format: info.Format,
		width:  info.Width,
		height: info.Height,
		stride: info.Stride,
	}, nil
}

// SetFont selects the glyph bitmap used by subsequent Write calls and
// recomputes the console's character-cell dimensions.
func (c *FramebufferConsole) SetFont(f *font.Font) {
	if f == nil {
		return
	}

	c.font = f
	c.widthInChars = c.width / f.GlyphWidth
	c.heightInChars = c.height / f.GlyphHeight
}

// Dimensions returns the console size in characters or pixels.
func (c *FramebufferConsole) Dimensions(dim Dimension) (uint32, uint32) {
	if dim == Characters {
		return c.widthInChars, c.heightInChars
	}
	return c.width, c.height
}

// Fill paints the character-cell rectangle [x,y,x+width,y+height) with bg.
func (c *FramebufferConsole) Fill(x, y, width, height uint32, bg uint32) {
	if c.font == nil {
		return
	}

	if x == 0 {
		x = 1
	} else if x > c.widthInChars {
		x = c.widthInChars
	}
	if y == 0 {
		y = 1
	} else if y > c.heightInChars {
		y = c.heightInChars
	}
	if x+width-1 > c.widthInChars {
		width = c.widthInChars - x + 1
	}
	if y+height-1 > c.heightInChars {
		height = c.heightInChars - y + 1
	}

	pX := (x - 1) * c.font.GlyphWidth
	pY := (y - 1) * c.font.GlyphHeight
	pW := width * c.font.GlyphWidth
	pH := height * c.font.GlyphHeight
	packed := c.packColor(bg)

	for row := uint32(0); row < pH; row++ {
		base := c.pixelOffset(pX, pY+row)
		for col := uint32(0); col < pW; col++ {
			c.putPixel(base+col*bytesPerPixel, packed)
		}
	}
}

// Scroll shifts the console contents by lines text rows in the given
// direction. The caller clears the region that scrolled into view.
func (c *FramebufferConsole) Scroll(dir ScrollDir, lines uint32) {
	if c.font == nil || lines == 0 || lines > c.heightInChars {
		return
	}

	rowBytes := uint32(len(c.fb)) / c.height
	shiftRows := lines * c.font.GlyphHeight
	shiftBytes := shiftRows * rowBytes

	switch dir {
	case ScrollDirUp:
		copy(c.fb[:uint32(len(c.fb))-shiftBytes], c.fb[shiftBytes:])
	case ScrollDirDown:
		copy(c.fb[shiftBytes:], c.fb[:uint32(len(c.fb))-shiftBytes])
	}
}

// Write draws ch at the 1-based character cell (x,y).
func (c *FramebufferConsole) Write(ch byte, fg, bg uint32, x, y uint32) {
	if c.font == nil || x < 1 || x > c.widthInChars || y < 1 || y > c.heightInChars {
		return
	}

	pX := (x - 1) * c.font.GlyphWidth
	pY := (y - 1) * c.font.GlyphHeight

	fontOffset := uint32(ch) * c.font.BytesPerRow * c.font.GlyphHeight
	fgPacked := c.packColor(fg)
	bgPacked := c.packColor(bg)

	for row := uint32(0); row < c.font.GlyphHeight; row++ {
		rowBase := c.pixelOffset(pX, pY+row)
		mask := uint8(1 << 7)
		rowData := c.font.Data[fontOffset]

		for col := uint32(0); col < c.font.GlyphWidth; col++ {
			if mask == 0 {
				fontOffset++
				rowData = c.font.Data[fontOffset]
				mask = 1 << 7
			}

			packed := bgPacked
			if rowData&mask != 0 {
				packed = fgPacked
			}
			c.putPixel(rowBase+col*bytesPerPixel, packed)

			mask >>= 1
		}

		fontOffset++
	}
}

// pixelOffset returns the byte offset of pixel (x,y) in the framebuffer.
func (c *FramebufferConsole) pixelOffset(x, y uint32) uint32 {
	return (y*c.stride + x) * bytesPerPixel
}

// putPixel writes the 4 packed bytes of a pixel at the given byte offset.
func (c *FramebufferConsole) putPixel(byteOffset uint32, packed [4]byte) {
	c.fb[byteOffset+0] = packed[0]
	c.fb[byteOffset+1] = packed[1]
	c.fb[byteOffset+2] = packed[2]
	c.fb[byteOffset+3] = packed[3]
}

// packColor converts a logical 0xRRGGBB color into this framebuffer's
// native byte order.
func (c *FramebufferConsole) packColor(rgb uint32) [4]byte {
	r := uint8(rgb >> 16)
	g := uint8(rgb >> 8)
	b := uint8(rgb)

	switch c.format {
	case boot.PixelFormatBGR:
		return [4]byte{b, g, r, 0}
	case boot.PixelFormatU8:
		gray := uint8((uint32(r) + uint32(g) + uint32(b)) / 3)
		return [4]byte{gray, 0, 0, 0}
	default: // boot.PixelFormatRGB
		return [4]byte{r, g, b, 0}
	}
}
