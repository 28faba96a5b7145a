package console

// TextConsole layers a cursor and scroll-on-overflow policy over a Device,
// turning the cell-addressed glyph writer into something ordinary text
// output (kfmt.Printf, the write/writev syscalls) can treat as a plain
// byte sink.
type TextConsole struct {
	dev        Device
	fg, bg     uint32
	cursorX    uint32
	cursorY    uint32
	cols, rows uint32
}

// NewTextConsole wraps dev with a cursor starting at the top-left, using fg
// as the foreground color and bg as the background/clear color.
func NewTextConsole(dev Device, fg, bg uint32) *TextConsole {
	cols, rows := dev.Dimensions(Characters)
	return &TextConsole{dev: dev, fg: fg, bg: bg, cols: cols, rows: rows}
}

// Write implements io.Writer: every byte either advances the cursor one
// cell, wraps to the next line, or — on '\n' — moves straight to the start
// of the next line, scrolling the console up by one row first if the
// cursor was already on the last one.
func (c *TextConsole) Write(p []byte) (int, error) {
	for _, b := range p {
		if b == '\n' {
			c.newline()
			continue
		}

		c.dev.Write(b, c.fg, c.bg, c.cursorX+1, c.cursorY+1)
		c.cursorX++
		if c.cursorX >= c.cols {
			c.newline()
		}
	}

	return len(p), nil
}

func (c *TextConsole) newline() {
	c.cursorX = 0
	c.cursorY++

	if c.cursorY >= c.rows {
		c.dev.Scroll(ScrollDirUp, 1)
		c.dev.Fill(1, c.rows, c.cols, 1, c.bg)
		c.cursorY = c.rows - 1
	}
}
