package console

import (
	"testing"

	"nyxkernel/kernel/boot"
)

func TestTextConsoleWriteAdvancesCursor(t *testing.T) {
	dev := newTestConsole(80, 40, boot.PixelFormatRGB)
	dev.SetFont(testFont)
	tc := NewTextConsole(dev, 0xFFFFFF, 0)

	n, err := tc.Write([]byte("hi"))
	if err != nil || n != 2 {
		t.Fatalf("Write: n=%d err=%v", n, err)
	}
	if tc.cursorX != 2 || tc.cursorY != 0 {
		t.Fatalf("expected cursor at (2,0); got (%d,%d)", tc.cursorX, tc.cursorY)
	}
}

func TestTextConsoleNewlineResetsColumn(t *testing.T) {
	dev := newTestConsole(80, 40, boot.PixelFormatRGB)
	dev.SetFont(testFont)
	tc := NewTextConsole(dev, 0xFFFFFF, 0)

	tc.Write([]byte("ab\ncd"))
	if tc.cursorX != 2 || tc.cursorY != 1 {
		t.Fatalf("expected cursor at (2,1); got (%d,%d)", tc.cursorX, tc.cursorY)
	}
}

func TestTextConsoleWrapsAtLineEnd(t *testing.T) {
	dev := newTestConsole(8, 40, boot.PixelFormatRGB) // 1 char wide
	dev.SetFont(testFont)
	tc := NewTextConsole(dev, 0xFFFFFF, 0)

	tc.Write([]byte("ab"))
	if tc.cursorX != 0 || tc.cursorY != 2 {
		t.Fatalf("expected wrap to (0,2); got (%d,%d)", tc.cursorX, tc.cursorY)
	}
}

func TestTextConsoleScrollsAtBottom(t *testing.T) {
	dev := newTestConsole(80, 8, boot.PixelFormatRGB) // 1 char tall
	dev.SetFont(testFont)
	tc := NewTextConsole(dev, 0xFFFFFF, 0)

	tc.Write([]byte("a\nb\nc"))
	if tc.cursorY != tc.rows-1 {
		t.Fatalf("expected cursor pinned at last row %d; got %d", tc.rows-1, tc.cursorY)
	}
}
