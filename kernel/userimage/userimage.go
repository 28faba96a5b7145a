// Package userimage embeds the user ELF64 binary kmain loads into ring 3.
// payload.bin is populated by `embedimg install`, which validates the
// candidate binary before it lands here — this package only ever sees
// something that has already passed that check.
package userimage

import _ "embed"

//go:embed payload.bin
var Payload []byte
