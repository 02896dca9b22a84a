package input

// KeyCode is a portable key identifier. Values follow the framework's key
// enumeration: printable keys use their ASCII code.
type KeyCode int

const (
	KeyNull       KeyCode = 0
	KeySpace      KeyCode = 32
	KeyZero       KeyCode = 48
	KeyOne        KeyCode = 49
	KeyNine       KeyCode = 57
	KeyA          KeyCode = 65
	KeyZ          KeyCode = 90
	KeyEscape     KeyCode = 256
	KeyEnter      KeyCode = 257
	KeyBackspace  KeyCode = 259
	KeyRight      KeyCode = 262
	KeyLeft       KeyCode = 263
	KeyDown       KeyCode = 264
	KeyUp         KeyCode = 265
	KeyLeftShift  KeyCode = 340
	KeyRightShift KeyCode = 344
)

// MaxKeys bounds every valid KeyCode.
const MaxKeys = 512

// Valid reports whether k indexes the key state arrays.
func (k KeyCode) Valid() bool { return k > KeyNull && k < MaxKeys }

// Raw USB HID usage IDs the translation table covers.
const (
	scanA          = 4
	scanZ          = 29
	scan1          = 30
	scan9          = 38
	scan0          = 39
	scanEnter      = 40
	scanBackspace  = 42
	scanSpace      = 44
	scanRight      = 79
	scanLeft       = 80
	scanDown       = 81
	scanUp         = 82
	scanLeftShift  = 225
	scanRightShift = 229
)

// Translate maps a raw scan code to a portable key code. char reports
// whether the key produces a character. ok is false for codes outside the
// table; k is then KeyNull and must not be used.
func Translate(code uint8) (k KeyCode, char bool, ok bool) {
	switch {
	case code >= scanA && code <= scanZ:
		return KeyCode(code) + 61, true, true
	case code >= scan1 && code <= scan9:
		return KeyCode(code) + 19, true, true
	case code == scan0:
		return KeyZero, true, true
	}
	switch code {
	case scanEnter:
		return KeyEnter, false, true
	case scanBackspace:
		return KeyBackspace, false, true
	case scanSpace:
		return KeySpace, true, true
	case scanRight:
		return KeyRight, false, true
	case scanLeft:
		return KeyLeft, false, true
	case scanDown:
		return KeyDown, false, true
	case scanUp:
		return KeyUp, false, true
	case scanLeftShift:
		return KeyLeftShift, false, true
	case scanRightShift:
		return KeyRightShift, false, true
	}
	return KeyNull, false, false
}

const (
	lowercaseOffset = 32
	symbolOffset    = 16
)

// charFor derives the character a key produces under the current shift
// state: letters are lowered without shift, digits become the symbols
// sharing their code page slot with shift.
func charFor(k KeyCode, shift bool) rune {
	c := rune(k)
	switch {
	case !shift && k >= KeyA && k <= KeyZ:
		c += lowercaseOffset
	case shift && k >= KeyZero && k <= KeyNine:
		c -= symbolOffset
	}
	return c
}
