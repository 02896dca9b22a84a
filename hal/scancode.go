package hal

// USB HID keyboard usage IDs reported in RawKey.Code.
const (
	ScanA          uint8 = 4
	ScanZ          uint8 = 29
	Scan1          uint8 = 30
	Scan9          uint8 = 38
	Scan0          uint8 = 39
	ScanEnter      uint8 = 40
	ScanEscape     uint8 = 41
	ScanBackspace  uint8 = 42
	ScanTab        uint8 = 43
	ScanSpace      uint8 = 44
	ScanMinus      uint8 = 45
	ScanEqual      uint8 = 46
	ScanComma      uint8 = 54
	ScanPeriod     uint8 = 55
	ScanSlash      uint8 = 56
	ScanRight      uint8 = 79
	ScanLeft       uint8 = 80
	ScanDown       uint8 = 81
	ScanUp         uint8 = 82
	ScanLeftCtrl   uint8 = 224
	ScanLeftShift  uint8 = 225
	ScanLeftAlt    uint8 = 226
	ScanRightCtrl  uint8 = 228
	ScanRightShift uint8 = 229
)

// shiftedDigits holds the US layout symbols above the digit row, indexed
// from '1' through '0'.
const shiftedDigits = "!@#$%^&*()"

// ScanCodeForRune returns the usage ID that types r on a US keyboard and
// whether shift must be held. ok is false for runes with no key.
func ScanCodeForRune(r rune) (code uint8, shift bool, ok bool) {
	switch {
	case r >= 'a' && r <= 'z':
		return ScanA + uint8(r-'a'), false, true
	case r >= 'A' && r <= 'Z':
		return ScanA + uint8(r-'A'), true, true
	case r >= '1' && r <= '9':
		return Scan1 + uint8(r-'1'), false, true
	case r == '0':
		return Scan0, false, true
	}
	for i := 0; i < len(shiftedDigits); i++ {
		if rune(shiftedDigits[i]) == r {
			return Scan1 + uint8(i), true, true
		}
	}
	switch r {
	case '\r', '\n':
		return ScanEnter, false, true
	case 0x1b:
		return ScanEscape, false, true
	case 0x7f, 0x08:
		return ScanBackspace, false, true
	case '\t':
		return ScanTab, false, true
	case ' ':
		return ScanSpace, false, true
	case '-':
		return ScanMinus, false, true
	case '=':
		return ScanEqual, false, true
	case ',':
		return ScanComma, false, true
	case '.':
		return ScanPeriod, false, true
	case '/':
		return ScanSlash, false, true
	}
	return 0, false, false
}

// TypeRune expands r into the raw events a keyboard reports for one
// keystroke, wrapping it in left-shift down/up when needed.
func TypeRune(r rune) []RawKey {
	code, shift, ok := ScanCodeForRune(r)
	if !ok {
		return nil
	}
	return Stroke(code, shift)
}

// Stroke returns the down/up events for one key, optionally under shift.
func Stroke(code uint8, shift bool) []RawKey {
	evs := make([]RawKey, 0, 4)
	if shift {
		evs = append(evs, RawKey{Code: ScanLeftShift, State: RawKeyDown})
	}
	evs = append(evs,
		RawKey{Code: code, State: RawKeyDown},
		RawKey{Code: code, State: RawKeyUp},
	)
	if shift {
		evs = append(evs, RawKey{Code: ScanLeftShift, State: RawKeyUp})
	}
	return evs
}
