package hal

// State bytes the native keyboard driver puts in a raw key record
// (PS2KBD_RAWKEY_UP / PS2KBD_RAWKEY_DOWN).
const (
	sdkRawKeyUp   = 0xF0
	sdkRawKeyDown = 0xF1
)

// rawKeyState maps a driver state byte to RawKeyState. Anything but the
// down marker reads as a release.
func rawKeyState(s uint8) RawKeyState {
	if s == sdkRawKeyDown {
		return RawKeyDown
	}
	return RawKeyUp
}
