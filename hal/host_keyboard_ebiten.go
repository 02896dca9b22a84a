//go:build !ps2 && cgo

package hal

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

type ebitenScanCode struct {
	key  ebiten.Key
	code uint8
}

// ebitenScanCodes maps window keys to the usage IDs the console's USB
// keyboard would report for them. Modifiers come first so a shift pressed
// in the same frame as a letter is already down when the letter arrives.
var ebitenScanCodes = func() []ebitenScanCode {
	m := []ebitenScanCode{
		{ebiten.KeyShiftLeft, ScanLeftShift},
		{ebiten.KeyShiftRight, ScanRightShift},
		{ebiten.KeyControlLeft, ScanLeftCtrl},
		{ebiten.KeyControlRight, ScanRightCtrl},
		{ebiten.KeyAltLeft, ScanLeftAlt},
	}
	for i := 0; i < 26; i++ {
		m = append(m, ebitenScanCode{ebiten.KeyA + ebiten.Key(i), ScanA + uint8(i)})
	}
	for i := 0; i < 9; i++ {
		m = append(m, ebitenScanCode{ebiten.KeyDigit1 + ebiten.Key(i), Scan1 + uint8(i)})
	}
	return append(m,
		ebitenScanCode{ebiten.KeyDigit0, Scan0},
		ebitenScanCode{ebiten.KeyEnter, ScanEnter},
		ebitenScanCode{ebiten.KeyEscape, ScanEscape},
		ebitenScanCode{ebiten.KeyBackspace, ScanBackspace},
		ebitenScanCode{ebiten.KeyTab, ScanTab},
		ebitenScanCode{ebiten.KeySpace, ScanSpace},
		ebitenScanCode{ebiten.KeyMinus, ScanMinus},
		ebitenScanCode{ebiten.KeyEqual, ScanEqual},
		ebitenScanCode{ebiten.KeyComma, ScanComma},
		ebitenScanCode{ebiten.KeyPeriod, ScanPeriod},
		ebitenScanCode{ebiten.KeySlash, ScanSlash},
		ebitenScanCode{ebiten.KeyArrowRight, ScanRight},
		ebitenScanCode{ebiten.KeyArrowLeft, ScanLeft},
		ebitenScanCode{ebiten.KeyArrowDown, ScanDown},
		ebitenScanCode{ebiten.KeyArrowUp, ScanUp},
	)
}()

// pollWindowKeys forwards this frame's key transitions to the driver.
func (k *hostKeyboard) pollWindowKeys() {
	for _, m := range ebitenScanCodes {
		if inpututil.IsKeyJustPressed(m.key) {
			k.inject(RawKey{Code: m.code, State: RawKeyDown})
		}
	}
	// Releases after presses so a tap within one frame still reads as down.
	for _, m := range ebitenScanCodes {
		if inpututil.IsKeyJustReleased(m.key) {
			k.inject(RawKey{Code: m.code, State: RawKeyUp})
		}
	}
}
