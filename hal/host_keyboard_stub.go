//go:build !ps2 && !cgo

package hal

func (k *hostKeyboard) pollWindowKeys() {
	// No window keyboard without the window backend.
}
