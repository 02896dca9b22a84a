package hal

// GS pixel storage mode codes used in Buffer.PSM.
const (
	psmCT32  = 0
	psmCT24  = 1
	psmCT16  = 2
	psmCT16S = 10
	psmT8    = 19
	psmZ32   = 48
	psmZ24   = 49
	psmZ16   = 50
	psmZ16S  = 58
)

// PageBytes is the size of one video memory page.
const PageBytes = 8192

// bytesPerPixel returns the storage size of a pixel in video memory, or 0
// for modes the host GS cannot address linearly.
func bytesPerPixel(psm uint8) int {
	switch psm {
	case psmCT32, psmCT24, psmZ32, psmZ24:
		return 4
	case psmCT16, psmCT16S, psmZ16, psmZ16S:
		return 2
	case psmT8:
		return 1
	default:
		return 0
	}
}

// rgb5551 packs a colour the way PSMCT16 stores it: a1 b5 g5 r5.
func rgb5551(r, g, b, a uint8) uint16 {
	rr := uint16(r>>3) & 0x1F
	gg := uint16(g>>3) & 0x1F
	bb := uint16(b>>3) & 0x1F
	var aa uint16
	if a >= 0x80 {
		aa = 1
	}
	return aa<<15 | bb<<10 | gg<<5 | rr
}

func rgb888From5551(p uint16) (r, g, b uint8) {
	rr := p & 0x1F
	gg := (p >> 5) & 0x1F
	bb := (p >> 10) & 0x1F

	r = uint8((rr * 255) / 31)
	g = uint8((gg * 255) / 31)
	b = uint8((bb * 255) / 31)
	return r, g, b
}

// storePixel writes one RGBA pixel at dst in the given mode.
func storePixel(dst []byte, psm uint8, r, g, b, a uint8) {
	switch bytesPerPixel(psm) {
	case 4:
		dst[0], dst[1], dst[2] = r, g, b
		if psm == psmCT24 {
			// The top byte of a 24-bit pixel is not stored.
			dst[3] = 0
		} else {
			dst[3] = a
		}
	case 2:
		p := rgb5551(r, g, b, a)
		dst[0] = byte(p)
		dst[1] = byte(p >> 8)
	case 1:
		dst[0] = uint8((uint16(r) + uint16(g) + uint16(b)) / 3)
	}
}

// loadPixel reads one pixel at src as opaque RGB.
func loadPixel(src []byte, psm uint8) (r, g, b uint8) {
	switch bytesPerPixel(psm) {
	case 4:
		return src[0], src[1], src[2]
	case 2:
		return rgb888From5551(uint16(src[0]) | uint16(src[1])<<8)
	case 1:
		return src[0], src[0], src[0]
	}
	return 0, 0, 0
}
