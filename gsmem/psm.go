package gsmem

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// PSM is a GS pixel storage mode.
type PSM uint8

const (
	PSMCT32  PSM = 0
	PSMCT24  PSM = 1
	PSMCT16  PSM = 2
	PSMCT16S PSM = 10
	PSMT8    PSM = 19
	PSMT4    PSM = 20
	PSMT8H   PSM = 27
	PSMT4HL  PSM = 36
	PSMT4HH  PSM = 44
	PSMZ32   PSM = 48
	PSMZ24   PSM = 49
	PSMZ16   PSM = 50
	PSMZ16S  PSM = 58
)

var psmNames = map[PSM]string{
	PSMCT32:  "PSM32",
	PSMCT24:  "PSM24",
	PSMCT16:  "PSM16",
	PSMCT16S: "PSM16S",
	PSMT8:    "PSM8",
	PSMT4:    "PSM4",
	PSMT8H:   "PSM8H",
	PSMT4HL:  "PSM4HL",
	PSMT4HH:  "PSM4HH",
	PSMZ32:   "PSMZ32",
	PSMZ24:   "PSMZ24",
	PSMZ16:   "PSMZ16",
	PSMZ16S:  "PSMZ16S",
}

func (p PSM) String() string {
	if s, ok := psmNames[p]; ok {
		return s
	}
	return fmt.Sprintf("PSM(%d)", uint8(p))
}

// Valid reports whether p is a mode the GS knows.
func (p PSM) Valid() bool {
	_, ok := psmNames[p]
	return ok
}

// IsDepth reports whether p is a Z buffer format.
func (p PSM) IsDepth() bool {
	return p >= PSMZ32
}

// Bits is the colour or depth precision of one pixel.
func (p PSM) Bits() int {
	switch p {
	case PSMCT32, PSMZ32:
		return 32
	case PSMCT24, PSMZ24:
		return 24
	case PSMCT16, PSMCT16S, PSMZ16, PSMZ16S:
		return 16
	case PSMT8, PSMT8H:
		return 8
	case PSMT4, PSMT4HL, PSMT4HH:
		return 4
	}
	return 0
}

// StorageBits is the video memory one pixel occupies. 24-bit modes and the
// high-bit palette modes live inside 32-bit words.
func (p PSM) StorageBits() int {
	switch p {
	case PSMCT24, PSMZ24, PSMT8H, PSMT4HL, PSMT4HH:
		return 32
	}
	return p.Bits()
}

// ParsePSM accepts a mode name with or without the "PSM" prefix.
func ParsePSM(s string) (PSM, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if !strings.HasPrefix(name, "PSM") {
		name = "PSM" + name
	}
	for p, n := range psmNames {
		if n == name {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown pixel storage mode %q", s)
}

func (p *PSM) UnmarshalYAML(n *yaml.Node) error {
	var s string
	if err := n.Decode(&s); err != nil {
		return err
	}
	v, err := ParsePSM(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	*p = v
	return nil
}

func (p PSM) MarshalYAML() (interface{}, error) {
	return p.String(), nil
}
