package hal

import "errors"

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

var ErrNotImplemented = errors.New("not implemented")

// ErrShutdown is returned by a frame step to stop the host runners cleanly.
var ErrShutdown = errors.New("shutdown requested")

// IOP is the control surface of the I/O co-processor: the RPC channel, its
// reset handshake and the module loader.
//
// Load calls return the module's start code alongside the loader error. A
// negative code means the module refused to stay resident.
type IOP interface {
	InitRPC()
	// Reset requests a co-processor reset. It reports false until the
	// request is acknowledged and must be polled.
	Reset() bool
	// Sync reports true once the co-processor has come back after a reset.
	Sync() bool
	LoadFileInit()

	PatchEnableLMB() error
	PatchDisablePrefixCheck() error

	ExecModuleBuffer(name string, image []byte, args string) (int, error)
	LoadModule(path string, args string) (int, error)

	FileXioInit() error
	FileXioSetRWBufferSize(n int) error
	McInit(cardType int) error
}

// Memory card types accepted by IOP.McInit.
const (
	CardTypeMC   = 2
	CardTypeXMC  = 3
	CardTypeXPMC = 4
)

// ReadMode selects what the keyboard driver reports.
type ReadMode uint8

const (
	ReadModeDecoded ReadMode = iota
	ReadModeRaw
)

// BlockingMode selects whether reads wait for input.
type BlockingMode uint8

const (
	Blocking BlockingMode = iota
	NonBlocking
)

// RawKeyState is the transition carried by a raw scan-code event.
type RawKeyState uint8

const (
	RawKeyUp RawKeyState = iota + 1
	RawKeyDown
)

// RawKey is one raw scan-code event as delivered by the keyboard driver.
// Codes are USB HID keyboard usage IDs.
type RawKey struct {
	Code  uint8
	State RawKeyState
}

// Down reports whether the event is a key-down.
func (k RawKey) Down() bool { return k.State == RawKeyDown }

// KeyboardDriver is the USB keyboard driver resident on the IOP.
type KeyboardDriver interface {
	Init() (int, error)
	SetReadMode(ReadMode) error
	SetBlockingMode(BlockingMode) error
	// ReadRaw returns the next pending event. In non-blocking mode it
	// returns false immediately when none is queued.
	ReadRaw() (RawKey, bool)
	Close() error
}

// Video standard of the CRT output.
type VideoStandard uint8

const (
	VideoNTSC VideoStandard = 2
	VideoPAL  VideoStandard = 3
)

// Field mode for interlaced output.
type FieldMode uint8

const (
	FieldField FieldMode = 0
	FieldFrame FieldMode = 1
)

// CrtMode configures the physical output signal.
type CrtMode struct {
	Interlace bool
	Video     VideoStandard
	Field     FieldMode
}

// Buffer describes a pixel buffer resident in video memory. BasePage is in
// 8 KiB pages from the start of video memory; PSM is the GS pixel storage
// mode code.
type Buffer struct {
	BasePage int
	Width    int
	Height   int
	PSM      uint8
}

// FrameSpec is the draw/display target set: two frame buffers plus a depth
// buffer. Front is scanned out, Back is drawn into.
type FrameSpec struct {
	Interlaced bool
	Front      Buffer
	Back       Buffer
	Depth      Buffer
}

// RendererInfo mirrors the strings a GL driver reports.
type RendererInfo struct {
	Vendor   string
	Version  string
	Renderer string
}

// GS is the graphics synthesizer plus its immediate-mode renderer.
type GS interface {
	// ResetGIF resets the GS interface path before any packet is sent.
	ResetGIF()
	SetCrt(CrtMode)
	InitRenderer(immVertices, immDisplayLists int) error
	ReserveSlot(offset, pages int, psm uint8, locked bool) error
	SetFrame(FrameSpec) error
	// Upload copies RGBA pixels into a buffer, converting to its PSM.
	Upload(dst Buffer, rgba []byte) error
	Flip() error
	Info() RendererInfo
	Close() error
}

// MemoryCard provides raw access to the card opened by IOP.McInit.
//
// It is intentionally low-level: addresses and erase blocks only.
type MemoryCard interface {
	SizeBytes() uint32
	EraseBlockBytes() uint32
	ReadAt(p []byte, off uint32) (int, error)
	WriteAt(p []byte, off uint32) (int, error)
	Erase(off, size uint32) error
}

// Clock is a monotonic nanosecond counter.
type Clock interface {
	Nanotime() uint64
}

// HAL provides the only contact point between the platform layer and the
// hardware.
type HAL interface {
	Logger() Logger
	IOP() IOP
	Keyboard() KeyboardDriver
	GS() GS
	MemoryCard() MemoryCard
	Clock() Clock
}
