//go:build ps2 && cgo

package hal

/*
#cgo LDFLAGS: -lps2gl -lps2stuff -lkbd -lmc -lfileXio -lpatches -ldebug

#include <stdlib.h>
#include <time.h>
#include <kernel.h>
#include <sifrpc.h>
#include <loadfile.h>
#include <iopcontrol.h>
#include <sbv_patches.h>
#include <libmc.h>
#include <libkbd.h>
#include <fileXio_rpc.h>
#include <GL/ps2gl.h>
#include <GL/gl.h>

static void emotion_reset_gif(void) {
	volatile unsigned long *ctrl = (volatile unsigned long *)0x10003000;
	*ctrl = 1;
}

static int emotion_exec_buffer(void *data, int size, int *ret) {
	return SifExecModuleBuffer(data, size, 0, NULL, ret);
}

static int emotion_read_raw(unsigned char *code, unsigned char *state) {
	PS2KbdRawKey key;
	int n = PS2KbdReadRaw(&key);
	if (n > 0) {
		*code = key.key;
		*state = key.state;
	}
	return n;
}

static unsigned long long emotion_nanotime(void) {
	return (unsigned long long)clock() * (1000000000ull / CLOCKS_PER_SEC);
}
*/
import "C"

import (
	"fmt"
	"os"
	"sync"
	"unsafe"
)

type ps2HAL struct {
	logger *ps2Logger
	iop    ps2IOP
	kbd    ps2Keyboard
	gs     *ps2GS
	mc     ps2MemoryCard
	clock  ps2Clock
}

// New returns the HAL backed by the console SDK.
func New() HAL {
	return &ps2HAL{logger: &ps2Logger{}, gs: &ps2GS{}}
}

func (h *ps2HAL) Logger() Logger           { return h.logger }
func (h *ps2HAL) IOP() IOP                 { return h.iop }
func (h *ps2HAL) Keyboard() KeyboardDriver { return h.kbd }
func (h *ps2HAL) GS() GS                   { return h.gs }
func (h *ps2HAL) MemoryCard() MemoryCard   { return h.mc }
func (h *ps2HAL) Clock() Clock             { return h.clock }

type ps2Logger struct{ mu sync.Mutex }

func (l *ps2Logger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(os.Stdout, s)
}

func (l *ps2Logger) WriteLineBytes(b []byte) { l.WriteLineString(string(b)) }

type ps2IOP struct{}

func (ps2IOP) InitRPC()      { C.SifInitRpc(0) }
func (ps2IOP) Sync() bool    { return C.SifIopSync() != 0 }
func (ps2IOP) LoadFileInit() { C.SifLoadFileInit() }

func (ps2IOP) Reset() bool {
	empty := C.CString("")
	defer C.free(unsafe.Pointer(empty))
	return C.SifIopReset(empty, 0) != 0
}

func (ps2IOP) PatchEnableLMB() error {
	if rc := C.sbv_patch_enable_lmb(); rc < 0 {
		return fmt.Errorf("sbv lmb patch: %d", int(rc))
	}
	return nil
}

func (ps2IOP) PatchDisablePrefixCheck() error {
	if rc := C.sbv_patch_disable_prefix_check(); rc < 0 {
		return fmt.Errorf("sbv prefix patch: %d", int(rc))
	}
	return nil
}

func (ps2IOP) ExecModuleBuffer(name string, image []byte, args string) (int, error) {
	if len(image) == 0 {
		return -1, fmt.Errorf("exec %s: empty image", name)
	}
	buf := C.CBytes(image)
	defer C.free(buf)
	var ret C.int
	id := C.emotion_exec_buffer(buf, C.int(len(image)), &ret)
	if id < 0 {
		return int(id), fmt.Errorf("exec %s: loader %d", name, int(id))
	}
	return int(ret), nil
}

func (ps2IOP) LoadModule(path string, args string) (int, error) {
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))
	id := C.SifLoadModule(cpath, 0, nil)
	if id < 0 {
		return int(id), fmt.Errorf("load %s: loader %d", path, int(id))
	}
	return 0, nil
}

func (ps2IOP) FileXioInit() error {
	if rc := C.fileXioInit(); rc < 0 {
		return fmt.Errorf("fileXio init: %d", int(rc))
	}
	return nil
}

func (ps2IOP) FileXioSetRWBufferSize(n int) error {
	if rc := C.fileXioSetRWBufferSize(C.int(n)); rc < 0 {
		return fmt.Errorf("fileXio buffer: %d", int(rc))
	}
	return nil
}

func (ps2IOP) McInit(cardType int) error {
	if rc := C.mcInit(C.int(cardType)); rc < 0 {
		return fmt.Errorf("mc init: %d", int(rc))
	}
	return nil
}

type ps2Keyboard struct{}

func (ps2Keyboard) Init() (int, error) {
	rc := int(C.PS2KbdInit())
	if rc == 0 {
		return rc, fmt.Errorf("keyboard init: %w", ErrNotImplemented)
	}
	return rc, nil
}

func (ps2Keyboard) SetReadMode(m ReadMode) error {
	mode := C.PS2KBD_READMODE_NORMAL
	if m == ReadModeRaw {
		mode = C.PS2KBD_READMODE_RAW
	}
	C.PS2KbdSetReadmode(C.u32(mode))
	return nil
}

func (ps2Keyboard) SetBlockingMode(m BlockingMode) error {
	mode := C.PS2KBD_BLOCKING
	if m == NonBlocking {
		mode = C.PS2KBD_NONBLOCKING
	}
	C.PS2KbdSetBlockingMode(C.u32(mode))
	return nil
}

func (ps2Keyboard) ReadRaw() (RawKey, bool) {
	var code, state C.uchar
	if C.emotion_read_raw(&code, &state) <= 0 {
		return RawKey{}, false
	}
	return RawKey{Code: uint8(code), State: rawKeyState(uint8(state))}, true
}

func (ps2Keyboard) Close() error {
	C.PS2KbdClose()
	return nil
}

type ps2GS struct {
	frame FrameSpec
}

func (g *ps2GS) ResetGIF() { C.emotion_reset_gif() }

func (g *ps2GS) SetCrt(m CrtMode) {
	interlace := 0
	if m.Interlace {
		interlace = 1
	}
	C.SetGsCrt(C.s16(interlace), C.s16(m.Video), C.s16(m.Field))
}

func (g *ps2GS) InitRenderer(immVertices, immDisplayLists int) error {
	if C.pglInit(C.int(immVertices), C.int(immDisplayLists)) == 0 {
		return ErrNotImplemented
	}
	return nil
}

func (g *ps2GS) ReserveSlot(offset, pages int, psm uint8, locked bool) error {
	slot := C.pglAddGsMemSlot(C.int(offset), C.int(pages), C.int(psm))
	if locked {
		C.pglLockGsMemSlot(slot)
	}
	return nil
}

// SetFrame binds fresh areas to the frame slots at the buffers' base pages.
func (g *ps2GS) SetFrame(f FrameSpec) error {
	area := func(b Buffer) C.pgl_area_handle_t {
		a := C.pglCreateGsMemArea(C.int(b.Width), C.int(b.Height), C.int(b.PSM))
		C.pglBindGsMemAreaToSlot(a, C.pglAddGsMemSlot(C.int(b.BasePage), 0, C.int(b.PSM)))
		return a
	}
	front, back, depth := area(f.Front), area(f.Back), area(f.Depth)
	mode := C.int(C.PGL_NONINTERLACED)
	if f.Interlaced {
		mode = C.PGL_INTERLACED
	}
	C.pglSetDrawBuffers(mode, front, back, depth)
	C.pglSetDisplayBuffers(mode, front, back)
	g.frame = f
	return nil
}

// TODO: upload through a textured quad once the console font texture lives
// in the font slot.
func (g *ps2GS) Upload(dst Buffer, rgba []byte) error { return ErrNotImplemented }

func (g *ps2GS) Flip() error {
	C.pglFinishRenderingGeometry(C.PGL_DONT_FORCE_IMMEDIATE_STOP)
	C.pglWaitForVSync()
	C.pglSwapBuffers()
	g.frame.Front, g.frame.Back = g.frame.Back, g.frame.Front
	return nil
}

func (g *ps2GS) Info() RendererInfo {
	str := func(name C.GLenum) string {
		return C.GoString((*C.char)(unsafe.Pointer(C.glGetString(name))))
	}
	return RendererInfo{
		Vendor:   str(C.GL_VENDOR),
		Version:  str(C.GL_VERSION),
		Renderer: str(C.GL_RENDERER),
	}
}

func (g *ps2GS) Close() error {
	C.pglFinishRenderingGeometry(C.PGL_FORCE_IMMEDIATE_STOP)
	return nil
}

// ps2MemoryCard is not wired yet: saves go through fileXio paths.
type ps2MemoryCard struct{}

func (ps2MemoryCard) SizeBytes() uint32       { return 0 }
func (ps2MemoryCard) EraseBlockBytes() uint32 { return 0 }

func (ps2MemoryCard) ReadAt(p []byte, off uint32) (int, error) {
	return 0, ErrNotImplemented
}

func (ps2MemoryCard) WriteAt(p []byte, off uint32) (int, error) {
	return 0, ErrNotImplemented
}

func (ps2MemoryCard) Erase(off, size uint32) error { return ErrNotImplemented }

type ps2Clock struct{}

func (ps2Clock) Nanotime() uint64 { return uint64(C.emotion_nanotime()) }
