package platform

import (
	"image"
	"strings"

	"emotion/input"
)

// The console has one fixed display and no window manager. These calls
// exist so framework code written for desktops keeps running: setters log a
// warning and do nothing, getters log and return a neutral value.

func (p *Platform) notAvailable(name string) {
	p.log.Warnf("%s() not available on target platform", name)
}

func (p *Platform) notImplemented(name string) {
	p.log.Warnf("%s() not implemented on target platform", name)
}

func (p *Platform) ToggleFullscreen()            { p.notAvailable("ToggleFullscreen") }
func (p *Platform) ToggleBorderlessWindowed()    { p.notAvailable("ToggleBorderlessWindowed") }
func (p *Platform) MaximizeWindow()              { p.notAvailable("MaximizeWindow") }
func (p *Platform) MinimizeWindow()              { p.notAvailable("MinimizeWindow") }
func (p *Platform) RestoreWindow()               { p.notAvailable("RestoreWindow") }
func (p *Platform) SetWindowState(ConfigFlags)   { p.notAvailable("SetWindowState") }
func (p *Platform) ClearWindowState(ConfigFlags) { p.notAvailable("ClearWindowState") }
func (p *Platform) SetWindowIcon(image.Image)    { p.notAvailable("SetWindowIcon") }
func (p *Platform) SetWindowIcons([]image.Image) { p.notAvailable("SetWindowIcons") }
func (p *Platform) SetWindowPosition(x, y int)   { p.notAvailable("SetWindowPosition") }
func (p *Platform) SetWindowMonitor(monitor int) { p.notAvailable("SetWindowMonitor") }
func (p *Platform) SetWindowSize(w, h int)       { p.notAvailable("SetWindowSize") }
func (p *Platform) SetWindowOpacity(float32)     { p.notAvailable("SetWindowOpacity") }
func (p *Platform) SetWindowFocused()            { p.notAvailable("SetWindowFocused") }

// SetWindowTitle records the title; nothing displays it.
func (p *Platform) SetWindowTitle(title string) { p.core.Window.Title = title }

func (p *Platform) SetWindowMinSize(w, h int) { p.core.Window.ScreenMin = Size{w, h} }
func (p *Platform) SetWindowMaxSize(w, h int) { p.core.Window.ScreenMax = Size{w, h} }

func (p *Platform) WindowHandle() uintptr {
	p.notImplemented("GetWindowHandle")
	return 0
}

func (p *Platform) MonitorCount() int {
	p.notImplemented("GetMonitorCount")
	return 1
}

func (p *Platform) CurrentMonitor() int {
	p.notImplemented("GetCurrentMonitor")
	return 0
}

func (p *Platform) MonitorPosition(monitor int) input.Vec2 {
	p.notImplemented("GetMonitorPosition")
	return input.Vec2{}
}

func (p *Platform) MonitorWidth(monitor int) int {
	p.notImplemented("GetMonitorWidth")
	return 0
}

func (p *Platform) MonitorHeight(monitor int) int {
	p.notImplemented("GetMonitorHeight")
	return 0
}

func (p *Platform) MonitorPhysicalWidth(monitor int) int {
	p.notImplemented("GetMonitorPhysicalWidth")
	return 0
}

func (p *Platform) MonitorPhysicalHeight(monitor int) int {
	p.notImplemented("GetMonitorPhysicalHeight")
	return 0
}

func (p *Platform) MonitorRefreshRate(monitor int) int {
	p.notImplemented("GetMonitorRefreshRate")
	return 0
}

func (p *Platform) MonitorName(monitor int) string {
	p.notImplemented("GetMonitorName")
	return ""
}

func (p *Platform) WindowPosition() input.Vec2 {
	p.notImplemented("GetWindowPosition")
	return input.Vec2{}
}

func (p *Platform) WindowScaleDPI() input.Vec2 {
	p.notImplemented("GetWindowScaleDPI")
	return input.Vec2{X: 1, Y: 1}
}

func (p *Platform) SetClipboardText(text string) { p.notImplemented("SetClipboardText") }

func (p *Platform) ClipboardText() string {
	p.notImplemented("GetClipboardText")
	return ""
}

func (p *Platform) SetGamepadMappings(mappings string) int {
	p.notImplemented("SetGamepadMappings")
	return 0
}

func (p *Platform) SetMouseCursor(cursor int) { p.notImplemented("SetMouseCursor") }

// OpenURL refuses URLs carrying a single quote, which could break out of
// a shell command on platforms that have a browser. There is none here.
func (p *Platform) OpenURL(url string) {
	if strings.ContainsRune(url, '\'') {
		p.log.Warn("SYSTEM: Provided URL could be potentially malicious, avoid ['] character")
		return
	}
	p.notImplemented("OpenURL")
}

// ShowCursor and the other cursor calls only keep the bookkeeping the
// framework reads back; there is no pointer on screen.
func (p *Platform) ShowCursor() { p.input.Mouse.SetHidden(false) }
func (p *Platform) HideCursor() { p.input.Mouse.SetHidden(true) }

// EnableCursor unlocks the cursor and centres it.
func (p *Platform) EnableCursor() {
	p.centreMouse()
	p.input.Mouse.SetHidden(false)
	p.input.Mouse.SetLocked(false)
}

// DisableCursor locks the cursor and centres it.
func (p *Platform) DisableCursor() {
	p.centreMouse()
	p.input.Mouse.SetHidden(true)
	p.input.Mouse.SetLocked(true)
}

func (p *Platform) SetMousePosition(x, y int) { p.input.Mouse.SetPosition(x, y) }

func (p *Platform) centreMouse() {
	s := p.core.Window.Screen
	p.input.Mouse.SetPosition(s.Width/2, s.Height/2)
}
