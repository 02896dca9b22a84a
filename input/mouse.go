package input

// Vec2 is a 2D position or scale.
type Vec2 struct {
	X, Y float32
}

// Mouse keeps the pointer book-keeping the framework expects. There is no
// pointing device; the position only moves when set.
type Mouse struct {
	previous Vec2
	current  Vec2
	offset   Vec2
	scale    Vec2
	hidden   bool
	locked   bool
}

func newMouse() Mouse {
	return Mouse{scale: Vec2{1, 1}}
}

func (m *Mouse) Position() Vec2 {
	return Vec2{
		X: (m.current.X + m.offset.X) * m.scale.X,
		Y: (m.current.Y + m.offset.Y) * m.scale.Y,
	}
}

func (m *Mouse) Delta() Vec2 {
	return Vec2{X: m.current.X - m.previous.X, Y: m.current.Y - m.previous.Y}
}

// SetPosition moves the pointer without producing a delta.
func (m *Mouse) SetPosition(x, y int) {
	m.current = Vec2{float32(x), float32(y)}
	m.previous = m.current
}

func (m *Mouse) SetOffset(x, y int)    { m.offset = Vec2{float32(x), float32(y)} }
func (m *Mouse) SetScale(x, y float32) { m.scale = Vec2{x, y} }
func (m *Mouse) Scale() Vec2           { return m.scale }
func (m *Mouse) SetHidden(hidden bool) { m.hidden = hidden }
func (m *Mouse) Hidden() bool          { return m.hidden }
func (m *Mouse) SetLocked(locked bool) { m.locked = locked }
func (m *Mouse) Locked() bool          { return m.locked }

func (m *Mouse) frame() { m.previous = m.current }
