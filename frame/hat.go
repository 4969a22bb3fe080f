package frame

// Direction is a hat switch position: 0 = centered, then the eight compass
// points clockwise from up.
type Direction uint8

const (
	Centered Direction = iota
	Up
	UpRight
	Right
	DownRight
	Down
	DownLeft
	Left
	UpLeft
)

var directionNames = [...]string{"centered", "up", "up-right", "right", "down-right", "down", "down-left", "left", "up-left"}

func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return "invalid"
}

// Valid reports whether d is one of the nine defined codes.
func (d Direction) Valid() bool { return d <= UpLeft }

// Cardinal is one of the four switches a hat is built from.
type Cardinal uint8

const (
	CardinalUp Cardinal = iota
	CardinalRight
	CardinalDown
	CardinalLeft
)

// ParseCardinal accepts "up", "right", "down", "left".
func ParseCardinal(s string) (Cardinal, bool) {
	switch s {
	case "up":
		return CardinalUp, true
	case "right":
		return CardinalRight, true
	case "down":
		return CardinalDown, true
	case "left":
		return CardinalLeft, true
	}
	return 0, false
}

// Has reports whether direction d engages switch c. Diagonals engage two.
func (d Direction) Has(c Cardinal) bool {
	switch c {
	case CardinalUp:
		return d == UpLeft || d == Up || d == UpRight
	case CardinalRight:
		return d == UpRight || d == Right || d == DownRight
	case CardinalDown:
		return d == DownRight || d == Down || d == DownLeft
	case CardinalLeft:
		return d == DownLeft || d == Left || d == UpLeft
	}
	return false
}

// DirectionOf composes four switch states into a direction. Any opposing
// pair (up+down, left+right) is contradictory and yields Centered.
func DirectionOf(up, right, down, left bool) Direction {
	if (up && down) || (left && right) {
		return Centered
	}
	switch {
	case up && right:
		return UpRight
	case up && left:
		return UpLeft
	case down && right:
		return DownRight
	case down && left:
		return DownLeft
	case up:
		return Up
	case right:
		return Right
	case down:
		return Down
	case left:
		return Left
	}
	return Centered
}

// HatPushBit carries the centre-press input in a hat byte; bits 0-3 carry the
// direction code.
const (
	HatPushBit  = 7
	hatDirMask  = 0x0F
	hatPushMask = 1 << HatPushBit
)

// Hat is one decoded hat byte.
type Hat struct {
	Dir  Direction
	Push bool
}

// Byte packs the hat. Invalid directions are written as Centered.
func (h Hat) Byte() byte {
	var b byte
	if h.Dir.Valid() {
		b = byte(h.Dir)
	}
	if h.Push {
		b |= hatPushMask
	}
	return b
}

// HatFromByte unpacks a hat byte. Unknown direction codes decode as Centered.
func HatFromByte(b byte) Hat {
	d := Direction(b & hatDirMask)
	if !d.Valid() {
		d = Centered
	}
	return Hat{Dir: d, Push: b&hatPushMask != 0}
}
