package engine

// EntityID identifies an entity within one World. Ids are handed out from a
// counter starting at 1 and are never reused.
type EntityID int

// NoEntity is returned when a lookup finds nothing.
const NoEntity EntityID = 0

// Position represents x,y coordinates
type Position struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Add returns the position translated by d.
func (p Position) Add(d Direction) Position {
	return Position{X: p.X + d.DX, Y: p.Y + d.DY}
}

// Sub returns the vector from o to p.
func (p Position) Sub(o Position) Direction {
	return Direction{DX: p.X - o.X, DY: p.Y - o.Y}
}

// Direction is a facing or offset vector. As a facing each component is
// -1, 0 or 1 and they are not both zero.
type Direction struct {
	DX int `json:"dx" yaml:"dx"`
	DY int `json:"dy" yaml:"dy"`
}

// Cardinal directions, in the order push options are enumerated.
var (
	Up    = Direction{DX: 0, DY: -1}
	Down  = Direction{DX: 0, DY: 1}
	Left  = Direction{DX: -1, DY: 0}
	Right = Direction{DX: 1, DY: 0}
)

// CardinalDirections lists the four orthogonal unit vectors.
var CardinalDirections = []Direction{Up, Down, Left, Right}

// IsFacing reports whether d is a legal facing vector.
func (d Direction) IsFacing() bool {
	if d.DX < -1 || d.DX > 1 || d.DY < -1 || d.DY > 1 {
		return false
	}
	return d.DX != 0 || d.DY != 0
}

// Normalize returns the sign of each component.
func (d Direction) Normalize() Direction {
	return Direction{DX: sign(d.DX), DY: sign(d.DY)}
}

// Renderable is display data. Rules never read it.
type Renderable struct {
	Char   string `json:"char"`
	Color  string `json:"color"`
	Sprite string `json:"sprite,omitempty"`
}

// Attributes are the four scores driving movement, pushing and damage.
type Attributes struct {
	Pwr int `json:"pwr" yaml:"pwr"`
	Mov int `json:"mov" yaml:"mov"`
	Inf int `json:"inf" yaml:"inf"`
	Cre int `json:"cre" yaml:"cre"`
}

// Stats is carried by entities that can take damage.
type Stats struct {
	HP         int `json:"hp"`
	MaxHP      int `json:"max_hp"`
	Stamina    int `json:"stamina"`
	MaxStamina int `json:"max_stamina"`
}

// Pushable marks an object that can be pushed and records its mass.
type Pushable struct {
	Weight int `json:"weight"`
}

// NPC marks adversary-controlled entities.
type NPC struct{}

// PlayerControlled marks members of the party.
type PlayerControlled struct{}
