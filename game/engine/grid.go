package engine

// ZoneBand is an inclusive row range on the left or right edge of the grid.
type ZoneBand struct {
	MinY int `json:"min_y" yaml:"min_y"`
	MaxY int `json:"max_y" yaml:"max_y"`
}

// Contains reports whether y falls inside the band
func (b ZoneBand) Contains(y int) bool {
	return y >= b.MinY && y <= b.MaxY
}

// Default zone bands for the entrance (left edge) and exit (right edge).
var (
	DefaultEntranceBand = ZoneBand{MinY: 1, MaxY: 4}
	DefaultExitBand     = ZoneBand{MinY: 5, MaxY: 8}
)

// Grid is the immutable bounded coordinate space of an encounter. Walls run
// along the whole border except for the entrance and exit openings.
type Grid struct {
	width    int
	height   int
	entrance ZoneBand
	exit     ZoneBand
}

// NewGrid creates a grid with the default entrance and exit bands
func NewGrid(width, height int) *Grid {
	return NewGridWithZones(width, height, DefaultEntranceBand, DefaultExitBand)
}

// NewGridWithZones creates a grid with explicit entrance and exit bands
func NewGridWithZones(width, height int, entrance, exit ZoneBand) *Grid {
	return &Grid{width: width, height: height, entrance: entrance, exit: exit}
}

// Width returns the number of columns
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows
func (g *Grid) Height() int { return g.height }

// EntranceBand returns the rows of the entrance opening
func (g *Grid) EntranceBand() ZoneBand { return g.entrance }

// ExitBand returns the rows of the exit opening
func (g *Grid) ExitBand() ZoneBand { return g.exit }

// IsValid reports whether (x, y) lies inside the grid
func (g *Grid) IsValid(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// IsWall reports whether (x, y) is a border wall. Out-of-range cells are not walls.
func (g *Grid) IsWall(x, y int) bool {
	if !g.IsValid(x, y) {
		return false
	}
	if y == 0 || y == g.height-1 {
		return true
	}
	if x == 0 && !g.entrance.Contains(y) {
		return true
	}
	if x == g.width-1 && !g.exit.Contains(y) {
		return true
	}
	return false
}

// IsEntranceZone reports whether (x, y) is part of the entrance opening
func (g *Grid) IsEntranceZone(x, y int) bool {
	return g.IsValid(x, y) && x == 0 && g.entrance.Contains(y)
}

// IsExitZone reports whether (x, y) is part of the exit opening
func (g *Grid) IsExitZone(x, y int) bool {
	return g.IsValid(x, y) && x == g.width-1 && g.exit.Contains(y)
}

// IsPassable reports whether an entity could stand on pos, ignoring occupancy
func (g *Grid) IsPassable(pos Position) bool {
	return g.IsValid(pos.X, pos.Y) && !g.IsWall(pos.X, pos.Y)
}

// Distance returns the Manhattan distance between a and b
func (g *Grid) Distance(a, b Position) int {
	return ManhattanDistance(a, b)
}

// Index maps a cell to its row-major index, or -1 when out of range
func (g *Grid) Index(x, y int) int {
	if !g.IsValid(x, y) {
		return -1
	}
	return y*g.width + x
}

// Coords maps a row-major index back to its cell
func (g *Grid) Coords(i int) (Position, bool) {
	if i < 0 || i >= g.width*g.height {
		return Position{}, false
	}
	return Position{X: i % g.width, Y: i / g.width}, true
}

// Size returns the number of cells
func (g *Grid) Size() int {
	return g.width * g.height
}
