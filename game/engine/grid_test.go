package engine

import "testing"

func TestGridWalls(t *testing.T) {
	grid := NewGrid(10, 10)

	tests := []struct {
		name     string
		x, y     int
		wall     bool
		entrance bool
		exit     bool
	}{
		{"top row", 4, 0, true, false, false},
		{"bottom row", 4, 9, true, false, false},
		{"left column outside entrance", 0, 6, true, false, false},
		{"entrance opening", 0, 1, false, true, false},
		{"entrance last row", 0, 4, false, true, false},
		{"right column outside exit", 9, 2, true, false, false},
		{"exit opening", 9, 5, false, false, true},
		{"exit last row", 9, 8, false, false, true},
		{"interior", 5, 5, false, false, false},
		{"corner", 0, 0, true, false, false},
		{"out of range", -1, 3, false, false, false},
		{"out of range right", 10, 6, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := grid.IsWall(tt.x, tt.y); got != tt.wall {
				t.Errorf("IsWall(%d,%d) = %v, want %v", tt.x, tt.y, got, tt.wall)
			}
			if got := grid.IsEntranceZone(tt.x, tt.y); got != tt.entrance {
				t.Errorf("IsEntranceZone(%d,%d) = %v, want %v", tt.x, tt.y, got, tt.entrance)
			}
			if got := grid.IsExitZone(tt.x, tt.y); got != tt.exit {
				t.Errorf("IsExitZone(%d,%d) = %v, want %v", tt.x, tt.y, got, tt.exit)
			}
		})
	}
}

func TestGridIsValid(t *testing.T) {
	grid := NewGrid(6, 4)
	if !grid.IsValid(0, 0) || !grid.IsValid(5, 3) {
		t.Error("corners should be valid")
	}
	if grid.IsValid(6, 0) || grid.IsValid(0, 4) || grid.IsValid(-1, 0) {
		t.Error("cells outside the grid should be invalid")
	}
}

func TestGridIndexRoundTrip(t *testing.T) {
	grid := NewGrid(7, 5)
	for i := 0; i < grid.Size(); i++ {
		pos, ok := grid.Coords(i)
		if !ok {
			t.Fatalf("Coords(%d) reported invalid", i)
		}
		if got := grid.Index(pos.X, pos.Y); got != i {
			t.Errorf("Index(Coords(%d)) = %d", i, got)
		}
	}
	if grid.Index(7, 0) != -1 {
		t.Error("expected -1 for out of range index")
	}
	if _, ok := grid.Coords(grid.Size()); ok {
		t.Error("expected Coords past the end to be invalid")
	}
}

func TestGridDistance(t *testing.T) {
	grid := NewGrid(10, 10)
	if d := grid.Distance(Position{1, 1}, Position{4, 5}); d != 7 {
		t.Errorf("expected distance 7, got %d", d)
	}
	if d := grid.Distance(Position{3, 3}, Position{3, 3}); d != 0 {
		t.Errorf("expected distance 0, got %d", d)
	}
}

func TestGridCustomZones(t *testing.T) {
	grid := NewGridWithZones(6, 6, ZoneBand{MinY: 2, MaxY: 2}, ZoneBand{MinY: 3, MaxY: 4})
	if !grid.IsEntranceZone(0, 2) || grid.IsEntranceZone(0, 1) {
		t.Error("entrance band not honoured")
	}
	if !grid.IsExitZone(5, 4) || grid.IsExitZone(5, 2) {
		t.Error("exit band not honoured")
	}
	if !grid.IsWall(0, 1) || grid.IsWall(5, 3) {
		t.Error("walls should follow the configured bands")
	}
}
