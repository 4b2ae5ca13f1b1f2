// Command analyze prints quick, human-readable heuristics about scenario
// files. For every scenario it renders the map, the opening turn order and,
// per party member, the reachable cells, the available pushes and the
// shortest walk to the exit compared with the turn limit.
//
// With --validate it only checks the files and exits non-zero when any of
// them is broken.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/grid-tactics/game/engine"
	"github.com/wricardo/grid-tactics/game/minigame"
	"github.com/wricardo/grid-tactics/game/scenario"
)

// DefaultDir is analysed when no path is given
const DefaultDir = "game/config/defaults"

// Report summarises one scenario.
type Report struct {
	ID         string
	Name       string
	Type       scenario.MinigameType
	Width      int
	Height     int
	MaxTurns   int
	Map        []string
	TurnOrder  []string
	Characters []CharacterReport
	Warnings   []string
}

// CharacterReport describes what one party member can do on the first turn.
type CharacterReport struct {
	ID        engine.EntityID
	Name      string
	Position  engine.Position
	AP        int
	Moves     []engine.Position
	Pushes    []PushReport
	ExitSteps int // fewest moves to an exit, -1 when none can be reached
}

// PushReport lists the push directions available against one object.
type PushReport struct {
	Object  engine.EntityID
	Options []engine.PushOption
}

func main() {
	cmd := &cli.Command{
		Name:      "analyze",
		Usage:     "validate and analyse scenario files",
		ArgsUsage: "[scenario file or directory...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "validate", Usage: "only validate the files"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			paths := cmd.Args().Slice()
			if len(paths) == 0 {
				paths = []string{DefaultDir}
			}
			if err := run(os.Stdout, paths, cmd.Bool("validate")); err != nil {
				return cli.Exit(err.Error(), 1)
			}
			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run analyses or validates every scenario file under paths
func run(out io.Writer, paths []string, validateOnly bool) error {
	files, err := collectFiles(paths)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no scenario files found")
	}

	failed := 0
	for _, file := range files {
		result := validateFile(file)
		if validateOnly || !result.Valid {
			printResult(out, result)
			if !result.Valid {
				failed++
			}
			continue
		}

		def, err := scenario.Load(file)
		if err != nil {
			fmt.Fprintf(out, "Error loading %s: %v\n", file, err)
			failed++
			continue
		}
		report, err := analyzeScenario(def)
		if err != nil {
			fmt.Fprintf(out, "Error analysing %s: %v\n", file, err)
			failed++
			continue
		}
		fmt.Fprintf(out, "\n=== Analyzing %s ===\n", filepath.Base(file))
		printReport(out, report)
	}

	fmt.Fprintf(out, "\n=== Summary ===\nTotal files: %d\nValid: %d\nInvalid: %d\n", len(files), len(files)-failed, failed)
	if failed > 0 {
		return fmt.Errorf("%d scenario file(s) failed", failed)
	}
	return nil
}

// collectFiles expands directories into the scenario files they contain
func collectFiles(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if _, err := scenario.FormatFor(e.Name()); err == nil {
				files = append(files, filepath.Join(p, e.Name()))
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

// analyzeScenario builds the scenario and inspects the opening round
func analyzeScenario(def *scenario.Definition) (*Report, error) {
	built, err := scenario.Build(def)
	if err != nil {
		return nil, err
	}
	world, grid := built.World, built.Grid

	controller := engine.NewController(engine.WithRules(built.Rules))
	controller.StartRound(world.Characters, world)

	report := &Report{
		ID:       def.ID,
		Name:     def.Name,
		Type:     def.MinigameType,
		Width:    grid.Width(),
		Height:   grid.Height(),
		MaxTurns: def.Config.MaxTurns,
		Map:      minigame.Render(world, grid),
	}

	for _, id := range controller.TurnOrder() {
		report.TurnOrder = append(report.TurnOrder, label(def, id))
	}

	for _, id := range built.Party {
		pos, _ := world.Positions.Get(id)
		attrs, _ := world.Attributes.Get(id)
		cr := CharacterReport{
			ID:        id,
			Name:      placementName(def, id),
			Position:  pos,
			AP:        controller.AP(id),
			Moves:     controller.ValidMovesFor(world, grid, id),
			ExitSteps: stepsToExit(grid, pos, attrs.Mov),
		}

		for _, object := range world.Pushables.Entities() {
			objPos, ok := world.Positions.Get(object)
			if !ok || engine.ManhattanDistance(pos, objPos) != 1 {
				continue
			}
			if opts := controller.ValidPushesFor(world, grid, id, object); len(opts) > 0 {
				cr.Pushes = append(cr.Pushes, PushReport{Object: object, Options: opts})
			}
		}

		switch {
		case cr.ExitSteps < 0:
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s cannot reach any exit cell", label(def, id)))
		case report.MaxTurns > 0 && cr.ExitSteps > report.MaxTurns:
			// every party move is a turn; adversary actions do not count
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s needs at least %d moves but the turn limit is %d",
				label(def, id), cr.ExitSteps, report.MaxTurns))
		}
		report.Characters = append(report.Characters, cr)
	}

	return report, nil
}

// stepsToExit is the fewest moves from start to an exit cell using the
// movement patterns mov unlocks. Entities are ignored since crates can be
// pushed aside, but walls still block the middle cell of 2-cell moves.
func stepsToExit(grid *engine.Grid, start engine.Position, mov int) int {
	if !grid.IsPassable(start) {
		return -1
	}

	patterns := engine.MovementPatterns(mov)
	dist := map[engine.Position]int{start: 0}
	queue := []engine.Position{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if grid.IsExitZone(current.X, current.Y) {
			return dist[current]
		}
		for _, p := range patterns {
			next := current.Add(p.Offset)
			if _, seen := dist[next]; seen {
				continue
			}
			if engine.ValidateStepWith(grid, current, next, mov, nil, nil) != nil {
				continue
			}
			dist[next] = dist[current] + 1
			queue = append(queue, next)
		}
	}
	return -1
}

func placementName(def *scenario.Definition, id engine.EntityID) string {
	if i := int(id) - 1; i >= 0 && i < len(def.Entities) {
		return def.Entities[i].Properties.String("name")
	}
	return ""
}

func label(def *scenario.Definition, id engine.EntityID) string {
	if name := placementName(def, id); name != "" {
		return fmt.Sprintf("%s (#%d)", name, id)
	}
	return fmt.Sprintf("#%d", id)
}

func printReport(out io.Writer, r *Report) {
	fmt.Fprintf(out, "Name: %s (%s)\n", r.Name, r.ID)
	fmt.Fprintf(out, "Type: %s\n", r.Type)
	fmt.Fprintf(out, "Grid Size: %d x %d\n", r.Width, r.Height)
	if r.MaxTurns > 0 {
		fmt.Fprintf(out, "Turn Limit: %d\n", r.MaxTurns)
	}
	fmt.Fprintf(out, "Turn Order: %s\n\n", strings.Join(r.TurnOrder, ", "))

	for _, row := range r.Map {
		fmt.Fprintf(out, "  %s\n", row)
	}
	fmt.Fprintln(out)

	for _, c := range r.Characters {
		fmt.Fprintf(out, "%s at (%d, %d), AP %d\n", c.Name, c.Position.X, c.Position.Y, c.AP)
		fmt.Fprintf(out, "  Moves: %d\n", len(c.Moves))
		for _, p := range c.Pushes {
			dirs := make([]string, 0, len(p.Options))
			for _, o := range p.Options {
				dirs = append(dirs, fmt.Sprintf("%s (stamina %d)", engine.DirectionName(o.Direction), o.StaminaCost))
			}
			fmt.Fprintf(out, "  Push #%d: %s\n", p.Object, strings.Join(dirs, ", "))
		}
		if c.ExitSteps >= 0 {
			fmt.Fprintf(out, "  Exit: %d moves\n", c.ExitSteps)
		}
	}

	if len(r.Warnings) == 0 {
		fmt.Fprintln(out, "✅ Every character can reach the exit")
		return
	}
	for _, w := range r.Warnings {
		fmt.Fprintf(out, "⚠️  WARNING: %s\n", w)
	}
}
