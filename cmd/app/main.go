package main

import (
	"fmt"
	"os"
	"strings"

	"fs-track-builder/internal/config"
	"fs-track-builder/internal/editor"
	"fs-track-builder/internal/logging"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

// PanStep is how far one arrow key press moves the view, in pixels.
const PanStep = 40.0

type Game struct {
	Ctrl *editor.Controller
	Log  zerolog.Logger

	TrackPath  string
	ConeRadius float64 // meters
	Width      int
	Height     int

	// Field editing
	Editing  bool
	FieldIdx int
	Input    []rune

	Status string
}

func (g *Game) Update() error {
	if g.Editing {
		g.updateFieldInput()
		return nil
	}

	g.updateKeys()
	g.updateMouse()
	return nil
}

func (g *Game) updateKeys() {
	c := g.Ctrl

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyA):
		c.SetMode(editor.ModeAdd)
	case inpututil.IsKeyJustPressed(ebiten.KeyD):
		c.SetMode(editor.ModeDelete)
	case inpututil.IsKeyJustPressed(ebiten.KeyBackspace):
		g.report("Deleted last waypoint", c.DeleteLast())
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		g.report("Cleared", c.Clear())
	case inpututil.IsKeyJustPressed(ebiten.KeyL):
		g.report(fmt.Sprintf("Close loop: %t", !c.State().Params.CloseLoop), c.ToggleLoop())
	case inpututil.IsKeyJustPressed(ebiten.KeyG):
		c.ToggleGrid()
		g.Status = fmt.Sprintf("Grid snapping: %t", c.State().Params.Grid.Enabled)
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual), inpututil.IsKeyJustPressed(ebiten.KeyKPAdd):
		g.report("", c.ZoomIn())
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus), inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract):
		g.report("", c.ZoomOut())
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft):
		g.report("", c.Pan(PanStep, 0))
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowRight):
		g.report("", c.Pan(-PanStep, 0))
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowUp):
		g.report("", c.Pan(0, PanStep))
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowDown):
		g.report("", c.Pan(0, -PanStep))
	case inpututil.IsKeyJustPressed(ebiten.KeyE):
		g.report("Exported "+g.TrackPath, c.ExportFile(g.TrackPath))
	case inpututil.IsKeyJustPressed(ebiten.KeyI):
		ok, err := c.ImportFile(g.TrackPath)
		if err == nil && !ok {
			g.Status = "Import failed, track unchanged"
			return
		}
		g.report("Imported "+g.TrackPath, err)
	case inpututil.IsKeyJustPressed(ebiten.KeyTab):
		g.Editing = true
		g.Input = g.Input[:0]
	}

	if _, dy := ebiten.Wheel(); dy > 0 {
		g.report("", c.ZoomIn())
	} else if dy < 0 {
		g.report("", c.ZoomOut())
	}
}

func (g *Game) updateMouse() {
	c := g.Ctrl
	x, y := ebiten.CursorPosition()
	px, py := float64(x), float64(y)

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.report("", c.Click(px, py))
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		// Right click deletes regardless of mode.
		mode := c.Mode()
		c.SetMode(editor.ModeDelete)
		g.report("", c.Click(px, py))
		c.SetMode(mode)
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		c.Release()
	}

	_, err := c.Motion(px, py)
	g.report("", err)
}

func (g *Game) updateFieldInput() {
	field := editor.Fields[g.FieldIdx]

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		g.Editing = false
		return
	case inpututil.IsKeyJustPressed(ebiten.KeyTab):
		g.FieldIdx = (g.FieldIdx + 1) % len(editor.Fields)
		g.Input = g.Input[:0]
		return
	case inpututil.IsKeyJustPressed(ebiten.KeyBackspace):
		if len(g.Input) > 0 {
			g.Input = g.Input[:len(g.Input)-1]
		}
		return
	case inpututil.IsKeyJustPressed(ebiten.KeyEnter), inpututil.IsKeyJustPressed(ebiten.KeyKPEnter):
		ok, err := g.Ctrl.SetField(field, string(g.Input))
		switch {
		case err != nil:
			g.report("", err)
		case !ok:
			g.Status = fmt.Sprintf("Invalid %s %q, keeping %s", field, string(g.Input), g.Ctrl.FieldValue(field))
		default:
			g.Status = fmt.Sprintf("%s = %s", field, g.Ctrl.FieldValue(field))
		}
		g.Editing = false
		return
	}

	for _, r := range ebiten.AppendInputChars(nil) {
		if strings.ContainsRune("0123456789.-+eE", r) {
			g.Input = append(g.Input, r)
		}
	}
}

// report shows msg, or err when an action failed.
func (g *Game) report(msg string, err error) {
	if err != nil {
		g.Status = "Error: " + err.Error()
		return
	}
	if msg != "" {
		g.Status = msg
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	return g.Width, g.Height
}

func main() {
	fs := pflag.NewFlagSet("app", pflag.ExitOnError)
	configPath := fs.String("config", "", "configuration file (yaml or json)")
	config.AddFlag(fs, "files.track", "track file used by export (E) and import (I)")
	config.AddFlag(fs, "logLevel", "log level: debug, info, warn, error")
	config.AddFlag(fs, "track.width", "track width in meters")
	config.AddFlag(fs, "track.closeLoop", "start with a closed loop")
	config.AddFlag(fs, "grid.enabled", "start with grid snapping enabled")
	config.AddFlag(fs, "grid.size", "grid size in meters")
	fs.Parse(os.Args[1:])

	boot := logging.New(os.Stderr, "info")

	v := config.New()
	if err := config.BindFlags(v, fs); err != nil {
		boot.Fatal().Err(err).Msg("Failed to bind flags")
	}
	cfg, err := config.Load(v, *configPath)
	if err != nil {
		boot.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log := logging.New(os.Stderr, cfg.LogLevel)

	ctrl := editor.NewController(cfg.Params(), cfg.ViewTransform(), log)
	if _, err := os.Stat(cfg.Files.Track); err == nil {
		if _, err := ctrl.ImportFile(cfg.Files.Track); err != nil {
			log.Warn().Err(err).Msg("Could not build the imported track")
		}
	}

	game := &Game{
		Ctrl:       ctrl,
		Log:        log,
		TrackPath:  cfg.Files.Track,
		ConeRadius: cfg.Cones.Radius,
		Width:      cfg.View.CanvasWidth,
		Height:     cfg.View.CanvasHeight,
		Status:     "Click to add waypoints",
	}

	ebiten.SetWindowSize(game.Width, game.Height)
	ebiten.SetWindowTitle("FS Track Builder")

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal().Err(err).Msg("Editor stopped")
	}
}
