// marionette-window - Skinned model viewer in a desktop window.
//
// Controls:
//
//	Mouse drag  - Orbit
//	Scroll      - Zoom in/out
//	Arrows      - Orbit
//	Space       - Pause/resume
//	M/S/B/G     - Toggle mesh, skeleton, bounds, grid
//	R           - Reset view
//	H           - Toggle HUD
//	Esc         - Quit
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/ansi"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/spf13/cobra"
	"github.com/taigrr/marionette/internal/config"
	"github.com/taigrr/marionette/pkg/models"
	"github.com/taigrr/marionette/pkg/pose"
	"github.com/taigrr/marionette/pkg/render"
	"github.com/taigrr/marionette/pkg/viewer"
)

var version = "dev"

// errQuit ends the game loop without reporting an error.
var errQuit = errors.New("quit")

func main() {
	if err := fang.Execute(context.Background(), newRootCmd(), fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath    string
		flags         config.Flags
		width, height int
	)

	cmd := &cobra.Command{
		Use:          "marionette-window <model.gltf|model.glb>",
		Short:        "Play a skinned model in a desktop window",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cfg.Resolve(flags)
			lvl, err := cfg.Level()
			if err != nil {
				return err
			}
			logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "marionette", Level: lvl})

			opts := append(cfg.LoaderOptions(), models.WithLogger(logger))
			m, err := models.NewLoader(opts...).LoadFile(args[0])
			if err != nil {
				return err
			}
			logger.Info("loaded", "model", m.Name, "triangles", m.TriangleCount(), "bones", m.Skeleton.Len())

			g, err := newGame(m, cfg, width, height)
			if err != nil {
				return err
			}
			ebiten.SetWindowTitle("marionette - " + filepath.Base(args[0]))
			ebiten.SetWindowSize(width, height)
			ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
			ebiten.SetTPS(cfg.FPS)
			if err := ebiten.RunGame(g); err != nil && !errors.Is(err, errQuit) {
				return fmt.Errorf("window: %w", err)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&configPath, "config", "", "Path to a JSON config file")
	f.StringVar(&flags.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	f.Float64Var(&flags.Rate, "rate", 0, "Playback rate in ticks per second (0 uses the clip's)")
	f.IntVar(&flags.MaxBones, "max-bones", 0, "Bone limit including the root (negative disables)")
	f.IntVar(&flags.FPS, "fps", 0, "Target FPS")
	f.IntVar(&width, "width", 960, "Window width")
	f.IntVar(&height, "height", 720, "Window height")
	return cmd
}

// game runs the viewer inside ebiten. Update and Draw share one goroutine,
// so the view state needs no locking.
type game struct {
	model    *models.Model
	animator *pose.Animator
	renderer *viewer.Renderer
	view     *viewer.ViewState
	hud      *viewer.HUD
	fps      int

	fbImg *ebiten.Image

	dragging bool
	lastX    int
	lastY    int
	frame    pose.Frame
}

func newGame(m *models.Model, cfg config.Config, width, height int) (*game, error) {
	bgR, bgG, bgB, err := cfg.BackgroundRGB()
	if err != nil {
		return nil, err
	}

	renderer := viewer.NewRenderer(width, height)
	renderer.Background = render.RGB(bgR, bgG, bgB)

	view := viewer.NewViewState(cfg.FPS)
	view.ShowMesh = cfg.ShowMesh
	view.ShowSkeleton = cfg.ShowSkeleton
	view.ShowBounds = cfg.ShowBounds
	view.ShowGrid = cfg.ShowGrid

	return &game{
		model:    m,
		animator: m.Animator(),
		renderer: renderer,
		view:     view,
		hud:      viewer.NewHUD(m),
		fps:      cfg.FPS,
	}, nil
}

// keyActions change the view on the frame a key goes down.
var keyActions = []struct {
	key ebiten.Key
	do  func(v *viewer.ViewState)
}{
	{ebiten.KeySpace, (*viewer.ViewState).TogglePause},
	{ebiten.KeyM, func(v *viewer.ViewState) { v.ShowMesh = !v.ShowMesh }},
	{ebiten.KeyS, func(v *viewer.ViewState) { v.ShowSkeleton = !v.ShowSkeleton }},
	{ebiten.KeyB, func(v *viewer.ViewState) { v.ShowBounds = !v.ShowBounds }},
	{ebiten.KeyG, func(v *viewer.ViewState) { v.ShowGrid = !v.ShowGrid }},
	{ebiten.KeyR, (*viewer.ViewState).Reset},
	{ebiten.KeyH, func(v *viewer.ViewState) { v.ShowHUD = !v.ShowHUD }},
}

// orbitKeys keep spinning the view while held.
var orbitKeys = []struct {
	key    ebiten.Key
	dx, dy float64
}{
	{ebiten.KeyArrowLeft, -1, 0},
	{ebiten.KeyArrowRight, 1, 0},
	{ebiten.KeyArrowUp, 0, -1},
	{ebiten.KeyArrowDown, 0, 1},
}

// applyKeys runs this frame's keyboard input against v. pressed reports keys
// that went down this frame, held keys that are down.
func applyKeys(v *viewer.ViewState, pressed, held func(ebiten.Key) bool) {
	for _, k := range keyActions {
		if pressed(k.key) {
			k.do(v)
		}
	}
	for _, k := range orbitKeys {
		if held(k.key) {
			v.Drag(k.dx, k.dy)
		}
	}
}

// pixelDrag scales cursor motion, which is much finer than terminal cells.
const pixelDrag = 0.15

// pointer orbits the view while the left button stays down.
func (g *game) pointer(x, y int, down bool) {
	if down && g.dragging {
		g.view.Drag(float64(x-g.lastX)*pixelDrag, float64(y-g.lastY)*pixelDrag)
	}
	g.dragging = down
	g.lastX, g.lastY = x, y
}

// step advances playback by one tick and samples the clip.
func (g *game) step() {
	g.view.Advance(1 / float64(g.fps))
	g.frame = g.animator.Update(g.view.Seconds())
}

func (g *game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return errQuit
	}
	applyKeys(g.view, inpututil.IsKeyJustPressed, ebiten.IsKeyPressed)

	x, y := ebiten.CursorPosition()
	g.pointer(x, y, ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft))
	if _, wy := ebiten.Wheel(); wy != 0 {
		g.view.Zoom(wy)
	}

	g.step()
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	g.renderer.Draw(g.model, g.frame, g.view)
	fb := g.renderer.Framebuffer()

	if g.fbImg == nil || g.fbImg.Bounds().Dx() != fb.Width || g.fbImg.Bounds().Dy() != fb.Height {
		if g.fbImg != nil {
			g.fbImg.Deallocate()
		}
		g.fbImg = ebiten.NewImage(fb.Width, fb.Height)
	}

	// Every pixel is opaque after the renderer clears, so the RGBA bytes
	// are already premultiplied.
	g.fbImg.WritePixels(fb.Image().Pix)
	screen.DrawImage(g.fbImg, nil)

	g.hud.UpdateFPS()
	if g.view.ShowHUD {
		// The HUD lines are styled for terminals; the window prints them plain.
		cols := fb.Width / 6
		ebitenutil.DebugPrint(screen, ansi.Strip(g.hud.Top(cols))+"\n"+ansi.Strip(g.hud.Bottom(cols, g.view)))
	}
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if fb := g.renderer.Framebuffer(); fb.Width != outsideWidth || fb.Height != outsideHeight {
		g.renderer.Resize(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}
