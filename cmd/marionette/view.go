package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/spf13/cobra"
	"github.com/taigrr/marionette/pkg/models"
	"github.com/taigrr/marionette/pkg/render"
	"github.com/taigrr/marionette/pkg/viewer"
)

const viewControls = `Controls:
  Mouse drag  - Orbit
  Scroll      - Zoom in/out
  Arrows      - Orbit
  +/-         - Zoom
  Space       - Pause/resume
  M/S/B/G     - Toggle mesh, skeleton, bounds, grid
  R           - Reset view
  ?           - Toggle HUD
  Esc         - Quit`

func newViewCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view <model.gltf|model.glb>",
		Short: "Play a model in the terminal",
		Long:  "Play a model's first animation in the terminal.\n\n" + viewControls,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.loadModel(args[0])
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.view(ctx, m)
		},
	}
	cmd.Flags().IntVar(&a.flags.FPS, "fps", 0, "Target FPS")
	return cmd
}

// Any-event mouse tracking with SGR coordinates, so drags report motion.
const (
	mouseOn  = "\x1b[?1003h\x1b[?1006h"
	mouseOff = "\x1b[?1003l\x1b[?1006l"
)

// session is the state shared by the terminal event goroutine and the frame
// loop. mu guards every field.
type session struct {
	mu   sync.Mutex
	view *viewer.ViewState
	quit context.CancelFunc

	cols, rows int
	resized    bool

	dragging     bool
	dragX, dragY int
}

// keyActions maps key names to view changes. Quit is handled separately.
var keyActions = []struct {
	keys []string
	do   func(v *viewer.ViewState)
}{
	{[]string{"space"}, (*viewer.ViewState).TogglePause},
	{[]string{"m"}, func(v *viewer.ViewState) { v.ShowMesh = !v.ShowMesh }},
	{[]string{"s"}, func(v *viewer.ViewState) { v.ShowSkeleton = !v.ShowSkeleton }},
	{[]string{"b"}, func(v *viewer.ViewState) { v.ShowBounds = !v.ShowBounds }},
	{[]string{"g"}, func(v *viewer.ViewState) { v.ShowGrid = !v.ShowGrid }},
	{[]string{"?", "shift+/"}, func(v *viewer.ViewState) { v.ShowHUD = !v.ShowHUD }},
	{[]string{"r"}, (*viewer.ViewState).Reset},
	{[]string{"left"}, func(v *viewer.ViewState) { v.Drag(-3, 0) }},
	{[]string{"right"}, func(v *viewer.ViewState) { v.Drag(3, 0) }},
	{[]string{"up"}, func(v *viewer.ViewState) { v.Drag(0, -3) }},
	{[]string{"down"}, func(v *viewer.ViewState) { v.Drag(0, 3) }},
	{[]string{"+", "="}, func(v *viewer.ViewState) { v.Zoom(1) }},
	{[]string{"-", "_"}, func(v *viewer.ViewState) { v.Zoom(-1) }},
}

// matchKey reports whether ev is one of keys. MatchString reads "+" as a
// modifier separator, so a lone "+" is compared against the typed text.
func matchKey(ev uv.KeyPressEvent, keys []string) bool {
	for _, k := range keys {
		if k == "+" {
			if ev.Text == "+" {
				return true
			}
			continue
		}
		if ev.MatchString(k) {
			return true
		}
	}
	return false
}

func (s *session) handle(ev uv.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev := ev.(type) {
	case uv.WindowSizeEvent:
		s.cols, s.rows, s.resized = ev.Width, ev.Height, true
	case uv.KeyPressEvent:
		if ev.MatchString("escape", "ctrl+c") {
			s.quit()
			return
		}
		for _, k := range keyActions {
			if matchKey(ev, k.keys) {
				k.do(s.view)
				return
			}
		}
	case uv.MouseClickEvent:
		s.dragging, s.dragX, s.dragY = true, ev.X, ev.Y
	case uv.MouseReleaseEvent:
		s.dragging = false
	case uv.MouseMotionEvent:
		if s.dragging {
			s.view.Drag(float64(ev.X-s.dragX), float64(ev.Y-s.dragY))
			s.dragX, s.dragY = ev.X, ev.Y
		}
	case uv.MouseWheelEvent:
		if ev.Button == uv.MouseWheelUp {
			s.view.Zoom(1)
		} else if ev.Button == uv.MouseWheelDown {
			s.view.Zoom(-1)
		}
	}
}

// view runs the interactive loop until ctx ends or the user quits.
func (a *app) view(ctx context.Context, m *models.Model) (err error) {
	bgR, bgG, bgB, err := a.cfg.BackgroundRGB()
	if err != nil {
		return err
	}

	term := uv.DefaultTerminal()
	cols, rows, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(cols, rows)
	fmt.Fprint(os.Stdout, mouseOn)
	defer func() {
		fmt.Fprint(os.Stdout, mouseOff)
		term.ExitAltScreen()
		term.ShowCursor()
		if serr := term.Shutdown(context.Background()); err == nil && serr != nil {
			err = fmt.Errorf("stop terminal: %w", serr)
		}
	}()

	out := render.NewTerminalRenderer(term, cols, rows)
	renderer := viewer.NewRenderer(out.FramebufferSize())
	renderer.Background = render.RGB(bgR, bgG, bgB)
	animator := m.Animator()
	hud := viewer.NewHUD(m)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s := &session{view: viewer.NewViewState(a.cfg.FPS), quit: cancel, cols: cols, rows: rows}
	s.view.ShowMesh = a.cfg.ShowMesh
	s.view.ShowSkeleton = a.cfg.ShowSkeleton
	s.view.ShowBounds = a.cfg.ShowBounds
	s.view.ShowGrid = a.cfg.ShowGrid

	go func() {
		for ev := range term.Events() {
			s.handle(ev)
		}
	}()

	tick := time.NewTicker(time.Second / time.Duration(a.cfg.FPS))
	defer tick.Stop()
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-tick.C:
			// Long stalls, such as a suspended terminal, must not jump the
			// animation.
			dt := min(now.Sub(last).Seconds(), 0.1)
			last = now

			s.mu.Lock()
			if s.resized {
				s.resized = false
				term.Erase()
				term.Resize(s.cols, s.rows)
				out = render.NewTerminalRenderer(term, s.cols, s.rows)
				renderer.Resize(out.FramebufferSize())
			}
			s.view.Advance(dt)
			renderer.Draw(m, animator.Update(s.view.Seconds()), s.view)
			hud.UpdateFPS()
			var top, bottom string
			if s.view.ShowHUD {
				top, bottom = hud.Top(s.cols), hud.Bottom(s.cols, s.view)
			}
			bottomRow := s.rows - 1
			s.mu.Unlock()

			out.Render(renderer.Framebuffer())
			if top != "" {
				out.Overlay(0, top)
				out.Overlay(bottomRow, bottom)
			}
			if err := out.Flush(); err != nil {
				return fmt.Errorf("flush: %w", err)
			}
		}
	}
}
