package viewer

import (
	"fmt"
	"math"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/taigrr/marionette/pkg/models"
)

var (
	hudBase  = lipgloss.NewStyle().Background(lipgloss.Color("#000000")).Foreground(lipgloss.Color("#FFFFFF"))
	hudFPS   = hudBase.Foreground(lipgloss.Color("#5FFF87"))
	hudTitle = hudBase.Bold(true)
	hudInfo  = hudBase.Foreground(lipgloss.Color("#5FFFFF"))
	hudHint  = hudBase.Foreground(lipgloss.Color("#FFFF5F")).Faint(true)
)

// HUD renders the status lines shown over the viewport.
type HUD struct {
	name      string
	bones     int
	triangles int
	period    float64

	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

// NewHUD creates a HUD describing m.
func NewHUD(m *models.Model) *HUD {
	h := &HUD{
		name:      m.Name,
		triangles: m.TriangleCount(),
		period:    m.Animator().Period(),
		fpsTime:   time.Now(),
	}
	if m.Skeleton != nil {
		h.bones = m.Skeleton.Len()
	}
	return h
}

// UpdateFPS updates the FPS counter (call once per frame).
func (h *HUD) UpdateFPS() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

// FPS returns the last measured frame rate.
func (h *HUD) FPS() float64 {
	return h.fps
}

// Top returns the title line: frame rate, model name and sizes.
func (h *HUD) Top(width int) string {
	left := hudFPS.Render(fmt.Sprintf(" %.0f FPS ", h.fps))
	title := hudTitle.Render(" " + h.name + " ")
	right := hudInfo.Render(fmt.Sprintf(" %d bones  %d tris ", h.bones, h.triangles))
	return spread(width, left, title, right)
}

// Bottom returns the status line: toggles and playback position.
func (h *HUD) Bottom(width int, view *ViewState) string {
	check := func(on bool, label string) string {
		if on {
			return "[✓] " + label
		}
		return "[ ] " + label
	}
	modes := hudBase.Render(" " + strings.Join([]string{
		check(view.ShowMesh, "Mesh (m)"),
		check(view.ShowSkeleton, "Skeleton (s)"),
		check(view.ShowBounds, "Bounds (b)"),
		check(view.ShowGrid, "Grid (g)"),
	}, "  ") + " ")

	state := "▶"
	if view.Paused {
		state = "⏸"
	}
	clock := fmt.Sprintf(" %s %.2fs ", state, view.Seconds())
	if h.period > 0 {
		clock = fmt.Sprintf(" %s %.2f/%.2fs ", state, math.Mod(view.Seconds(), h.period), h.period)
	}
	return spread(width, modes, "", hudHint.Render(clock))
}

// spread lays out three styled parts left, centered and right within width.
func spread(width int, left, center, right string) string {
	lw, cw, rw := lipgloss.Width(left), lipgloss.Width(center), lipgloss.Width(right)
	gap := width - lw - cw - rw
	if gap < 2 {
		return left + center + right
	}
	leftGap := min(gap, max(0, (width-cw)/2-lw))
	rightGap := gap - leftGap
	return left + strings.Repeat(" ", leftGap) + center + strings.Repeat(" ", rightGap) + right
}
