package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/san-kum/mppi/internal/control"
	"github.com/san-kum/mppi/internal/dynamo"
)

const (
	liveWidth   = 70
	liveHeight  = 20
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// LiveRenderer is a [dynamo.Observer] that draws the closed loop as ANSI
// frames. When attached to a receding-horizon controller it additionally
// ghosts the planner's predicted rollout behind the current state.
type LiveRenderer struct {
	model     string
	frameRate int
	lastFrame time.Time
	canvas    [][]rune
	receding  *control.Receding
}

func NewLiveRenderer(model string, frameRate int) *LiveRenderer {
	canvas := make([][]rune, liveHeight)
	for i := range canvas {
		canvas[i] = make([]rune, liveWidth)
	}
	fmt.Print(hideCursor)
	return &LiveRenderer{
		model:     model,
		frameRate: frameRate,
		canvas:    canvas,
	}
}

// AttachPlanner enables the predicted-rollout ghost.
func (r *LiveRenderer) AttachPlanner(rec *control.Receding) {
	r.receding = rec
}

func (r *LiveRenderer) Close() {
	fmt.Print(showCursor)
}

func (r *LiveRenderer) OnStep(x dynamo.State, u dynamo.Control, t float64) {
	elapsed := time.Since(r.lastFrame)
	if elapsed < time.Second/time.Duration(r.frameRate) {
		return
	}
	r.lastFrame = time.Now()

	r.clear()

	if r.receding != nil {
		for _, s := range r.receding.LastPlan.Rollout {
			r.drawState(s, '·')
		}
	}
	r.drawState(x, '●')

	r.render(x, u, t)
}

func (r *LiveRenderer) drawState(x dynamo.State, c rune) {
	switch r.model {
	case "cartpole":
		r.drawCartpole(x, c)
	default:
		r.drawPendulum(x, c)
	}
}

func (r *LiveRenderer) clear() {
	for y := range r.canvas {
		for x := range r.canvas[y] {
			r.canvas[y][x] = ' '
		}
	}
}

func (r *LiveRenderer) set(x, y int, c rune) {
	if x >= 0 && x < liveWidth && y >= 0 && y < liveHeight {
		r.canvas[y][x] = c
	}
}

func (r *LiveRenderer) line(x1, y1, x2, y2 int, c rune) {
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy
	for {
		r.set(x1, y1, c)
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

func (r *LiveRenderer) drawPendulum(x dynamo.State, tip rune) {
	cx, cy := liveWidth/2, liveHeight/2
	length := 8.0

	theta := x[0]
	px := cx + int(length*math.Sin(theta))
	py := cy - int(length*math.Cos(theta))

	if tip == '●' {
		r.line(cx, cy, px, py, '│')
		r.set(cx, cy, '┼')
	}
	r.set(px, py, tip)
}

func (r *LiveRenderer) drawCartpole(x dynamo.State, tip rune) {
	cy := liveHeight - 4
	cx := liveWidth/2 + int(x[0]*5)
	length := 8.0

	theta := x[2]
	px := cx + int(length*math.Sin(theta))
	py := cy - int(length*math.Cos(theta))

	if tip == '●' {
		for i := -2; i <= 2; i++ {
			r.set(cx+i, cy, '▬')
		}
		r.line(cx, cy-1, px, py, '│')
	}
	r.set(px, py, tip)
}

func (r *LiveRenderer) render(x dynamo.State, u dynamo.Control, t float64) {
	var b strings.Builder
	b.WriteString(clearScreen)
	for _, row := range r.canvas {
		b.WriteString(string(row))
		b.WriteString("\n")
	}

	b.WriteString(labelStyle.Render(fmt.Sprintf(" t=%6.2fs", t)))
	if len(u) > 0 {
		b.WriteString(labelStyle.Render(fmt.Sprintf("  u=%+7.3f", u[0])))
	}
	if r.receding != nil {
		b.WriteString(labelStyle.Render(fmt.Sprintf("  plan=%s", r.receding.LastLatency.Round(time.Microsecond))))
	}
	b.WriteString("\n")

	fmt.Print(b.String())
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
