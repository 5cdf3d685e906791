package session

import (
	"time"

	"github.com/vibelink/vibelink/signal"
)

const (
	// DrawFlushInterval is the minimum gap between outbound point batches.
	DrawFlushInterval = 100 * time.Millisecond

	// DrawFadeInterval is how often the canvas decays.
	DrawFadeInterval = 100 * time.Millisecond

	// drawFadeFactor is the per-tick opacity multiplier.
	drawFadeFactor = 0.95

	// drawOpacityFloor is the alpha below which a stamp disappears.
	drawOpacityFloor = 0.05
)

// CanvasStamp is one rendered point with its remaining opacity.
type CanvasStamp struct {
	Point signal.Point
	Color string
	Alpha float64
}

// Canvas is the time-decayed drawing surface. Strokes are never
// persisted: every stamp fades toward the opacity floor and is dropped,
// which is the mechanism that keeps the surface history-free.
type Canvas struct {
	stamps []CanvasStamp
}

// StampPoints adds points at full opacity.
func (c *Canvas) StampPoints(points []signal.Point, color string) {
	for _, p := range points {
		c.stamps = append(c.stamps, CanvasStamp{Point: p, Color: color, Alpha: 1})
	}
}

// Fade applies one decay step. Fading an already-blank canvas is a no-op;
// stamps that sink below the opacity floor are removed.
func (c *Canvas) Fade() {
	if len(c.stamps) == 0 {
		return
	}
	kept := c.stamps[:0]
	for _, s := range c.stamps {
		s.Alpha *= drawFadeFactor
		if s.Alpha >= drawOpacityFloor {
			kept = append(kept, s)
		}
	}
	c.stamps = kept
}

// Stamps returns the current visible stamps.
func (c *Canvas) Stamps() []CanvasStamp { return c.stamps }

// Blank reports whether nothing is visible.
func (c *Canvas) Blank() bool { return len(c.stamps) == 0 }

// Draw streams normalized stroke points between the peers. Local movement
// renders immediately and is buffered; buffered points flush to the peer
// at most every DrawFlushInterval. There is no other session state: the
// canvas fades instead of remembering.
type Draw struct {
	env Env

	color     string
	buffer    []signal.Point
	lastFlush time.Time
	canvas    Canvas
	fadeTimer *time.Timer
	fading    bool

	// OnRemote, when set, is told about every inbound point batch so a
	// presentation layer can render it.
	OnRemote func(points []signal.Point, color string)

	// now is injectable for flush-interval tests.
	now func() time.Time
}

// NewDraw creates a drawing machine with the default stroke color.
func NewDraw(env Env) *Draw {
	return &Draw{env: env, color: signal.DefaultDrawColor, now: time.Now}
}

// Start invites the peer into draw mode and begins the canvas decay.
// Starting while already fading is a no-op.
func (d *Draw) Start() {
	if d.fading {
		return
	}
	d.env.emit(signal.CategoryDraw, signal.ActionInvite, nil)
	d.StartFading()
}

// SetColor selects the local stroke color.
func (d *Draw) SetColor(color string) {
	if color != "" {
		d.color = color
	}
}

// Canvas exposes the decaying surface.
func (d *Draw) Canvas() *Canvas { return &d.canvas }

// AddPoint records one locally drawn point (normalized 0..1), renders it
// immediately, and flushes the buffer if the flush interval has elapsed.
func (d *Draw) AddPoint(p signal.Point) {
	d.canvas.StampPoints([]signal.Point{p}, d.color)
	d.buffer = append(d.buffer, p)

	if d.now().Sub(d.lastFlush) >= DrawFlushInterval {
		d.Flush()
	}
}

// Flush sends the buffered points, if any, as one draw.data batch.
func (d *Draw) Flush() {
	if len(d.buffer) == 0 {
		return
	}
	points := d.buffer
	d.buffer = nil
	d.lastFlush = d.now()

	d.env.emit(signal.CategoryDraw, signal.ActionData, &signal.DrawPayload{
		Points: points,
		Color:  d.color,
	})
}

// Handle processes an inbound draw signal.
func (d *Draw) Handle(sig *signal.Signal) {
	if sig.Action != signal.ActionData {
		return
	}
	p := sig.Draw()
	if p == nil {
		return
	}

	d.canvas.StampPoints(p.Points, p.Color)
	if d.OnRemote != nil {
		d.OnRemote(p.Points, p.Color)
	}
}

// StartFading begins the periodic canvas decay. Runs until the mode is
// left.
func (d *Draw) StartFading() {
	if d.fading {
		return
	}
	d.fading = true
	d.scheduleFade()
}

func (d *Draw) scheduleFade() {
	d.fadeTimer = time.AfterFunc(DrawFadeInterval, func() {
		d.env.post(func() {
			if !d.fading {
				return
			}
			d.canvas.Fade()
			d.scheduleFade()
		})
	})
}

func (d *Draw) cancelTimers() {
	d.fading = false
	if d.fadeTimer != nil {
		d.fadeTimer.Stop()
		d.fadeTimer = nil
	}
}

// reset blanks the surface and drops any unflushed points, used when the
// mode is exited.
func (d *Draw) reset() {
	d.cancelTimers()
	d.canvas = Canvas{}
	d.buffer = nil
	d.lastFlush = time.Time{}
	d.color = signal.DefaultDrawColor
}
