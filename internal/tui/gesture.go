package tui

import "time"

// swipeDirection is the outcome of a recognized horizontal swipe.
type swipeDirection int

const (
	swipeNone swipeDirection = iota
	swipeLeft
	swipeRight
)

// gestureRecognizer turns press/release mouse pairs into horizontal swipes.
// A drag counts as a swipe only above a minimum distance and velocity, and
// only when horizontal displacement dominates vertical, so sloppy clicks and
// vertical scrolling never turn pages.
type gestureRecognizer struct {
	minDistance int     // cells
	minVelocity float64 // cells per second

	tracking bool
	startX   int
	startY   int
	startAt  time.Time

	now func() time.Time
}

func newGestureRecognizer(minDistance int, minVelocity float64) *gestureRecognizer {
	if minDistance < 1 {
		minDistance = 1
	}
	return &gestureRecognizer{
		minDistance: minDistance,
		minVelocity: minVelocity,
		now:         time.Now,
	}
}

// press starts tracking a potential swipe.
func (g *gestureRecognizer) press(x, y int) {
	g.tracking = true
	g.startX, g.startY = x, y
	g.startAt = g.now()
}

// release ends tracking and classifies the gesture.
func (g *gestureRecognizer) release(x, y int) swipeDirection {
	if !g.tracking {
		return swipeNone
	}
	g.tracking = false

	dx := x - g.startX
	dy := y - g.startY
	absDX, absDY := abs(dx), abs(dy)

	if absDX < g.minDistance || absDX <= absDY {
		return swipeNone
	}

	elapsed := g.now().Sub(g.startAt).Seconds()
	if elapsed <= 0 {
		elapsed = 1e-3
	}
	if float64(absDX)/elapsed < g.minVelocity {
		return swipeNone
	}

	if dx < 0 {
		return swipeLeft
	}
	return swipeRight
}

// cancel aborts tracking, used when another event interrupts a drag.
func (g *gestureRecognizer) cancel() {
	g.tracking = false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
