// Package anim coordinates per-row transitions for flattree: one handle
// per animating node key, advanced by an idempotent frame tick and
// released exactly once, on natural completion or forced disposal.
package anim

import (
	"fmt"
	"math"
)

// Curve maps linear time fraction t in [0,1] to eased progress in [0,1].
// Curves must be monotonic with Curve(0)=0 and Curve(1)=1.
type Curve func(t float64) float64

// Linear is the identity curve.
func Linear(t float64) float64 { return t }

// EaseOutCubic decelerates towards the end. This is the default: rows pop
// in quickly and settle.
func EaseOutCubic(t float64) float64 {
	u := 1 - t
	return 1 - u*u*u
}

// EaseInOutSine accelerates then decelerates symmetrically.
func EaseInOutSine(t float64) float64 {
	return -(math.Cos(math.Pi*t) - 1) / 2
}

// CurveByName resolves a configuration name to a curve. Recognized names:
// "linear", "ease-out-cubic", "ease-in-out-sine".
func CurveByName(name string) (Curve, error) {
	switch name {
	case "", "ease-out-cubic":
		return EaseOutCubic, nil
	case "linear":
		return Linear, nil
	case "ease-in-out-sine":
		return EaseInOutSine, nil
	default:
		return nil, fmt.Errorf("anim: unknown easing curve %q", name)
	}
}
