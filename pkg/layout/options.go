package layout

import (
	"errors"
	"fmt"
	"math"
)

// Mode names a vertical step policy.
type Mode string

const (
	// ModeFixed drops every tree level by a constant.
	ModeFixed Mode = "fixed"
	// ModeRSSI drops each child by a multiple of its link's |RSSI|.
	ModeRSSI Mode = "rssi"
)

// Defaults.
const (
	DefaultSpacing   = 5.0
	DefaultStep      = 1.0
	DefaultRSSIScale = 0.05
)

var (
	// ErrInvalidSpacing is returned when Spacing is not positive.
	ErrInvalidSpacing = errors.New("spacing must be positive")
	// ErrInvalidStep is returned when the step value is not positive.
	ErrInvalidStep = errors.New("step must be positive")
	// ErrUnknownMode is returned for a step mode other than fixed or rssi.
	ErrUnknownMode = errors.New("unknown step mode")
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeFixed, ModeRSSI:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q (want %q or %q)", ErrUnknownMode, s, ModeFixed, ModeRSSI)
}

// Step is the vertical distance between a node and one of its children.
type Step struct {
	Mode  Mode
	Value float64 // delta for ModeFixed, scale for ModeRSSI
}

// Fixed returns a step that drops every level by delta.
func Fixed(delta float64) Step { return Step{Mode: ModeFixed, Value: delta} }

// RSSIWeighted returns a step that drops a child by scale*|rssi|.
func RSSIWeighted(scale float64) Step { return Step{Mode: ModeRSSI, Value: scale} }

// Apply returns the child's y given its parent's y and its link RSSI.
func (s Step) Apply(y, rssi float64) float64 {
	if s.Mode == ModeRSSI {
		return y - s.Value*math.Abs(rssi)
	}
	return y - s.Value
}

// Options configures [Tree].
type Options struct {
	Spacing float64 // horizontal distance between sibling slots
	Step    Step
}

// DefaultOptions returns spacing 5 with a fixed step of 1.
func DefaultOptions() Options {
	return Options{Spacing: DefaultSpacing, Step: Fixed(DefaultStep)}
}

// Validate reports the first invalid field.
func (o Options) Validate() error {
	if !(o.Spacing > 0) {
		return fmt.Errorf("%w: %v", ErrInvalidSpacing, o.Spacing)
	}
	if _, err := ParseMode(string(o.Step.Mode)); err != nil {
		return err
	}
	if !(o.Step.Value > 0) {
		return fmt.Errorf("%w: %v", ErrInvalidStep, o.Step.Value)
	}
	return nil
}
