package build

import "strings"

// BallColor is a presentation status token summarizing the state of an event
// or build for the dashboard. Animated variants carry an "_anime" suffix and
// indicate work still in progress.
type BallColor string

const (
	// BallBlue indicates success
	BallBlue BallColor = "blue"
	// BallYellow indicates an unstable result
	BallYellow BallColor = "yellow"
	// BallRed indicates failure
	BallRed BallColor = "red"
	// BallGrey indicates pending / no result yet
	BallGrey BallColor = "grey"
	// BallDisabled indicates nothing was triggered
	BallDisabled BallColor = "disabled"
	// BallAborted indicates a cancelled run
	BallAborted BallColor = "aborted"
	// BallNotBuilt indicates a skipped run
	BallNotBuilt BallColor = "notbuilt"
)

const animeSuffix = "_anime"

// Anime returns the animated variant of the color.
func (c BallColor) Anime() BallColor {
	if c.IsAnimated() {
		return c
	}
	return c + animeSuffix
}

// IsAnimated reports whether the token is an animated (in-progress) variant.
func (c BallColor) IsAnimated() bool {
	return strings.HasSuffix(string(c), animeSuffix)
}

// Base strips the animation suffix, if any.
func (c BallColor) Base() BallColor {
	return BallColor(strings.TrimSuffix(string(c), animeSuffix))
}

// String returns the token as a plain string.
func (c BallColor) String() string {
	return string(c)
}
