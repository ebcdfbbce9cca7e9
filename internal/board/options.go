package board

import (
	"fmt"

	"checkers/internal/core"
)

// Options configure a board. They are immutable once a Board is built.
type Options struct {
	Name          string `json:"name" yaml:"name" validate:"max=64"`
	Width         int    `json:"width" yaml:"width" validate:"min=4,max=26,even"`
	Height        int    `json:"height" yaml:"height" validate:"min=8,max=26,even"`
	MandatoryTake bool   `json:"mandatoryTake" yaml:"mandatory_take"`
	BlackStarts   bool   `json:"blackStarts" yaml:"black_starts"`
}

// DefaultOptions is the standard 8x8 game with black to move first.
func DefaultOptions() Options {
	return Options{
		Name:        "Standard game",
		Width:       8,
		Height:      8,
		BlackStarts: true,
	}
}

// Validate checks the dimension preconditions every board relies on.
func (o Options) Validate() error {
	if err := core.Validate.Struct(o); err != nil {
		return fmt.Errorf("invalid board options: %s", core.DescribeValidation(err))
	}
	return nil
}

// StartingColor returns the side that moves first.
func (o Options) StartingColor() core.Color {
	return core.ColorFromBlack(o.BlackStarts)
}

func (o Options) String() string {
	return fmt.Sprintf("%s: %dx%d, mandatory take: %t, black starts: %t",
		o.Name, o.Width, o.Height, o.MandatoryTake, o.BlackStarts)
}
