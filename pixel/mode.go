package pixel

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidImage     = errors.New("invalid image")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrUnsupportedMode  = errors.New("unsupported sampling mode")
)

// Mode selects how a grid cell picks its representative color. The set is
// closed; Transform dispatches over it with a single switch.
type Mode int

const (
	// ModeNearest takes the source pixel nearest the cell center.
	ModeNearest Mode = iota
	// ModeAverage takes the channel-wise mean of all pixels in the cell.
	ModeAverage
)

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "nearest":
		return ModeNearest, nil
	case "average":
		return ModeAverage, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedMode, s)
}

func (m Mode) String() string {
	switch m {
	case ModeNearest:
		return "nearest"
	case ModeAverage:
		return "average"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}
