package wager

import "time"

// TimeControl identifies one of the supported clock configurations.
type TimeControl uint8

const (
	TimeControlBlitz32  TimeControl = 0 // 3 minutes + 2s label, no server-side increment
	TimeControlBullet11 TimeControl = 1 // 1 minute + 1s label, no server-side increment
)

const (
	blitzInitialClockMillis  = 180 * 1000
	bulletInitialClockMillis = 60 * 1000
)

// DefaultConfirmationWindow is how long both players have to fund the escrow
// after the match is created.
const DefaultConfirmationWindow = 10 * time.Second

// InitialClockMillis returns the per-player starting clock for this time
// control, or ErrInvalidTimeControl for unknown ids.
func (tc TimeControl) InitialClockMillis() (int64, error) {
	switch tc {
	case TimeControlBlitz32:
		return blitzInitialClockMillis, nil
	case TimeControlBullet11:
		return bulletInitialClockMillis, nil
	default:
		return 0, ErrInvalidTimeControl
	}
}

func (tc TimeControl) String() string {
	switch tc {
	case TimeControlBlitz32:
		return "blitz_3_2"
	case TimeControlBullet11:
		return "bullet_1_1"
	default:
		return "unknown"
	}
}

// ParseTimeControl maps an external identifier to a TimeControl.
func ParseTimeControl(s string) (TimeControl, error) {
	switch s {
	case "blitz", "blitz_3_2":
		return TimeControlBlitz32, nil
	case "bullet", "bullet_1_1":
		return TimeControlBullet11, nil
	default:
		return 0, ErrInvalidTimeControl
	}
}
