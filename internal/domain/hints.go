package domain

import "strings"

// HintFlags is a bitmask of performance hints a session can request.
// Flags are independently combinable.
type HintFlags uint32

const (
	// HintEarlyWakeup requests an earlier compositor wakeup so the
	// compositor has more time to assemble a frame. Global scope.
	HintEarlyWakeup HintFlags = 1 << 0
	// HintFrameRate forces the maximum display refresh rate. Per-display
	// scope; requires a resolvable display root.
	HintFrameRate HintFlags = 1 << 1
	// HintADPFBoost requests elevated CPU/GPU clocks through the load-hint
	// channel. Global scope; requires a configured channel.
	HintADPFBoost HintFlags = 1 << 2
)

const (
	// HintPerDisplay is the set of hints applied per display root.
	HintPerDisplay = HintFrameRate
	// HintGlobal is the set of hints applied process-wide.
	HintGlobal = HintEarlyWakeup | HintADPFBoost
	// HintAll combines every known hint.
	HintAll = HintEarlyWakeup | HintFrameRate | HintADPFBoost
)

// Has reports whether all bits in check are set.
func (f HintFlags) Has(check HintFlags) bool {
	return f&check == check
}

func (f HintFlags) String() string {
	if f == 0 {
		return "none"
	}
	var parts []string
	if f.Has(HintEarlyWakeup) {
		parts = append(parts, "early_wakeup")
	}
	if f.Has(HintFrameRate) {
		parts = append(parts, "frame_rate")
	}
	if f.Has(HintADPFBoost) {
		parts = append(parts, "adpf_boost")
	}
	return strings.Join(parts, "|")
}

// DisplayID identifies a physical or virtual display.
type DisplayID int32

// GlobalDisplay is the scope value for sessions that carry no per-display
// hints. It never resolves to a display root.
const GlobalDisplay DisplayID = -1

// RootHandle is the opaque compositor surface node at the root of a
// display's layer tree. Frame-rate overrides set on it are inherited by
// all children.
type RootHandle uint64

// LoadHint is a signal sent over the load-hint channel.
type LoadHint int

const (
	// LoadUp asks the platform to raise CPU/GPU clocks.
	LoadUp LoadHint = iota
	// LoadReset returns clock selection to the platform default.
	LoadReset
)

func (l LoadHint) String() string {
	switch l {
	case LoadUp:
		return "load_up"
	case LoadReset:
		return "load_reset"
	default:
		return "unknown"
	}
}
