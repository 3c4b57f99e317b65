package cfix

import "fmt"

// MaxData is the largest number of uint32 payload words an entry may carry.
const MaxData = 15

// Config configures a Table at creation time. Every field must be supplied
// explicitly - Go's named struct literals rule out the classic hazard of a
// short positional literal silently letting later fields shift into
// earlier ones - but Validate still rejects a Config assembled
// field-by-field into an inconsistent state.
type Config struct {
	// Start is the target key capacity used to seed the initial prime
	// index.
	Start uint32
	// Data is the number of uint32 payload words per entry, 0..MaxData.
	Data uint32
	// Depth is the cuckoo displacement recursion depth cap, typically 3-5.
	Depth uint32
	// Lower and Upper are fill-ratio thresholds in [0,1], Lower < Upper.
	Lower, Upper float64
	// Growth is the base multiplier applied to the prime index on grow.
	Growth float64
	// Attempt is the per-retry additive factor applied on grow.
	Attempt float64
	// Random is the coefficient of a uniform-[0,1] noise term added to the
	// grow factor, which is what lets repeated grow attempts escape an
	// adversarial insertion pattern that keeps re-colliding at the same
	// bin count.
	Random float64
}

// DefaultConfig returns sensible defaults for everyday use, with Lower set
// to 0.05 rather than 0.0 so that shrink is reachable without the caller
// having to know to override it. See DESIGN.md for the rationale.
func DefaultConfig() Config {
	return Config{
		Start:   112,
		Data:    1,
		Depth:   3,
		Lower:   0.05,
		Upper:   1.0,
		Growth:  1.5,
		Attempt: 0.5,
		Random:  0.5,
	}
}

// PublishedDefaultConfig returns the historically published defaults
// verbatim, including Lower: 0.0, under which shrink never triggers. Callers
// that want that behavior, or that plan to set Lower themselves, should use
// this constructor instead of DefaultConfig.
func PublishedDefaultConfig() Config {
	cfg := DefaultConfig()
	cfg.Lower = 0.0
	return cfg
}

// Validate reports whether cfg is internally consistent. It never panics:
// an invalid Config is user input, not a programming error inside the
// table, and is reported the same way every other operation refusal is.
func (cfg Config) Validate() error {
	if cfg.Data > MaxData {
		return fmt.Errorf("cfix: Data %d exceeds MaxData %d", cfg.Data, MaxData)
	}
	if cfg.Lower < 0 || cfg.Lower >= cfg.Upper || cfg.Upper > 1 {
		return fmt.Errorf("cfix: fill thresholds must satisfy 0 <= Lower < Upper <= 1, got Lower=%v Upper=%v", cfg.Lower, cfg.Upper)
	}
	if cfg.Depth == 0 {
		return fmt.Errorf("cfix: Depth must be at least 1")
	}
	return nil
}
