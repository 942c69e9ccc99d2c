package stealth

import (
	"math/rand"
	"time"
)

// Default bounds of the pause after each keystroke
const (
	DefaultKeyDelayMin = 30 * time.Millisecond
	DefaultKeyDelayMax = 50 * time.Millisecond
)

// KeyAction represents a single keystroke followed by a pause
type KeyAction struct {
	Key   string        // Character to send
	Delay time.Duration // Pause after the keystroke
}

// Keyboard plans human-like typing: one keystroke per character with a
// randomized pause after each, to avoid the fixed cadence bots are flagged for
type Keyboard struct {
	jitter   *Jitter
	delayMin time.Duration
	delayMax time.Duration
}

// NewKeyboard creates a Keyboard pausing strictly between min and max.
// Bounds that do not leave room for a value are replaced by the defaults.
func NewKeyboard(min, max time.Duration) *Keyboard {
	if min <= 0 || max-min < 2 {
		min, max = DefaultKeyDelayMin, DefaultKeyDelayMax
	}
	return &Keyboard{
		jitter:   NewJitter(),
		delayMin: min,
		delayMax: max,
	}
}

// NewKeyboardWithSource is NewKeyboard with a deterministic random source
func NewKeyboardWithSource(min, max time.Duration, src rand.Source) *Keyboard {
	k := NewKeyboard(min, max)
	k.jitter = NewJitterWithSource(src)
	return k
}

// Plan splits text into characters (runes, so multi-byte input stays intact)
// and attaches a pause to each
func (k *Keyboard) Plan(text string) []KeyAction {
	runes := []rune(text)
	actions := make([]KeyAction, 0, len(runes))
	for _, r := range runes {
		actions = append(actions, KeyAction{
			Key:   string(r),
			Delay: k.nextDelay(),
		})
	}
	return actions
}

// Bounds returns the exclusive delay bounds
func (k *Keyboard) Bounds() (time.Duration, time.Duration) {
	return k.delayMin, k.delayMax
}

// nextDelay returns a duration in the open interval (delayMin, delayMax)
func (k *Keyboard) nextDelay() time.Duration {
	span := int64(k.delayMax - k.delayMin)
	return k.delayMin + time.Duration(k.jitter.RandomInt64(1, span-1))
}
