package dice

import (
	"math/rand"
	"sync"
	"time"
)

// Roller picks secrets: a uniform roll of an n-sided die.
type Roller struct {
	mu     sync.Mutex // *rand.Rand is not safe for concurrent use
	random *rand.Rand
}

// Config for dice roller
type Config struct {
	// Optional seed for testing; zero means time-based
	Seed int64
}

// New creates a new dice roller
func New(cfg *Config) *Roller {
	var seed int64
	if cfg != nil && cfg.Seed != 0 {
		seed = cfg.Seed
	} else {
		seed = time.Now().UnixNano()
	}

	return &Roller{
		random: rand.New(rand.NewSource(seed)),
	}
}

// Roll returns a value in [1, sides]. Sides below 1 are treated as 1.
func (r *Roller) Roll(sides int) int {
	if sides < 1 {
		sides = 1
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.random.Intn(sides) + 1
}
