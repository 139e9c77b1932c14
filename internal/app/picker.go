package app

import (
	"math/rand"
	"sync"
	"time"
)

// RandomPicker draws a uniformly shuffled subset of the pool.
type RandomPicker struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewRandomPicker() *RandomPicker {
	return NewRandomPickerWithSeed(time.Now().UnixNano())
}

// NewRandomPickerWithSeed allows deterministic picks in tests.
func NewRandomPickerWithSeed(seed int64) *RandomPicker {
	return &RandomPicker{rnd: rand.New(rand.NewSource(seed))}
}

func (p *RandomPicker) Pick(pool []string, n int) []string {
	if n > len(pool) {
		n = len(pool)
	}
	if n <= 0 {
		return nil
	}
	shuffled := append([]string(nil), pool...)

	p.mu.Lock()
	p.rnd.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	p.mu.Unlock()

	return shuffled[:n]
}
