// Package plugins holds the strategy candidates offered to the registry at
// startup. Packages contribute candidates from their init functions.
package plugins

import (
	"sync"

	"github.com/kilianp07/autosampler/core/strategy"
)

var (
	mu         sync.Mutex
	candidates []strategy.Candidate
)

// Register appends c to the candidate list. Registration order is the
// discovery order, so earlier candidates win type conflicts.
func Register(c strategy.Candidate) {
	mu.Lock()
	defer mu.Unlock()
	candidates = append(candidates, c)
}

// Candidates returns a copy of the registered candidates.
func Candidates() []strategy.Candidate {
	mu.Lock()
	defer mu.Unlock()
	return append([]strategy.Candidate(nil), candidates...)
}
