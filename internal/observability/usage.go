// Package observability tracks variable usage across a pipeline run for
// reporting which questions and recodes the tab plans actually exercise.
package observability

import (
	"sort"
	"sync"
	"time"
)

// Usage tracks how often each variable is referenced and by which
// operators.
type Usage struct {
	mu        sync.RWMutex
	variables map[string]*VariableStats
}

// VariableStats holds reference statistics for one variable.
type VariableStats struct {
	Variable  string
	Frequency int64
	LastSeen  time.Time
	Operators map[string]int
}

// NewUsage creates an empty usage tracker.
func NewUsage() *Usage {
	return &Usage{variables: make(map[string]*VariableStats)}
}

// Record notes one reference to a variable.
// operator is the condition operator it was referenced with, or "" for
// plain references (arithmetic, axes, weights).
// This method is O(1) and thread-safe.
func (u *Usage) Record(variable, operator string) {
	u.mu.Lock()
	defer u.mu.Unlock()

	stats, exists := u.variables[variable]
	if !exists {
		stats = &VariableStats{
			Variable:  variable,
			Operators: make(map[string]int),
		}
		u.variables[variable] = stats
	}

	stats.Frequency++
	stats.LastSeen = time.Now()
	if operator != "" {
		stats.Operators[operator]++
	}
}

// Top returns the n most referenced variables, most frequent first. The
// returned stats are copies.
func (u *Usage) Top(n int) []VariableStats {
	u.mu.RLock()
	defer u.mu.RUnlock()

	if n <= 0 || len(u.variables) == 0 {
		return []VariableStats{}
	}

	stats := make([]VariableStats, 0, len(u.variables))
	for _, s := range u.variables {
		c := VariableStats{
			Variable:  s.Variable,
			Frequency: s.Frequency,
			LastSeen:  s.LastSeen,
			Operators: make(map[string]int),
		}
		for op, count := range s.Operators {
			c.Operators[op] = count
		}
		stats = append(stats, c)
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Frequency != stats[j].Frequency {
			return stats[i].Frequency > stats[j].Frequency
		}
		return stats[i].Variable < stats[j].Variable
	})

	if n > len(stats) {
		n = len(stats)
	}
	return stats[:n]
}

// Len returns the number of distinct variables seen.
func (u *Usage) Len() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return len(u.variables)
}
