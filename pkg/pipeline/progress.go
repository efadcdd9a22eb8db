package pipeline

import "sync"

// StepDetail is a snapshot of one step's progress contribution, returned by
// ProgressTracker.Details / Pipeline.Status. It is always a copy — no
// caller can observe or mutate tracker internals through it.
type StepDetail struct {
	InternalProgress float64
	MaxWeight        float64
	Contribution     float64
}

// ProgressTracker is the pipeline's thread-safe weighted progress
// aggregator. A single instance is constructed per Pipeline and shared,
// never duplicated, across every Context copy made during a run.
type ProgressTracker struct {
	mu       sync.Mutex
	weights  map[string]float64
	progress map[string]float64
	order    []string
}

// newProgressTracker builds weights from the plan per the fixed assignment
// rule: each of the N plan entries gets a 100/N share; a parallel entry's
// share is divided equally among its K steps (0 when K is 0).
func newProgressTracker[C any](plan []PlanEntry[C]) *ProgressTracker {
	t := &ProgressTracker{
		weights:  make(map[string]float64),
		progress: make(map[string]float64),
	}

	n := len(plan)
	if n == 0 {
		return t
	}
	share := 100.0 / float64(n)

	for _, entry := range plan {
		if entry.IsParallel() {
			k := len(entry.Parallel)
			if k == 0 {
				continue
			}
			sub := share / float64(k)
			for _, s := range entry.Parallel {
				t.weights[s.ID()] = sub
				t.order = append(t.order, s.ID())
			}
			continue
		}
		t.weights[entry.Serial.ID()] = share
		t.order = append(t.order, entry.Serial.ID())
	}

	return t
}

func (t *ProgressTracker) updateStepProgress(stepID string, percent float64) {
	if percent < 0 {
		percent = 0
	} else if percent > 100 {
		percent = 100
	}
	t.mu.Lock()
	t.progress[stepID] = percent
	t.mu.Unlock()
}

// Overall returns the weighted overall progress percentage: the sum, over
// every distinct step id, of weight * (internal progress / 100).
func (t *ProgressTracker) Overall() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	var total float64
	for id, weight := range t.weights {
		total += weight * (t.progress[id] / 100.0)
	}
	return total
}

// Details returns a copied snapshot of every step's progress contribution.
// Callers never see a reference into tracker internals.
func (t *ProgressTracker) Details() map[string]StepDetail {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]StepDetail, len(t.weights))
	for id, weight := range t.weights {
		internal := t.progress[id]
		out[id] = StepDetail{
			InternalProgress: internal,
			MaxWeight:        weight,
			Contribution:     weight * (internal / 100.0),
		}
	}
	return out
}
