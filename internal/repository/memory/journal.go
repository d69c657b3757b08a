package memory

// journal records how to undo the writes made inside one open unit of work.
type journal struct {
	steps []func()
}

// keep remembers the current value of m[k] so a rollback can put it back.
// A nil journal records nothing. Callers hold Store.mu for writing.
func keep[K comparable, V any](j *journal, m map[K]V, k K) {
	if j == nil {
		return
	}
	old, ok := m[k]
	j.steps = append(j.steps, func() {
		if ok {
			m[k] = old
		} else {
			delete(m, k)
		}
	})
}

// undo reverts the recorded writes, newest first. Callers hold Store.mu for
// writing.
func (j *journal) undo() {
	for i := len(j.steps) - 1; i >= 0; i-- {
		j.steps[i]()
	}
	j.steps = nil
}
