package domain

// ExecutionResults is the per-run, append-only store of step outputs.
// History is immutable: a recorded value is deep-copied on the way in and
// never overwritten, so re-resolving a reference later in the run always
// sees the same value. Each run owns its own instance; nothing is shared
// across runs.
type ExecutionResults struct {
	order  []string
	values map[string]interface{}
}

func NewExecutionResults() *ExecutionResults {
	return &ExecutionResults{
		values: make(map[string]interface{}),
	}
}

func (r *ExecutionResults) Record(step string, value interface{}) error {
	if _, exists := r.values[step]; exists {
		return NewDefinitionError("step output already recorded: "+step, nil)
	}
	r.order = append(r.order, step)
	r.values[step] = DeepCopyValue(value)
	return nil
}

func (r *ExecutionResults) Lookup(step string) (interface{}, bool) {
	v, ok := r.values[step]
	return v, ok
}

// StepNames returns the recorded step names in completion order.
func (r *ExecutionResults) StepNames() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Snapshot deep-copies the store for inclusion in a run report.
func (r *ExecutionResults) Snapshot() map[string]interface{} {
	out := make(map[string]interface{}, len(r.values))
	for k, v := range r.values {
		out[k] = DeepCopyValue(v)
	}
	return out
}
