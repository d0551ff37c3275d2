package domain

// Transition defines a directed edge from one step to another.
type Transition struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`

	// Label is the outcome that selects this edge. Empty means OutcomeDefault.
	Label Outcome `json:"label,omitempty" yaml:"label,omitempty"`
}

// FlowDescription is a read-only view of a registered flow, used for introspection
// and rendering.
type FlowDescription struct {
	Name        string       `json:"name,omitempty"`
	Steps       []string     `json:"steps"`
	Transitions []Transition `json:"transitions"`
}
