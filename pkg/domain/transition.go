package domain

// Transition is one declarative rule of the transition relation:
// reading On while in From moves to every state listed in To.
//
// Deterministic definitions require exactly one target per rule.
type Transition struct {
	From StateID   `json:"from" yaml:"from" mapstructure:"from"`
	On   Symbol    `json:"on" yaml:"on" mapstructure:"on"`
	To   []StateID `json:"to" yaml:"to" mapstructure:"to"`
}
