package engine

import (
	"fmt"
	"strings"
)

type Action int

const (
	Stand Action = iota
	Hit
	Double
	Split
	Insurance
	Surrender
)

var actionNames = [...]string{"Stand", "Hit", "Double", "Split", "Insurance", "Surrender"}

func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return fmt.Sprintf("Action(%d)", int(a))
	}
	return actionNames[a]
}

// ParseAction accepts an action name in any case.
func ParseAction(s string) (Action, error) {
	for i, n := range actionNames {
		if strings.EqualFold(n, s) {
			return Action(i), nil
		}
	}
	return 0, fmt.Errorf("unknown action %q", s)
}

func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Action) UnmarshalText(b []byte) error {
	v, err := ParseAction(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// ActionValue is the expected return of one action, in units of the
// original bet.
type ActionValue struct {
	Action Action  `json:"action" yaml:"action"`
	Value  float64 `json:"value" yaml:"value"`
}

func (av ActionValue) String() string {
	return fmt.Sprintf("%v: %.6f", av.Action, av.Value)
}
