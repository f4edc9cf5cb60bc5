package demo

import (
	"github.com/vango-dev/sigstore/internal/errors"
)

// Actions lists the names Dispatch accepts.
var Actions = []string{"setName", "randomA", "randomB", "randomC", "randomEverything"}

// Dispatch runs the named action. value is used by setName only.
// Unknown actions return a P002 error and change nothing.
func (s *Store) Dispatch(action, value string) error {
	switch action {
	case "setName":
		s.SetName(value)
	case "randomA":
		s.RandomA()
	case "randomB":
		s.RandomB()
	case "randomC":
		s.RandomC()
	case "randomEverything":
		s.RandomEverything()
	default:
		return errors.New("P002").
			WithDetailf("action %q", action).
			WithSuggestion("Known actions: setName, randomA, randomB, randomC, randomEverything.")
	}
	return nil
}
