// Package status defines the order lifecycle and the transitions allowed
// between its states.
package status

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Alturino/storefront/internal/errors"
)

type Status string

const (
	Pending    Status = "Pending"
	Processing Status = "Processing"
	Shipped    Status = "Shipped"
	Delivered  Status = "Delivered"
	Cancelled  Status = "Cancelled"
)

var all = []Status{Pending, Processing, Shipped, Delivered, Cancelled}

// transitions lists the states reachable from each state. Delivered and
// Cancelled are terminal.
var transitions = map[Status][]Status{
	Pending:    {Processing, Shipped, Delivered, Cancelled},
	Processing: {Shipped, Delivered, Cancelled},
	Shipped:    {Delivered, Cancelled},
	Delivered:  {},
	Cancelled:  {},
}

func All() []Status {
	return append([]Status(nil), all...)
}

func Parse(s string) (Status, error) {
	trimmed := strings.TrimSpace(s)
	for _, status := range all {
		if strings.EqualFold(trimmed, string(status)) {
			return status, nil
		}
	}
	return "", fmt.Errorf("status=%q is %w", s, errors.ErrInvalidStatus)
}

func (s Status) String() string {
	return string(s)
}

func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled
}

// CanTransition reports whether an order in s may move to next. Staying in
// the same state is always allowed.
func (s Status) CanTransition(next Status) bool {
	if s == next {
		return true
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s Status) Transition(next Status) (Status, error) {
	if !s.CanTransition(next) {
		return s, fmt.Errorf("from=%s to=%s is %w", s, next, errors.ErrInvalidTransition)
	}
	return next, nil
}

func (s *Status) UnmarshalJSON(data []byte) error {
	raw := ""
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("status must be a string: %w", errors.ErrInvalidStatus)
	}
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
