package order

import "fmt"

// Status is the lifecycle state of an order. The stored values keep the
// original storefront's Spanish naming, which the frontend renders as-is.
type Status string

const (
	StatusPending    Status = "PENDIENTE"
	StatusConfirmed  Status = "CONFIRMADA"
	StatusProcessing Status = "EN_PROCESO"
	StatusShipped    Status = "ENVIADA"
	StatusDelivered  Status = "ENTREGADA"
	StatusCancelled  Status = "CANCELADA"
)

// transitions is the single source of truth for legal status changes: a
// linear happy path plus cancellation from any non-terminal state.
var transitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered, StatusCancelled},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// ParseStatus validates a raw status value.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if _, ok := transitions[s]; !ok {
		return "", fmt.Errorf("unknown order status %q", raw)
	}
	return s, nil
}

// IsTerminal reports whether no further transitions are allowed from s.
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// CanTransition reports whether moving from s to next is legal.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// InvalidTransitionError indicates a requested status change is not in the
// transition table. It is never coerced silently.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid order status transition %s -> %s", e.From, e.To)
}

// StateConflictError indicates a mutation that is only legal in an earlier
// lifecycle state, such as editing the shipping address after confirmation.
type StateConflictError struct {
	Status Status
	Op     string
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("cannot %s while order status is %s", e.Op, e.Status)
}
