package domain

import (
	"errors"
	"fmt"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusReady     OrderStatus = "ready"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

var ErrInvalidTransition = errors.New("invalid order status transition")

// Transitions are operator-initiated only. completed has no outgoing edges.
var allowedTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusReady, StatusCancelled},
	StatusReady:     {StatusCompleted},
	StatusCancelled: {StatusPending, StatusCompleted},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusReady, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return len(allowedTransitions[s]) == 0
}

// Notifiable statuses are the ones a customer is alerted about.
func (s OrderStatus) Notifiable() bool {
	return s == StatusReady || s == StatusCancelled
}

func ValidateTransition(current, next OrderStatus) error {
	if !next.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, next)
	}
	for _, s := range allowedTransitions[current] {
		if s == next {
			return nil
		}
	}
	return fmt.Errorf("%w: cannot move from %s to %s", ErrInvalidTransition, current, next)
}

// NextStatuses lists where an order in the given status may go.
func NextStatuses(current OrderStatus) []OrderStatus {
	next := allowedTransitions[current]
	out := make([]OrderStatus, len(next))
	copy(out, next)
	return out
}
