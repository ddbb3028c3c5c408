package orders

import (
	"errors"
	"fmt"
)

// ErrInvalidStatus indicates a status value outside the enum.
var ErrInvalidStatus = errors.New("invalid order status")

// Status is an order's fulfillment state. The closed enum replaces free-text
// status strings; every transition goes through CanTransition or Cancellable.
type Status string

const (
	StatusProcessing Status = "Processing"
	StatusConfirmed  Status = "Confirmed"
	StatusShipped    Status = "Shipped"
	StatusInTransit  Status = "In Transit"
	StatusDelivered  Status = "Delivered"
	StatusCancelled  Status = "Cancelled"
)

// allStatuses is the closed set of legal values, in fulfillment order.
var allStatuses = []Status{
	StatusProcessing,
	StatusConfirmed,
	StatusShipped,
	StatusInTransit,
	StatusDelivered,
	StatusCancelled,
}

// ParseStatus validates a raw status value against the enum.
func ParseStatus(raw string) (Status, error) {
	for _, st := range allStatuses {
		if string(st) == raw {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
}

// Terminal reports whether no further transitions are allowed.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Cancellable reports whether the order may still be cancelled. Once goods
// have shipped, or the order already reached a terminal state, it may not.
func (s Status) Cancellable() bool {
	switch s {
	case StatusShipped, StatusDelivered, StatusCancelled:
		return false
	}
	return true
}

// CanTransition reports whether an admin status update from -> to is legal.
// Assignment is open within the enum: stages may be skipped. Terminal states
// accept no updates, and Cancelled is never a direct assignment target
// because cancellation must restore stock (see Service.Cancel).
func CanTransition(from, to Status) bool {
	if from.Terminal() {
		return false
	}
	if to == StatusCancelled {
		return false
	}
	for _, st := range allStatuses {
		if st == to {
			return true
		}
	}
	return false
}
