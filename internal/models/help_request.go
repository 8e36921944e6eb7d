package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RequestStatus represents the lifecycle state of a help request
type RequestStatus string

const (
	RequestStatusPending    RequestStatus = "Pending"
	RequestStatusResolved   RequestStatus = "Resolved"
	RequestStatusUnresolved RequestStatus = "Unresolved"
)

// IsValid reports whether s is one of the three known lifecycle states.
func (s RequestStatus) IsValid() bool {
	switch s {
	case RequestStatusPending, RequestStatusResolved, RequestStatusUnresolved:
		return true
	}
	return false
}

// IsTerminal reports whether s is a final state. Pending is the only
// non-terminal state; a request leaves it at most once.
func (s RequestStatus) IsTerminal() bool {
	return s == RequestStatusResolved || s == RequestStatusUnresolved
}

// HelpRequest is a customer question escalated to a human supervisor.
// Answer and ResolvedAt are set together, exactly when Status becomes Resolved.
// A request expired by the timeout sweep goes to Unresolved with both left nil.
type HelpRequest struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CustomerID string             `bson:"customerId" json:"customer_id"`
	Question   string             `bson:"question" json:"question"`
	Status     RequestStatus      `bson:"status" json:"status"`
	Answer     *string            `bson:"answer,omitempty" json:"answer,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"created_at"`
	ResolvedAt *time.Time         `bson:"resolvedAt,omitempty" json:"resolved_at,omitempty"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updated_at"`
}
