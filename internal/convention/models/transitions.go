package models

import (
	"slices"

	"immersionfacile/internal/outbox"
)

// Transition gates a move to a target status.
type Transition struct {
	ValidInitialStatuses []Status
	ValidRoles           []Role
	Topic                outbox.Topic
}

func (t Transition) AllowsRole(r Role) bool {
	return slices.Contains(t.ValidRoles, r)
}

func (t Transition) AllowsFrom(s Status) bool {
	return slices.Contains(t.ValidInitialStatuses, s)
}

// transitions is keyed by target status. Signature statuses are reached
// through signing, not through this table.
var transitions = map[Status]Transition{
	StatusAcceptedByCounsellor: {
		ValidInitialStatuses: []Status{StatusInReview},
		ValidRoles:           []Role{RoleCounsellor},
		Topic:                outbox.TopicAcceptedByCounsellor,
	},
	StatusAcceptedByValidator: {
		ValidInitialStatuses: []Status{StatusInReview, StatusAcceptedByCounsellor},
		ValidRoles:           []Role{RoleValidator},
		Topic:                outbox.TopicAcceptedByValidator,
	},
	StatusValidated: {
		ValidInitialStatuses: []Status{StatusAcceptedByCounsellor, StatusAcceptedByValidator},
		ValidRoles:           []Role{RoleAdmin},
		Topic:                outbox.TopicFinalValidation,
	},
	// A counsellor may still reject after a validator accepted.
	StatusRejected: {
		ValidInitialStatuses: []Status{StatusInReview, StatusAcceptedByValidator, StatusAcceptedByCounsellor},
		ValidRoles:           []Role{RoleCounsellor, RoleValidator, RoleAdmin},
		Topic:                outbox.TopicRejected,
	},
	StatusDraft: {
		ValidInitialStatuses: []Status{
			StatusReadyToSign, StatusPartiallySigned, StatusInReview,
			StatusAcceptedByValidator, StatusAcceptedByCounsellor,
		},
		ValidRoles: []Role{RoleCounsellor, RoleValidator, RoleAdmin},
		Topic:      outbox.TopicRequiresModification,
	},
	StatusCancelled: {
		ValidInitialStatuses: []Status{StatusValidated},
		ValidRoles:           []Role{RoleValidator, RoleAdmin},
		Topic:                outbox.TopicCancelled,
	},
}

// TransitionTo returns the gate for target, or false when agents cannot
// move a convention to target directly.
func TransitionTo(target Status) (Transition, bool) {
	t, ok := transitions[target]
	return t, ok
}
