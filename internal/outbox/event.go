// Package outbox persists domain events alongside the mutations that raise
// them, and delivers them to subscribers asynchronously.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Topic names a kind of domain event.
type Topic string

const (
	TopicSubmittedByBeneficiary         Topic = "ImmersionApplicationSubmittedByBeneficiary"
	TopicPartiallySigned                Topic = "ImmersionApplicationPartiallySigned"
	TopicFullySigned                    Topic = "ImmersionApplicationFullySigned"
	TopicAcceptedByCounsellor           Topic = "ImmersionApplicationAcceptedByCounsellor"
	TopicAcceptedByValidator            Topic = "ImmersionApplicationAcceptedByValidator"
	TopicFinalValidation                Topic = "FinalImmersionApplicationValidationByAdmin"
	TopicRejected                       Topic = "ImmersionApplicationRejected"
	TopicCancelled                      Topic = "ImmersionApplicationCancelled"
	TopicRequiresModification           Topic = "ImmersionApplicationRequiresModification"
	TopicMagicLinkRenewal               Topic = "MagicLinkRenewalRequested"
	TopicFormEstablishmentAdded         Topic = "FormEstablishmentAdded"
	TopicFormEstablishmentEdited        Topic = "FormEstablishmentEdited"
	TopicContactRequestedByBeneficiary  Topic = "ContactRequestedByBeneficiary"
	TopicFormEstablishmentEditLinkSent  Topic = "FormEstablishmentEditLinkSent"
	TopicEstablishmentAggregateInserted Topic = "NewEstablishmentAggregateInsertedFromForm"
	TopicNewAgencyAdded                 Topic = "NewAgencyAdded"
	TopicAgencyActivated                Topic = "AgencyActivated"
	TopicAssessmentLinkSent             Topic = "EmailWithLinkToCreateAssessmentSent"
	TopicAssessmentCreated              Topic = "ImmersionAssessmentCreated"
)

// SubscriptionID identifies one subscriber of a topic across publications.
type SubscriptionID string

// Failure records one subscriber error during a publication.
type Failure struct {
	SubscriptionID SubscriptionID `json:"subscriptionId"`
	ErrorMessage   string         `json:"errorMessage"`
}

// Publication is one delivery attempt of an event.
type Publication struct {
	PublishedAt time.Time `json:"publishedAt"`
	Failures    []Failure `json:"failures"`
}

// Event is a persisted domain event. Payload holds the topic's JSON document.
type Event struct {
	ID             string          `json:"id"`
	OccurredAt     time.Time       `json:"occurredAt"`
	Topic          Topic           `json:"topic"`
	Payload        json.RawMessage `json:"payload"`
	Publications   []Publication   `json:"publications"`
	WasQuarantined bool            `json:"wasQuarantined"`
}

// LastPublication returns the most recent delivery attempt.
func (e Event) LastPublication() (Publication, bool) {
	if len(e.Publications) == 0 {
		return Publication{}, false
	}
	return e.Publications[len(e.Publications)-1], true
}

// IsUnpublished reports whether the crawler still has to deliver the event.
func (e Event) IsUnpublished() bool {
	return len(e.Publications) == 0 && !e.WasQuarantined
}

// HasFailed reports whether the last publication left failing subscribers
// and the event is still eligible for retry.
func (e Event) HasFailed() bool {
	last, ok := e.LastPublication()
	return ok && len(last.Failures) > 0 && !e.WasQuarantined
}

// Clone returns a deep copy so stores never share slices with callers.
func (e Event) Clone() Event {
	out := e
	out.Payload = append(json.RawMessage(nil), e.Payload...)
	out.Publications = make([]Publication, len(e.Publications))
	for i, p := range e.Publications {
		out.Publications[i] = Publication{
			PublishedAt: p.PublishedAt,
			Failures:    append([]Failure{}, p.Failures...),
		}
	}
	return out
}

// DebugInfo is the admin view of an event's delivery state.
type DebugInfo struct {
	EventID           string     `json:"eventId"`
	Topic             Topic      `json:"topic"`
	WasQuarantined    bool       `json:"wasQuarantined"`
	LastPublishedAt   *time.Time `json:"lastPublishedAt,omitempty"`
	FailedSubscribers []Failure  `json:"failedSubscribers,omitempty"`
	PublishCount      int        `json:"publishCount"`
}

func ToDebugInfo(e Event) DebugInfo {
	info := DebugInfo{
		EventID:        e.ID,
		Topic:          e.Topic,
		WasQuarantined: e.WasQuarantined,
		PublishCount:   len(e.Publications),
	}
	if last, ok := e.LastPublication(); ok {
		at := last.PublishedAt
		info.LastPublishedAt = &at
		info.FailedSubscribers = last.Failures
	}
	return info
}

func ToDebugInfos(events []Event) []DebugInfo {
	out := make([]DebugInfo, 0, len(events))
	for _, e := range events {
		out = append(out, ToDebugInfo(e))
	}
	return out
}

// Callback handles one event for a subscription.
type Callback func(ctx context.Context, event Event) error

// Decode unmarshals an event payload into T.
func Decode[T any](e Event) (T, error) {
	var payload T
	if err := json.Unmarshal(e.Payload, &payload); err != nil {
		return payload, fmt.Errorf("decode %s payload: %w", e.Topic, err)
	}
	return payload, nil
}

// Handle adapts a typed payload handler into a Callback.
func Handle[T any](fn func(ctx context.Context, payload T) error) Callback {
	return func(ctx context.Context, e Event) error {
		payload, err := Decode[T](e)
		if err != nil {
			return err
		}
		return fn(ctx, payload)
	}
}
