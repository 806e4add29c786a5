// Package editing publishes the structured events the item editor emits for
// operators: session lifecycle, modifier actions, validation failures, and
// configuration reloads.
package editing

import (
	"context"

	"itemforge/server/logging"
)

const (
	// EventSessionOpened is emitted when an edit session is registered.
	EventSessionOpened logging.EventType = "editing.session_opened"
	// EventSessionClosed is emitted when a session leaves the registry.
	EventSessionClosed logging.EventType = "editing.session_closed"
	// EventModifierApplied is emitted after a successful apply or removal.
	EventModifierApplied logging.EventType = "editing.modifier_applied"
	// EventModifierRejected is emitted when the rule engine refuses an apply.
	EventModifierRejected logging.EventType = "editing.modifier_rejected"
	// EventValidationMismatch is emitted when the authoritative item no
	// longer matches the session snapshot.
	EventValidationMismatch logging.EventType = "editing.validation_mismatch"
	// EventConfigReloaded is emitted after a configuration reload attempt.
	EventConfigReloaded logging.EventType = "editing.config_reloaded"
)

// SessionPayload describes the session the event refers to.
type SessionPayload struct {
	ItemType string `json:"itemType"`
	Slot     int    `json:"slot"`
	Reason   string `json:"reason,omitempty"`
}

// ModifierPayload describes a modifier action.
type ModifierPayload struct {
	Modifier string `json:"modifier"`
	Level    int    `json:"level"`
	Reason   string `json:"reason,omitempty"`
}

// ReloadPayload describes a configuration reload attempt.
type ReloadPayload struct {
	Source  string `json:"source"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// SessionOpened publishes a session registration event.
func SessionOpened(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, traceID string, payload SessionPayload) {
	publish(ctx, pub, logging.Event{
		Type:     EventSessionOpened,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryEditing,
		Payload:  payload,
		TraceID:  traceID,
	})
}

// SessionClosed publishes a session teardown event.
func SessionClosed(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, traceID string, payload SessionPayload) {
	publish(ctx, pub, logging.Event{
		Type:     EventSessionClosed,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryEditing,
		Payload:  payload,
		TraceID:  traceID,
	})
}

// ModifierApplied publishes a successful modifier write.
func ModifierApplied(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, traceID string, payload ModifierPayload) {
	publish(ctx, pub, logging.Event{
		Type:     EventModifierApplied,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryEditing,
		Payload:  payload,
		TraceID:  traceID,
	})
}

// ModifierRejected publishes a refused modifier action.
func ModifierRejected(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, traceID string, payload ModifierPayload) {
	publish(ctx, pub, logging.Event{
		Type:     EventModifierRejected,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryEditing,
		Payload:  payload,
		TraceID:  traceID,
	})
}

// ValidationMismatch publishes a guard failure.
func ValidationMismatch(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, traceID string, payload SessionPayload) {
	publish(ctx, pub, logging.Event{
		Type:     EventValidationMismatch,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryEditing,
		Payload:  payload,
		TraceID:  traceID,
	})
}

// ConfigReloaded publishes the result of a reload attempt.
func ConfigReloaded(ctx context.Context, pub logging.Publisher, tick uint64, payload ReloadPayload) {
	severity := logging.SeverityInfo
	if !payload.Success {
		severity = logging.SeverityError
	}
	publish(ctx, pub, logging.Event{
		Type:     EventConfigReloaded,
		Tick:     tick,
		Actor:    logging.EntityRef{Kind: logging.EntityKindConfig},
		Severity: severity,
		Category: logging.CategorySystem,
		Payload:  payload,
	})
}

func publish(ctx context.Context, pub logging.Publisher, event logging.Event) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, event)
}
