package importer

import (
	"context"
	"fmt"
)

// ActionType is the decision the reconciler takes for a record.
type ActionType string

const (
	// ActionInsert creates a new item.
	ActionInsert ActionType = "insert"
	// ActionUpdate writes onto an existing item.
	ActionUpdate ActionType = "update"
	// ActionError reports a row error without touching the store.
	ActionError ActionType = "error"
)

// Row error messages produced by the reconciler.
const (
	MessageSKURequired = "SKU required for update mode"
	messageSKUNotFound = "SKU %q not found for update"
)

// Decision is the tagged result of Reconcile.
type Decision struct {
	Action ActionType `json:"action"`

	// ItemID is set for ActionUpdate.
	ItemID ItemID `json:"item_id,omitempty"`

	// Message is set for ActionError.
	Message string `json:"message,omitempty"`
}

// Insert returns an insert decision.
func Insert() Decision {
	return Decision{Action: ActionInsert}
}

// Update returns an update decision for an existing item.
func Update(id ItemID) Decision {
	return Decision{Action: ActionUpdate, ItemID: id}
}

// Reject returns an error decision.
func Reject(msg string) Decision {
	return Decision{Action: ActionError, Message: msg}
}

// Reconcile decides what happens to a record under the given mode.
// It performs at most one lookup and never mutates the store.
func Reconcile(ctx context.Context, record CandidateRecord, mode Mode, lookup Lookup) Decision {
	sku := record.SKU()

	switch mode {
	case ModeCreate:
		return Insert()

	case ModeUpdateBySKU:
		if sku == "" {
			return Reject(MessageSKURequired)
		}
		ref, found, err := lookup.Lookup(ctx, sku, "")
		if err != nil {
			return Reject(fmt.Sprintf("lookup failed: %v", err))
		}
		if !found {
			return Reject(fmt.Sprintf(messageSKUNotFound, sku))
		}
		return Update(ref.ID)

	case ModeUpsert:
		ref, found, err := lookup.Lookup(ctx, sku, record.Name())
		if err != nil {
			return Reject(fmt.Sprintf("lookup failed: %v", err))
		}
		if found {
			return Update(ref.ID)
		}
		return Insert()

	default:
		return Reject(fmt.Sprintf("unsupported mode %q", mode))
	}
}
