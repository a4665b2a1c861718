package history

import (
	"encoding/json"
	"fmt"
	"time"
)

// ActionType identifies the kind of change a record describes.
type ActionType string

const (
	ActionCreate     ActionType = "CREATE"
	ActionUpdate     ActionType = "UPDATE"
	ActionDelete     ActionType = "DELETE"
	ActionBulkUpdate ActionType = "BULK_UPDATE"
	ActionBulkDelete ActionType = "BULK_DELETE"
)

// ContextType is the category of domain entity an action applies to.
type ContextType string

const (
	ContextPedido   ContextType = "pedido"
	ContextCliente  ContextType = "cliente"
	ContextVendedor ContextType = "vendedor"
	ContextMaterial ContextType = "material"
)

// BulkContextID is the context id used for bulk operations when the
// list of affected ids is empty.
const BulkContextID = "bulk"

// Record is a single persisted action history entry. It carries enough
// data for a Handler to reverse or reapply the change it describes.
type Record struct {
	// ID is the unique record identifier, assigned at record time.
	ID string `json:"id"`

	// ContextID identifies the domain object the action applies to.
	// For bulk operations this is the first affected id, or BulkContextID.
	ContextID string `json:"contextId"`

	// ContextType is the category of the affected entity.
	ContextType ContextType `json:"contextType"`

	// Type is the action kind.
	Type ActionType `json:"type"`

	// Payload holds the snapshots needed to undo or redo the action.
	// Its concrete variant is determined by Type.
	Payload Payload `json:"payload"`

	// Timestamp is the creation time. It is also the recency sort key.
	Timestamp time.Time `json:"timestamp"`

	// UserID is the owner of the action. Undo/redo eligibility is always
	// computed within one user's record set.
	UserID string `json:"userId"`

	// UserName is the display name, denormalized for presentation.
	UserName string `json:"userName"`

	// Status is the current state in the undo/redo lifecycle.
	Status Status `json:"status"`

	// Description is a precomputed human-readable summary.
	Description string `json:"description"`
}

// Payload is the action-type-specific data attached to a Record.
// Each ActionType has exactly one payload variant:
//
//	CREATE      → CreatePayload (after snapshot only)
//	UPDATE      → UpdatePayload (before and after snapshots)
//	DELETE      → DeletePayload (before snapshot only)
//	BULK_UPDATE → BulkUpdatePayload (affected ids, optional snapshot lists)
//	BULK_DELETE → BulkDeletePayload (affected ids, before snapshots)
type Payload interface {
	isPayload()
}

// CreatePayload records the entity as it exists after creation.
type CreatePayload struct {
	After json.RawMessage
}

// UpdatePayload records the entity before and after the change.
type UpdatePayload struct {
	Before json.RawMessage
	After  json.RawMessage
}

// DeletePayload records the entity as it existed before deletion.
type DeletePayload struct {
	Before json.RawMessage
}

// BulkUpdatePayload records the ids touched by a bulk update. Before and
// After snapshots are optional; without them the update cannot be reversed
// precisely and a Handler may reject the undo.
type BulkUpdatePayload struct {
	AffectedIDs []string
	Before      []json.RawMessage
	After       []json.RawMessage
}

// BulkDeletePayload records the ids and prior snapshots of a bulk delete.
type BulkDeletePayload struct {
	AffectedIDs []string
	Before      []json.RawMessage
}

func (CreatePayload) isPayload()     {}
func (UpdatePayload) isPayload()     {}
func (DeletePayload) isPayload()     {}
func (BulkUpdatePayload) isPayload() {}
func (BulkDeletePayload) isPayload() {}

// Snapshot marshals an entity for inclusion in a payload.
func Snapshot(v any) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshaling snapshot: %w", err)
	}
	return data, nil
}

// payloadEnvelope is the stored wire shape shared by all payload variants.
type payloadEnvelope struct {
	Before      json.RawMessage `json:"before,omitempty"`
	After       json.RawMessage `json:"after,omitempty"`
	AffectedIDs []string        `json:"affectedIds,omitempty"`
}

// EncodePayload serializes a payload variant to its stored JSON form.
func EncodePayload(p Payload) ([]byte, error) {
	var env payloadEnvelope

	switch v := p.(type) {
	case CreatePayload:
		env.After = v.After
	case UpdatePayload:
		env.Before = v.Before
		env.After = v.After
	case DeletePayload:
		env.Before = v.Before
	case BulkUpdatePayload:
		env.AffectedIDs = v.AffectedIDs
		var err error
		if env.Before, err = marshalList(v.Before); err != nil {
			return nil, err
		}
		if env.After, err = marshalList(v.After); err != nil {
			return nil, err
		}
	case BulkDeletePayload:
		env.AffectedIDs = v.AffectedIDs
		var err error
		if env.Before, err = marshalList(v.Before); err != nil {
			return nil, err
		}
	case nil:
		// Empty payloads are stored as an empty object.
	default:
		return nil, fmt.Errorf("unknown payload variant %T", p)
	}

	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}
	return data, nil
}

// DecodePayload parses stored payload JSON into the variant dictated by
// the record's action type.
func DecodePayload(t ActionType, data []byte) (Payload, error) {
	if len(data) == 0 {
		data = []byte("{}")
	}

	var env payloadEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decoding payload: %w", err)
	}

	switch t {
	case ActionCreate:
		return CreatePayload{After: env.After}, nil
	case ActionUpdate:
		return UpdatePayload{Before: env.Before, After: env.After}, nil
	case ActionDelete:
		return DeletePayload{Before: env.Before}, nil
	case ActionBulkUpdate:
		before, err := unmarshalList(env.Before)
		if err != nil {
			return nil, err
		}
		after, err := unmarshalList(env.After)
		if err != nil {
			return nil, err
		}
		return BulkUpdatePayload{AffectedIDs: env.AffectedIDs, Before: before, After: after}, nil
	case ActionBulkDelete:
		before, err := unmarshalList(env.Before)
		if err != nil {
			return nil, err
		}
		return BulkDeletePayload{AffectedIDs: env.AffectedIDs, Before: before}, nil
	default:
		return nil, fmt.Errorf("unknown action type %q", t)
	}
}

func marshalList(list []json.RawMessage) (json.RawMessage, error) {
	if list == nil {
		return nil, nil
	}
	data, err := json.Marshal(list)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot list: %w", err)
	}
	return data, nil
}

func unmarshalList(data json.RawMessage) ([]json.RawMessage, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var list []json.RawMessage
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decoding snapshot list: %w", err)
	}
	return list, nil
}
