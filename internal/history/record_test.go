package history

import (
	"encoding/json"
	"testing"
)

func TestEncodePayload(t *testing.T) {
	t.Parallel()

	t.Run("create", func(t *testing.T) {
		t.Parallel()
		data, err := EncodePayload(CreatePayload{After: json.RawMessage(`{"id":"p1"}`)})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(data) != `{"after":{"id":"p1"}}` {
			t.Errorf("unexpected encoding: %s", data)
		}
	})

	t.Run("update", func(t *testing.T) {
		t.Parallel()
		data, err := EncodePayload(UpdatePayload{
			Before: json.RawMessage(`{"etapa":"a"}`),
			After:  json.RawMessage(`{"etapa":"b"}`),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(data) != `{"before":{"etapa":"a"},"after":{"etapa":"b"}}` {
			t.Errorf("unexpected encoding: %s", data)
		}
	})

	t.Run("nil payload stores empty object", func(t *testing.T) {
		t.Parallel()
		data, err := EncodePayload(nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(data) != `{}` {
			t.Errorf("unexpected encoding: %s", data)
		}
	})
}

func TestDecodePayload(t *testing.T) {
	t.Parallel()

	t.Run("variant follows action type", func(t *testing.T) {
		t.Parallel()
		p, err := DecodePayload(ActionDelete, []byte(`{"before":{"id":"p1"}}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		del, ok := p.(DeletePayload)
		if !ok {
			t.Fatalf("expected DeletePayload, got %T", p)
		}
		if string(del.Before) != `{"id":"p1"}` {
			t.Errorf("unexpected before snapshot: %s", del.Before)
		}
	})

	t.Run("bulk update round trip", func(t *testing.T) {
		t.Parallel()
		orig := BulkUpdatePayload{
			AffectedIDs: []string{"p1", "p2"},
			Before:      []json.RawMessage{json.RawMessage(`{"id":"p1"}`), json.RawMessage(`{"id":"p2"}`)},
		}
		data, err := EncodePayload(orig)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		p, err := DecodePayload(ActionBulkUpdate, data)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		bulk, ok := p.(BulkUpdatePayload)
		if !ok {
			t.Fatalf("expected BulkUpdatePayload, got %T", p)
		}
		if len(bulk.AffectedIDs) != 2 || bulk.AffectedIDs[0] != "p1" {
			t.Errorf("unexpected affected ids: %v", bulk.AffectedIDs)
		}
		if len(bulk.Before) != 2 {
			t.Errorf("expected 2 before snapshots, got %d", len(bulk.Before))
		}
		if bulk.After != nil {
			t.Errorf("expected no after snapshots, got %v", bulk.After)
		}
	})

	t.Run("empty data decodes to empty variant", func(t *testing.T) {
		t.Parallel()
		p, err := DecodePayload(ActionCreate, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		create, ok := p.(CreatePayload)
		if !ok {
			t.Fatalf("expected CreatePayload, got %T", p)
		}
		if create.After != nil {
			t.Errorf("expected empty after, got %s", create.After)
		}
	})

	t.Run("unknown action type", func(t *testing.T) {
		t.Parallel()
		if _, err := DecodePayload(ActionType("RENAME"), []byte(`{}`)); err == nil {
			t.Error("expected error for unknown action type")
		}
	})
}

func TestUserName(t *testing.T) {
	t.Parallel()

	u := User{ID: "u1", Username: "maria"}
	if u.Name() != "maria" {
		t.Errorf("expected username fallback, got %q", u.Name())
	}
	u.DisplayName = "María García"
	if u.Name() != "María García" {
		t.Errorf("expected display name, got %q", u.Name())
	}
}
