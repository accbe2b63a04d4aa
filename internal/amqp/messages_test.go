package amqp

import (
	"testing"
	"time"
)

func TestNewSyncMessage(t *testing.T) {
	msg := NewSyncMessage(OpUpsert, "tx-123")

	if msg.Op != OpUpsert {
		t.Errorf("Op = %v, want %v", msg.Op, OpUpsert)
	}
	if msg.TransactionID != "tx-123" {
		t.Errorf("TransactionID = %v, want tx-123", msg.TransactionID)
	}
	if msg.Timestamp.IsZero() {
		t.Error("Timestamp should not be zero")
	}
	if time.Since(msg.Timestamp) > time.Second {
		t.Error("Timestamp should be recent")
	}
}

func TestSyncMessage_JSON(t *testing.T) {
	msg := &SyncMessage{
		Op:            OpDelete,
		TransactionID: "tx-456",
		Timestamp:     time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC),
	}

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := SyncMessageFromJSON(data)
	if err != nil {
		t.Fatalf("SyncMessageFromJSON() error = %v", err)
	}
	if parsed.Op != msg.Op {
		t.Errorf("Op = %v, want %v", parsed.Op, msg.Op)
	}
	if parsed.TransactionID != msg.TransactionID {
		t.Errorf("TransactionID = %v, want %v", parsed.TransactionID, msg.TransactionID)
	}
	if !parsed.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", parsed.Timestamp, msg.Timestamp)
	}
}

func TestSyncMessage_InvalidJSON(t *testing.T) {
	if _, err := SyncMessageFromJSON([]byte(`{"op": 7`)); err == nil {
		t.Error("SyncMessageFromJSON() should fail with invalid JSON")
	}
}
