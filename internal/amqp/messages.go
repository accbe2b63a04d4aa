package amqp

import (
	"encoding/json"
	"time"
)

// Op says what the worker should do with the referenced transaction.
type Op string

const (
	OpUpsert Op = "upsert"
	OpDelete Op = "delete"
)

// SyncMessage is the lightweight unit queued for the sheet-sync worker.
// It carries only the transaction id; the worker fetches the current
// row from the database, so a stale message can never write stale data.
type SyncMessage struct {
	Op            Op        `json:"op"`
	TransactionID string    `json:"transaction_id"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewSyncMessage(op Op, transactionID string) *SyncMessage {
	return &SyncMessage{
		Op:            op,
		TransactionID: transactionID,
		Timestamp:     time.Now(),
	}
}

func (m *SyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func SyncMessageFromJSON(data []byte) (*SyncMessage, error) {
	var msg SyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
