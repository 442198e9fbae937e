package kafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Message is a lifecycle event destined for the configured topic. Key is the
// partition key; keying by legal-service id keeps per-service ordering.
type Message struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

const (
	HeaderEventID   = "event-id"
	HeaderEventType = "event-type"
	HeaderSource    = "source"
)

// NewEvent builds a message with a JSON-encoded payload and standard headers.
func NewEvent(eventType, key string, payload any) (Message, error) {
	value, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{
		Key:   key,
		Value: value,
		Headers: map[string]string{
			HeaderEventID:   uuid.New().String(),
			HeaderEventType: eventType,
			HeaderSource:    "lexsched",
		},
		Timestamp: time.Now().UTC(),
	}, nil
}
