package devgateway

import (
	"time"

	"github.com/google/uuid"

	"github.com/araute/storefront-admin/internal/kafkax"
)

// TopicRecordChanged carries one event per mutation, keyed by entity so the
// relay sees each entity's changes in order.
const TopicRecordChanged = "storefront.record.changed"

type ChangeEvent struct {
	EventID    string    `json:"event_id"`
	Entity     string    `json:"entity"`
	RecordID   string    `json:"record_id"`
	Action     string    `json:"action"` // create | update
	OccurredAt time.Time `json:"occurred_at"`
	Producer   string    `json:"producer"`
}

// ChangePublisher is what the REST server needs from the event pipeline.
type ChangePublisher interface {
	RecordChanged(entity, recordID, action string)
}

// KafkaChanges publishes change events through the shared producer.
type KafkaChanges struct {
	Producer *kafkax.Producer
	Service  string
}

func (k *KafkaChanges) RecordChanged(entity, recordID, action string) {
	ev := ChangeEvent{
		EventID:    uuid.NewString(),
		Entity:     entity,
		RecordID:   recordID,
		Action:     action,
		OccurredAt: time.Now().UTC(),
		Producer:   k.Service,
	}
	k.Producer.Publish([]byte(entity), kafkax.MustMarshal(ev))
}
