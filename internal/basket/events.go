package basket

import (
	"encoding/json"
	"time"
)

const (
	EventBasketItemAdded   = "BasketItemAdded"
	EventBasketItemRemoved = "BasketItemRemoved"

	TopicBasketItemAdded   = "basket.item.added"
	TopicBasketItemRemoved = "basket.item.removed"
)

type Envelope struct {
	EventID      string          `json:"event_id"`
	EventType    string          `json:"event_type"`
	EventVersion int             `json:"event_version"`
	OccurredAt   time.Time       `json:"occurred_at"`
	Producer     string          `json:"producer"`
	TraceID      string          `json:"trace_id,omitempty"`
	Payload      json.RawMessage `json:"payload"`
}

// ItemChangedPayload carries the delta applied, not the resulting quantity.
type ItemChangedPayload struct {
	Store     string `json:"store"` // session | user
	OwnerID   string `json:"owner_id"`
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
}
