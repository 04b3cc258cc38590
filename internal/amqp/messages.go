package amqp

import (
	"encoding/json"
	"time"

	"cleverspend/internal/core"
)

// ChangeEvent announces a committed mutation. Expense events carry a
// snapshot of the expense as committed, so consumers never read the store.
type ChangeEvent struct {
	Kind      string        `json:"kind"`
	EntityID  string        `json:"entity_id,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Expense   *core.Expense `json:"expense,omitempty"`
}

func NewChangeEvent(kind, entityID string) *ChangeEvent {
	return &ChangeEvent{
		Kind:      kind,
		EntityID:  entityID,
		Timestamp: time.Now().UTC(),
	}
}

// NewExpenseEvent builds a ChangeEvent carrying exp.
func NewExpenseEvent(kind string, exp core.Expense) *ChangeEvent {
	ev := NewChangeEvent(kind, exp.ID)
	ev.Expense = &exp
	return ev
}

func (m *ChangeEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ChangeEventFromJSON(data []byte) (*ChangeEvent, error) {
	var msg ChangeEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
