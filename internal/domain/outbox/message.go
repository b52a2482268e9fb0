package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/impairment-ledger/internal/domain/shared"
)

// Message stores a posted-impairment event for reliable publishing
type Message struct {
	ID            int64               `json:"id"`
	CalculationID uuid.UUID           `json:"calculation_id"`
	TenantID      uuid.UUID           `json:"tenant_id"`
	Payload       json.RawMessage     `json:"payload"`
	Status        shared.OutboxStatus `json:"status"`
	Attempts      int                 `json:"attempts"`
	CreatedAt     time.Time           `json:"created_at"`
	LastAttemptAt *time.Time          `json:"last_attempt_at,omitempty"`
}

func NewMessage(event *shared.ImpairmentPostedEvent) (*Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}

	return &Message{
		CalculationID: event.CalculationID,
		TenantID:      event.TenantID,
		Payload:       payload,
		Status:        shared.OutboxStatusPending,
		Attempts:      0,
		CreatedAt:     time.Now(),
	}, nil
}

func (m *Message) IncrementAttempts() {
	m.Attempts++
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsProcessed() {
	m.Status = shared.OutboxStatusProcessed
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsFailed() {
	m.Status = shared.OutboxStatusFailedToPublish
	now := time.Now()
	m.LastAttemptAt = &now
}

// GetEvent extracts the posted event from the payload
func (m *Message) GetEvent() (*shared.ImpairmentPostedEvent, error) {
	var event shared.ImpairmentPostedEvent
	if err := json.Unmarshal(m.Payload, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
