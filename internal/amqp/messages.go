package amqp

import (
	"encoding/json"
	"time"

	"stash/internal/core"
)

// AlertCreatedMessage is the lightweight event published whenever an alert is
// persisted. It carries only identifiers; the worker fetches the full alert
// from the store when it needs the body.
type AlertCreatedMessage struct {
	AlertID   string         `json:"alert_id"`
	WalletID  string         `json:"wallet_id"`
	UserID    string         `json:"user_id"`
	Type      core.AlertType `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
}

func NewAlertCreatedMessage(a *core.Alert) *AlertCreatedMessage {
	return &AlertCreatedMessage{
		AlertID:   a.ID,
		WalletID:  a.WalletID,
		UserID:    a.UserID,
		Type:      a.Type,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *AlertCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// FromJSON creates a message from JSON bytes
func AlertCreatedMessageFromJSON(data []byte) (*AlertCreatedMessage, error) {
	var msg AlertCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
