package amqp

import (
	"testing"
	"time"

	"stash/internal/core"
)

func TestAlertCreatedMessageRoundTrip(t *testing.T) {
	a := &core.Alert{
		ID:       "a1",
		WalletID: "w1",
		UserID:   "u1",
		Type:     core.AlertBudgetExceeded,
	}
	msg := NewAlertCreatedMessage(a)
	if msg.AlertID != "a1" || msg.Type != core.AlertBudgetExceeded {
		t.Fatalf("message not populated: %+v", msg)
	}
	if msg.Timestamp.IsZero() {
		t.Fatal("timestamp must be set")
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatal(err)
	}
	got, err := AlertCreatedMessageFromJSON(body)
	if err != nil {
		t.Fatal(err)
	}
	if got.AlertID != msg.AlertID || got.WalletID != msg.WalletID || got.Type != msg.Type {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, msg)
	}
	if !got.Timestamp.Equal(msg.Timestamp.Truncate(time.Nanosecond)) {
		t.Fatalf("timestamp mismatch: %v vs %v", got.Timestamp, msg.Timestamp)
	}
}

func TestAlertCreatedMessageFromJSONRejectsGarbage(t *testing.T) {
	if _, err := AlertCreatedMessageFromJSON([]byte("not json")); err == nil {
		t.Fatal("expected an unmarshal error")
	}
}
