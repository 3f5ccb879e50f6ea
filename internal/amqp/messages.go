package amqp

import (
	"encoding/json"
	"time"
)

// ExpenseRecordedMessage announces a committed personal expense to the
// backup pipeline. It carries only identifiers; the worker fetches the
// full record from storage so the queue never holds stale copies.
type ExpenseRecordedMessage struct {
	ExpenseID string    `json:"expense_id"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewExpenseRecordedMessage creates a message for the given expense.
func NewExpenseRecordedMessage(expenseID, userID string) *ExpenseRecordedMessage {
	return &ExpenseRecordedMessage{
		ExpenseID: expenseID,
		UserID:    userID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *ExpenseRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseRecordedMessageFromJSON creates a message from JSON bytes.
func ExpenseRecordedMessageFromJSON(data []byte) (*ExpenseRecordedMessage, error) {
	var msg ExpenseRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
