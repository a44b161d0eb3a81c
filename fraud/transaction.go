package fraud

import (
	"time"

	"github.com/kbukum/fraudguard/validation"
)

// Transaction is the immutable input record for one screening run.
type Transaction struct {
	TransactionID   string    `json:"transaction_id" validate:"required"`
	SenderAccount   string    `json:"sender_account" validate:"required"`
	ReceiverAccount string    `json:"receiver_account" validate:"required"`
	Amount          float64   `json:"amount" validate:"gte=0"`
	Timestamp       time.Time `json:"timestamp" validate:"required"`
	Description     string    `json:"description,omitempty"`
	IsRealtime      bool      `json:"is_realtime"`
}

// Validate checks the transaction against its field constraints.
func (t Transaction) Validate() error {
	return validation.Validate(t)
}
