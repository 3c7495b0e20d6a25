package entity

import "time"

// Transfer is a single observed token movement touching a watched address.
type Transfer struct {
	Chain       string    `json:"chain"`
	Symbol      string    `json:"symbol"`
	Amount      float64   `json:"amount"`
	FromAddress string    `json:"fromAddress"`
	ToAddress   string    `json:"toAddress"`
	OccurredAt  time.Time `json:"occurredAt"`
}
