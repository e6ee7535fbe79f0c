package domain

import "github.com/google/uuid"

// UserAddress is one stored subscription: a chat and the raw address it
// watches. The raw text is re-parsed on every check, so fixes to the address
// parser apply to existing subscriptions.
type UserAddress struct {
	ID     uuid.UUID
	ChatID int64
	City   City
	Raw    string
}
