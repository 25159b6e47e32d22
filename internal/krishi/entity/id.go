package entity

import (
	"strings"

	"github.com/google/uuid"
)

// Display ID prefixes, kept from the original booking receipts so QR
// payloads stay recognizable.
const (
	FreightIDPrefix  = "REQ"
	QuoteIDPrefix    = "QT"
	OrderIDPrefix    = "B2B"
	DeliveryIDPrefix = "B2BD"
)

// NewDisplayID returns a prefixed opaque ID such as "QT-4F21A9C3".
// Creation order is carried by CreatedAt, not by the ID itself.
func NewDisplayID(prefix string) string {
	return prefix + "-" + strings.ToUpper(uuid.New().String()[:8])
}
