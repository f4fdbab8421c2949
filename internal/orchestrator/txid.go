package orchestrator

import (
	"strings"

	"github.com/google/uuid"
)

// NewTransactionID mints a collision-resistant transaction identifier:
// "TXN_" followed by 16 uppercase hex characters. Generated exactly once per
// accepted request and never reused.
func NewTransactionID() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return "TXN_" + raw[:16]
}
