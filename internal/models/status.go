package models

// PaymentEvent names the operations that move a payment between statuses.
type PaymentEvent string

const (
	EventGatewayResult PaymentEvent = "GATEWAY_RESULT"
	EventCapture       PaymentEvent = "CAPTURE"
	EventCancel        PaymentEvent = "CANCEL"
	EventRefund        PaymentEvent = "REFUND"
)

// legalSources lists, per event, the only statuses the event may fire from.
// FAILED, REFUNDED and CANCELLED appear nowhere as a source: they are terminal.
var legalSources = map[PaymentEvent][]PaymentStatus{
	EventGatewayResult: {StatusPending},
	EventCapture:       {StatusAuthorized},
	EventCancel:        {StatusPending, StatusAuthorized},
	EventRefund:        {StatusSettled},
}

// CanTransition reports whether event may legally fire from the given status.
func CanTransition(from PaymentStatus, event PaymentEvent) bool {
	for _, s := range legalSources[event] {
		if s == from {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are accepted from s.
func (s PaymentStatus) IsTerminal() bool {
	return s == StatusFailed || s == StatusRefunded || s == StatusCancelled
}
