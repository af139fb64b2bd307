package domain

// Status is an order lifecycle state. Two vocabularies coexist: the current
// flow (PENDING through COMPLETED) and the legacy flow (PAID, FULFILLING,
// DISPUTED) still carried by historical orders. Legacy statuses are
// first-class members of the same enum; the transition table is the union
// of both flows.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusConfirmed  Status = "CONFIRMED"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
	StatusRefunded   Status = "REFUNDED"
	StatusAbandoned  Status = "ABANDONED"

	// Legacy flow.
	StatusPaid       Status = "PAID"
	StatusFulfilling Status = "FULFILLING"
	StatusDisputed   Status = "DISPUTED"
)

var transitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {StatusCompleted, StatusRefunded},
	StatusCompleted:  {StatusRefunded},
	StatusCancelled:  {},
	StatusRefunded:   {},
	StatusAbandoned:  {StatusPending},
	StatusPaid:       {StatusFulfilling, StatusConfirmed, StatusCancelled, StatusRefunded, StatusDisputed},
	StatusFulfilling: {StatusShipped, StatusProcessing, StatusCancelled},
	StatusDisputed:   {},
}

// IsValid reports whether s is a known status in either vocabulary.
func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// IsTerminal reports whether s has no outgoing transitions.
func (s Status) IsTerminal() bool {
	targets, ok := transitions[s]
	return ok && len(targets) == 0
}

// CanTransitionTo reports whether target is a legal next status for s.
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the legal next statuses for s.
func (s Status) AllowedTransitions() []Status {
	return append([]Status(nil), transitions[s]...)
}

// AllStatuses returns every known status, both vocabularies included.
func AllStatuses() []Status {
	return []Status{
		StatusPending,
		StatusConfirmed,
		StatusProcessing,
		StatusShipped,
		StatusDelivered,
		StatusCompleted,
		StatusCancelled,
		StatusRefunded,
		StatusAbandoned,
		StatusPaid,
		StatusFulfilling,
		StatusDisputed,
	}
}
