package inventory

// Urgency is the expiration urgency tier of an inventory item
type Urgency string

const (
	UrgencyCritical Urgency = "critical"
	UrgencyWarning  Urgency = "warning"
	UrgencyNormal   Urgency = "normal"
	// UrgencyExpired is used only in the notification feed, never by Classify
	UrgencyExpired Urgency = "expired"
)

// Classify maps whole days until expiration to an urgency tier.
// The reference clock must be the server clock at query time so every item in
// one response is classified against the same "now".
func Classify(daysRemaining int) Urgency {
	switch {
	case daysRemaining <= 3:
		return UrgencyCritical
	case daysRemaining <= 7:
		return UrgencyWarning
	default:
		return UrgencyNormal
	}
}

// FeedLabel is the urgency label shown in the notification feed, where items
// past their expiration date are called out separately.
func FeedLabel(daysRemaining int) Urgency {
	if daysRemaining < 0 {
		return UrgencyExpired
	}
	return Classify(daysRemaining)
}
