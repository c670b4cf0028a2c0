package realtime

// Event type tags placed in envelope.Type, one per pushed payload shape from
// internal/models/events.go.
const (
	EventNegotiationYourTurn         = "negotiation.yourTurn"
	EventQuantityConfirmationRequest = "quantity.confirmationRequest"
	EventQuantityPartialFillApproval = "quantity.partialFillApproval"
	EventTradeExecuted               = "trade.executed"
	EventMarketUpdate                = "market.update"
	EventNotification                = "notification"
)
