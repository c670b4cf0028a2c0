package matching

import (
	"fmt"

	"github.com/shopspring/decimal"

	"matchcore/internal/models"
)

// Secondary-channel message formatting. Realtime pushes carry the structured
// event itself; these strings are for the plain-text out-of-band channel
// (spec §6: "monetary displays in out-of-band messages use $ prefix and two
// decimals"), except marketUpdateMessage, which fills the Message field of
// the realtime market-update broadcast and carries no $ prefix.

func tradeExecutedMessage(e models.TradeExecuted) string {
	status := "partially filled"
	if e.IsFullyFilled {
		status = "fully filled"
	}
	return fmt.Sprintf("%s: order %s %s at $%s x%d (remaining %d)",
		e.Asset, e.OrderID, status, e.Price.StringFixed(2), e.Amount, e.RemainingAmount)
}

func negotiationTurnMessage(n models.NegotiationYourTurn) string {
	return fmt.Sprintf("%s: your turn to improve. bid $%s / offer $%s. reply IMPROVE <price> or PASS.",
		n.Asset, n.BestBid.StringFixed(2), n.BestOffer.StringFixed(2))
}

func marketUpdateMessage(asset string, bid, offer decimal.Decimal) string {
	return fmt.Sprintf("%s: bid %s / offer %s", asset, bid.StringFixed(2), offer.StringFixed(2))
}

func competitiveAdvisoryMessage(a models.CompetitiveBidAdvisory) string {
	return fmt.Sprintf("%s: your price $%s vs counterparty $%s, spread $%s (%s%%)",
		a.Asset, a.YourPrice.StringFixed(2), a.CounterpartyPrice.StringFixed(2),
		a.Spread.StringFixed(2), a.SpreadPct.StringFixed(2))
}
