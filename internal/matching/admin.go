package matching

import "context"

// ProcessAsset forces an immediate §4.2 decision for one asset and then
// invalidates the snapshot cache (spec §6: "processAsset(asset) — force
// immediate §4.2 for one asset, then invalidate snapshot").
func (e *Engine) ProcessAsset(ctx context.Context, asset string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	orders, err := e.store.FindActiveOrdersForAsset(ctx, asset)
	if err != nil {
		return err
	}
	defer e.cache.Invalidate()
	return e.decide(ctx, asset, orders)
}

// MarkActiveOrders lets order ingestion (out of this core's scope) prime
// the active-orders hint flag immediately, rather than waiting for the next
// tick's recomputation (spec §6).
func (e *Engine) MarkActiveOrders(ctx context.Context) error {
	return e.kv.SetActiveOrdersFlag(ctx, true)
}
