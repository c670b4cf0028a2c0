package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"matchcore/internal/models"
	"matchcore/internal/realtime"
)

// EngineAPI is the subset of *matching.Engine the admin surface drives.
type EngineAPI interface {
	Start(ctx context.Context)
	Stop()
	ProcessAsset(ctx context.Context, asset string) error
	MarkActiveOrders(ctx context.Context) error
	HandleNegotiationResponse(ctx context.Context, asset, userID string, improved bool, newPrice *decimal.Decimal) error
	HandleQuantityConfirmationResponse(ctx context.Context, key models.ConfirmationKey, accepted bool, newQuantity *int64) error
}

// OrderBookAPI is the subset of *projection.Projector the admin surface exposes.
type OrderBookAPI interface {
	GetOrderBook(ctx context.Context, asset string) (models.OrderBookSnapshot, error)
}

// Upgrader mirrors realtime.Upgrade so routes.go doesn't import *realtime.Hub
// directly into Dependencies' field type.
type Upgrader interface {
	Upgrade(w http.ResponseWriter, r *http.Request, userID string) error
}

// hubUpgrader adapts a *realtime.Hub to the Upgrader interface, since
// realtime.Upgrade is a free function rather than a Hub method.
type hubUpgrader struct {
	hub *realtime.Hub
	log *zap.Logger
}

// NewHubUpgrader wraps hub so it satisfies Upgrader for Dependencies.Hub.
func NewHubUpgrader(hub *realtime.Hub, log *zap.Logger) Upgrader {
	return &hubUpgrader{hub: hub, log: log}
}

func (u *hubUpgrader) Upgrade(w http.ResponseWriter, r *http.Request, userID string) error {
	return realtime.Upgrade(u.hub, u.log, w, r, userID)
}

type handlers struct {
	deps *Dependencies
}

func (h *handlers) start(w http.ResponseWriter, r *http.Request) {
	h.deps.Engine.Start(r.Context())
	w.WriteHeader(http.StatusAccepted)
}

func (h *handlers) stop(w http.ResponseWriter, r *http.Request) {
	h.deps.Engine.Stop()
	w.WriteHeader(http.StatusAccepted)
}

func (h *handlers) processAsset(w http.ResponseWriter, r *http.Request) {
	asset := mux.Vars(r)["asset"]
	if err := h.deps.Engine.ProcessAsset(r.Context(), asset); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) markActiveOrders(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Engine.MarkActiveOrders(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type negotiationResponseBody struct {
	Asset    string           `json:"asset"`
	UserID   string           `json:"userId"`
	Improved bool             `json:"improved"`
	NewPrice *decimal.Decimal `json:"newPrice"`
}

func (h *handlers) handleNegotiationResponse(w http.ResponseWriter, r *http.Request) {
	var body negotiationResponseBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	err := h.deps.Engine.HandleNegotiationResponse(r.Context(), body.Asset, body.UserID, body.Improved, body.NewPrice)
	if err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type confirmationResponseBody struct {
	Asset        string `json:"asset"`
	BidOrderID   string `json:"bidOrderId"`
	OfferOrderID string `json:"offerOrderId"`
	Accepted     bool   `json:"accepted"`
	NewQuantity  *int64 `json:"newQuantity"`
}

func (h *handlers) handleQuantityConfirmationResponse(w http.ResponseWriter, r *http.Request) {
	var body confirmationResponseBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	key := models.ConfirmationKey{Asset: body.Asset, BidOrderID: body.BidOrderID, OfferOrderID: body.OfferOrderID}
	err := h.deps.Engine.HandleQuantityConfirmationResponse(r.Context(), key, body.Accepted, body.NewQuantity)
	if err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) getOrderBook(w http.ResponseWriter, r *http.Request) {
	asset := mux.Vars(r)["asset"]
	snap, err := h.deps.Book.GetOrderBook(r.Context(), asset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *handlers) serveWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId query parameter is required", http.StatusBadRequest)
		return
	}
	if err := h.deps.Hub.Upgrade(w, r, userID); err != nil {
		writeError(w, http.StatusBadRequest, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
