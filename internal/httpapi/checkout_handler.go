package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"checkout-service/internal/checkout"
	"checkout-service/internal/events"
)

// CheckoutService is the slice of the checkout package the handler
// needs.
type CheckoutService interface {
	Checkout(ctx context.Context, userName string, details events.CheckoutDetails) (events.BasketCheckedOut, error)
}

type CheckoutHandler struct {
	svc CheckoutService
}

func NewCheckoutHandler(svc CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{svc: svc}
}

// Checkout deletes the basket and publishes the checkout event. The
// response is 202: the order itself is created asynchronously by the
// ordering consumer.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userName := chi.URLParam(r, "userName")
	if userName == "" {
		writeError(w, http.StatusBadRequest, "missing userName")
		return
	}

	var details events.CheckoutDetails
	if err := json.NewDecoder(r.Body).Decode(&details); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	details.CorrelationID = GetCorrelationID(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ev, err := h.svc.Checkout(ctx, userName, details)
	switch {
	case errors.Is(err, checkout.ErrBasketNotFound):
		writeError(w, http.StatusNotFound, "basket not found")
	case errors.Is(err, checkout.ErrPublishFailed):
		writeError(w, http.StatusBadGateway, "checkout event could not be published")
	case err != nil:
		writeError(w, http.StatusInternalServerError, "checkout failed")
	default:
		writeJSON(w, http.StatusAccepted, map[string]string{
			"eventId": ev.EventID,
			"status":  "checkout accepted",
		})
	}
}
