package main

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/muhammadolammi/cvboard/internal/auth"
	"github.com/muhammadolammi/cvboard/internal/database"
	"github.com/muhammadolammi/cvboard/internal/payment"
	"go.uber.org/zap"
)

type plan struct {
	Title       string
	AmountCents int64
	Currency    string
}

var plans = map[string]plan{
	"premium_monthly": {Title: "CV Premium - 1 mes", AmountCents: 999, Currency: "EUR"},
	"premium_yearly":  {Title: "CV Premium - 12 meses", AmountCents: 7999, Currency: "EUR"},
	"job_featured":    {Title: "Oferta destacada - 30 días", AmountCents: 2900, Currency: "EUR"},
}

type createPaymentRequest struct {
	Plan  string `json:"plan"`
	Email string `json:"email"`
}

func (cfg *ApiConfig) handlerCreatePayment(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	var req createPaymentRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := requireFields(field{"plan", req.Plan}); err != nil {
		respondValidation(w, err)
		return
	}
	p, ok := plans[req.Plan]
	if !ok {
		respondError(w, http.StatusBadRequest, "unknown plan", req.Plan)
		return
	}

	id := uuid.New()
	checkout, err := cfg.Payments.CreateCheckout(r.Context(), payment.CheckoutRequest{
		Reference:  id.String(),
		PayerEmail: req.Email,
		Items: []payment.Item{{
			Title:     p.Title,
			Quantity:  1,
			UnitPrice: float64(p.AmountCents) / 100,
			Currency:  p.Currency,
		}},
	})
	if err != nil {
		cfg.Logger.Error("create checkout", zap.String("plan", req.Plan), zap.Error(err))
		respondError(w, http.StatusBadGateway, "payment gateway error", err.Error())
		return
	}

	row, err := cfg.DB.CreatePayment(r.Context(), database.CreatePaymentParams{
		ID:          id,
		UserID:      userID,
		CheckoutID:  checkout.ID,
		AmountCents: p.AmountCents,
		Currency:    p.Currency,
		Status:      payment.StatusPending,
	})
	if err != nil {
		cfg.Logger.Error("record payment", zap.String("checkout_id", checkout.ID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "could not record payment", "")
		return
	}
	out := paymentFromDB(row)
	out.CheckoutURL = checkout.InitPoint
	writeJSON(w, http.StatusCreated, out)
}

// handlerGetPayment refreshes the payment status from the gateway.
func (cfg *ApiConfig) handlerGetPayment(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	id, ok := pathUUID(w, r)
	if !ok {
		return
	}
	row, err := cfg.DB.GetPayment(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && row.UserID != userID) {
		respondError(w, http.StatusNotFound, "payment not found", "")
		return
	}
	if err != nil {
		cfg.Logger.Error("get payment", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "could not load payment", "")
		return
	}

	status, err := cfg.Payments.Status(r.Context(), id.String())
	if err != nil {
		cfg.Logger.Error("query payment status", zap.String("payment_id", id.String()), zap.Error(err))
		respondError(w, http.StatusBadGateway, "payment gateway error", err.Error())
		return
	}
	if status != row.Status {
		row, err = cfg.DB.UpdatePaymentStatus(r.Context(), database.UpdatePaymentStatusParams{Status: status, ID: id})
		if err != nil {
			cfg.Logger.Error("update payment status", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "could not update payment", "")
			return
		}
	}
	writeJSON(w, http.StatusOK, paymentFromDB(row))
}
