// internal/adapters/in/http/store/handler/checkout_handler.go
package storeHandler

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"barcart/internal/adapters/out/dispatch"
	usecase "barcart/internal/application/usecase"
	customerdom "barcart/internal/domain/customer"
)

// CheckoutHandler drives the checkout engine over HTTP.
//
//	GET  /store/checkout          -> current view
//	POST /store/checkout/method   -> select payment method
//	POST /store/checkout/info     -> enter the customer-info form
//	PUT  /store/checkout/fields   -> re-validate on field change
//	POST /store/checkout/cancel   -> back to idle
//	POST /store/checkout/pay      -> gateway path (session + redirect)
//	POST /store/checkout/submit   -> message-handoff path
//
// Every response carries the view plus the pending browsing-context dispatch
// recorded for this session, so the front-end can perform the open/navigate.
type CheckoutHandler struct {
	uc         *usecase.CheckoutUsecase
	dispatches *dispatch.Recorder
}

func NewCheckoutHandler(uc *usecase.CheckoutUsecase, dispatches *dispatch.Recorder) http.Handler {
	return &CheckoutHandler{uc: uc, dispatches: dispatches}
}

func (h *CheckoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.uc == nil {
		writeErr(w, http.StatusInternalServerError, "checkout handler is not configured")
		return
	}

	sid := readSessionID(r)
	if sid == "" {
		writeErr(w, http.StatusBadRequest, "session id is required")
		return
	}

	path := strings.TrimRight(r.URL.Path, "/")
	isGET := r.Method == http.MethodGet
	isPOST := r.Method == http.MethodPost
	isPUT := r.Method == http.MethodPut

	switch {
	case isGET && strings.HasSuffix(path, "/checkout"):
		h.handleView(w, r, sid)
	case isPOST && strings.HasSuffix(path, "/checkout/method"):
		h.handleSelectMethod(w, r, sid)
	case isPOST && strings.HasSuffix(path, "/checkout/info"):
		h.handleStartInfo(w, r, sid)
	case isPUT && strings.HasSuffix(path, "/checkout/fields"):
		h.handleFieldChanged(w, r, sid)
	case isPOST && strings.HasSuffix(path, "/checkout/cancel"):
		h.handleCancel(w, r, sid)
	case isPOST && strings.HasSuffix(path, "/checkout/pay"):
		h.handlePay(w, r, sid)
	case isPOST && strings.HasSuffix(path, "/checkout/submit"):
		h.handleSubmit(w, r, sid)
	default:
		writeErr(w, http.StatusNotFound, "not found")
	}
}

// ------------------------------------------------------------
// request DTOs
// ------------------------------------------------------------

type selectMethodReq struct {
	Method string `json:"method"` // "gateway" | "message_handoff"
}

type customerInfoReq struct {
	FullName     string `json:"fullName"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	Notes        string `json:"notes"`
	TermsConsent bool   `json:"termsConsent"`
}

func (req customerInfoReq) toRaw() customerdom.RawInput {
	return customerdom.RawInput{
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		Notes:        req.Notes,
		TermsConsent: req.TermsConsent,
	}
}

// ------------------------------------------------------------
// endpoints
// ------------------------------------------------------------

func (h *CheckoutHandler) handleView(w http.ResponseWriter, r *http.Request, sid string) {
	v, err := h.uc.View(r.Context(), sid)
	if err != nil {
		h.writeEventErr(w, sid, "view", v, err)
		return
	}
	h.respond(w, http.StatusOK, sid, v)
}

func (h *CheckoutHandler) handleSelectMethod(w http.ResponseWriter, r *http.Request, sid string) {
	var req selectMethodReq
	if err := readJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}

	v, err := h.uc.SelectMethod(r.Context(), sid, usecase.PaymentMethod(strings.TrimSpace(req.Method)))
	if err != nil {
		h.writeEventErr(w, sid, "select-method", v, err)
		return
	}
	h.respond(w, http.StatusOK, sid, v)
}

func (h *CheckoutHandler) handleStartInfo(w http.ResponseWriter, r *http.Request, sid string) {
	v, err := h.uc.StartCollectingInfo(r.Context(), sid)
	if err != nil {
		h.writeEventErr(w, sid, "start-info", v, err)
		return
	}
	h.respond(w, http.StatusOK, sid, v)
}

func (h *CheckoutHandler) handleFieldChanged(w http.ResponseWriter, r *http.Request, sid string) {
	var req customerInfoReq
	if err := readJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}

	v, err := h.uc.FieldChanged(r.Context(), sid, req.toRaw())
	if err != nil {
		h.writeEventErr(w, sid, "field-changed", v, err)
		return
	}
	h.respond(w, http.StatusOK, sid, v)
}

func (h *CheckoutHandler) handleCancel(w http.ResponseWriter, r *http.Request, sid string) {
	v, err := h.uc.Cancel(r.Context(), sid)
	if err != nil {
		h.writeEventErr(w, sid, "cancel", v, err)
		return
	}
	h.respond(w, http.StatusOK, sid, v)
}

func (h *CheckoutHandler) handlePay(w http.ResponseWriter, r *http.Request, sid string) {
	v, err := h.uc.StartGatewayPayment(r.Context(), sid)
	if err != nil {
		h.writeEventErr(w, sid, "pay", v, err)
		return
	}
	h.respond(w, http.StatusOK, sid, v)
}

func (h *CheckoutHandler) handleSubmit(w http.ResponseWriter, r *http.Request, sid string) {
	var req customerInfoReq
	if err := readJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}

	v, err := h.uc.SubmitCustomerInfo(r.Context(), sid, req.toRaw())
	if err != nil {
		h.writeEventErr(w, sid, "submit", v, err)
		return
	}
	h.respond(w, http.StatusOK, sid, v)
}

// ------------------------------------------------------------
// responses
// ------------------------------------------------------------

type checkoutResp struct {
	View     usecase.View       `json:"view"`
	Dispatch *dispatch.Dispatch `json:"dispatch,omitempty"`
	Error    string             `json:"error,omitempty"`
}

func (h *CheckoutHandler) respond(w http.ResponseWriter, status int, sid string, v usecase.View) {
	resp := checkoutResp{View: v}
	if h.dispatches != nil {
		if d, ok := h.dispatches.Take(sid); ok {
			resp.Dispatch = &d
		}
	}
	writeJSON(w, status, resp)
}

// writeEventErr maps engine errors to statuses. The view is included whenever
// the engine produced one, so the front-end can re-render the real state.
func (h *CheckoutHandler) writeEventErr(w http.ResponseWriter, sid, op string, v usecase.View, err error) {
	log.Printf("[store_checkout_handler] %s event error session=%s err=%v", op, maskSID(sid), err)

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, usecase.ErrCheckoutInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, usecase.ErrCheckoutEmptyCart),
		errors.Is(err, usecase.ErrCheckoutInvalidTransition),
		errors.Is(err, usecase.ErrCheckoutInFlight),
		errors.Is(err, usecase.ErrCheckoutGatewayUnavailable):
		status = http.StatusConflict
	case errors.Is(err, usecase.ErrCheckoutValidationBlocked):
		status = http.StatusUnprocessableEntity
	}

	// recoverable dispatch failures (gateway call, deep link): the view
	// already carries the retry message
	if v.Error != "" && status == http.StatusInternalServerError {
		status = http.StatusBadGateway
	}

	resp := checkoutResp{View: v, Error: err.Error()}
	if h.dispatches != nil {
		if d, ok := h.dispatches.Take(sid); ok {
			resp.Dispatch = &d
		}
	}
	writeJSON(w, status, resp)
}
