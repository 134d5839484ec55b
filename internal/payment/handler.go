package payment

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi"

	errors "github.com/frahmantamala/tbcpay/internal"
	"github.com/frahmantamala/tbcpay/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	service *Service
	formURL string
	logger  *slog.Logger
}

func NewHandler(base *transport.BaseHandler, service *Service, formURL string, logger *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: base,
		service:     service,
		formURL:     formURL,
		logger:      logger,
	}
}

// StartPayment handles POST /api/v1/payments. On success it renders the
// auto-submit redirect page carrying the gateway-assigned trans_id; a
// gateway decline renders the error page instead.
func (h *Handler) StartPayment(w http.ResponseWriter, r *http.Request) {
	var req StartPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("StartPayment: failed to parse request body", "error", err)
		h.HandleError(w, errors.NewValidationError("invalid request body", errors.ErrCodeValidationFailed))
		return
	}

	if err := req.Validate(); err != nil {
		h.logger.Error("StartPayment: validation error", "error", err)
		h.HandleError(w, err)
		return
	}

	attempt := h.service.Init(InitParams{
		Amount:   req.Amount,
		Currency: req.Currency,
		Message:  req.Description,
		Locale:   req.Locale,
		ClientIP: clientIP(r),
	})
	if strings.EqualFold(req.Type, "DMS") {
		attempt.DMS()
	}

	outcome, err := attempt.Start(r.Context(), SubjectRef{ID: req.SubjectID, Type: req.SubjectType})
	if err != nil {
		h.logger.Error("StartPayment: start failed",
			"error", err,
			"subject_type", req.SubjectType,
			"subject_id", req.SubjectID)
		h.HandleError(w, err)
		return
	}

	switch outcome.Status {
	case StartStarted:
		h.renderRedirect(w, redirectView{
			TransID: outcome.Payload.TransactionID(),
			FormURL: h.formURL,
		})
	case StartDeclined:
		h.renderRedirect(w, redirectView{Error: outcome.GatewayError})
	default:
		// The attempt may or may not exist at the gateway; the caller
		// decides whether to retry.
		h.WriteError(w, http.StatusBadGateway, "gateway response was ambiguous, retry the payment")
	}
}

// HandleCallback handles the bank's return POST carrying trans_id, and
// reconciles the transaction it names.
func (h *Handler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.HandleError(w, errors.NewValidationError("invalid form body", errors.ErrCodeValidationFailed))
		return
	}

	transID := r.FormValue("trans_id")
	if transID == "" {
		h.HandleError(w, errors.NewValidationError("trans_id is required", errors.ErrCodeValidationFailed))
		return
	}

	result, err := h.service.IsOk(r.Context(), transID, clientIP(r))
	if err != nil {
		h.logger.Error("HandleCallback: reconciliation failed", "error", err, "trans_id", transID)
		h.HandleError(w, err)
		return
	}

	h.writeReconcileResult(w, result)
}

// CaptureDMS handles POST /api/v1/payments/{transID}/capture.
func (h *Handler) CaptureDMS(w http.ResponseWriter, r *http.Request) {
	transID := chi.URLParam(r, "transID")

	result, err := h.service.CaptureDMS(r.Context(), transID, clientIP(r))
	if err != nil {
		h.logger.Error("CaptureDMS: capture failed", "error", err, "trans_id", transID)
		h.HandleError(w, err)
		return
	}

	h.writeReconcileResult(w, result)
}

// GetPayment handles GET /api/v1/payments/{transID}.
func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	transID := chi.URLParam(r, "transID")

	t, err := h.service.GetByTransID(transID)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, NewTransactionView(t))
}

// MarkFailed handles POST /api/v1/payments/fail: the integrating
// application's own flow aborted, e.g. the payer abandoned the redirect.
func (h *Handler) MarkFailed(w http.ResponseWriter, r *http.Request) {
	h.service.Fail()
	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "failure recorded"})
}

func (h *Handler) writeReconcileResult(w http.ResponseWriter, result *ReconcileResult) {
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"trans_id":     result.Transaction.TransID,
		"is_paid":      result.IsPaid,
		"result_code":  result.Transaction.ResultCode,
		"card_number":  result.Transaction.CardNumber,
		"completed_at": result.Transaction.CompletedAt,
	})
}

func (h *Handler) renderRedirect(w http.ResponseWriter, view redirectView) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := redirectTemplate.Execute(w, view); err != nil {
		h.logger.Error("failed to render redirect page", "error", err)
	}
}

// clientIP trusts RemoteAddr; the router's RealIP middleware rewrites it
// from forwarding headers when the service sits behind a proxy.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
