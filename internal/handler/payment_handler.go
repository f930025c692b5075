package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"paygate/internal/middleware"
	"paygate/internal/models"
	"paygate/internal/notify"
	"paygate/internal/payment"
	"paygate/internal/payment/esewa"
	"paygate/internal/payment/khalti"
	"paygate/internal/pkg/utils"
)

// GatewaySource resolves per-site gateway credentials.
type GatewaySource interface {
	Resolve(site, paymentType string) (*models.Gateway, error)
}

// TransactionStore is the slice of the ledger the payment flow needs.
type TransactionStore interface {
	Create(tx *models.Transaction) error
	FindByUUID(uuid string) (*models.Transaction, error)
	UpdateStatus(uuid, status, refID string) error
}

// PaymentHandler exposes the initiate / verify / status endpoints and
// the gateway redirect callbacks.
type PaymentHandler struct {
	gateways GatewaySource
	ledger   TransactionStore
	deduper  middleware.CallbackDeduper
	notifier notify.Notifier
	logger   *zap.Logger

	esewaBaseURL  string
	khaltiBaseURL string
}

// NewPaymentHandler creates a new payment handler. Base URLs select the
// production or rc gateway hosts.
func NewPaymentHandler(
	gateways GatewaySource,
	ledger TransactionStore,
	deduper middleware.CallbackDeduper,
	notifier notify.Notifier,
	logger *zap.Logger,
	esewaBaseURL, khaltiBaseURL string,
) *PaymentHandler {
	return &PaymentHandler{
		gateways:      gateways,
		ledger:        ledger,
		deduper:       deduper,
		notifier:      notifier,
		logger:        logger,
		esewaBaseURL:  esewaBaseURL,
		khaltiBaseURL: khaltiBaseURL,
	}
}

// esewaService constructs the site's eSewa service from stored
// credentials. Construction fails fast on missing credentials, so a
// half-configured service can never reach signing code.
func (h *PaymentHandler) esewaService(site string) (*esewa.Service, error) {
	gw, err := h.gateways.Resolve(site, "esewa")
	if err != nil {
		return nil, err
	}
	return esewa.New(esewa.Config{
		MerchantCode: gw.MerchantCode,
		SecretKey:    gw.SecretKey,
		BaseURL:      h.esewaBaseURL,
	}, h.logger)
}

func (h *PaymentHandler) khaltiService(site string) (*khalti.Service, error) {
	gw, err := h.gateways.Resolve(site, "khalti")
	if err != nil {
		return nil, err
	}
	return khalti.New(khalti.Config{
		SecretKey: gw.SecretKey,
		BaseURL:   h.khaltiBaseURL,
	}, h.logger)
}

// Initiate opens a payment session and records it in the ledger.
func (h *PaymentHandler) Initiate(c echo.Context) error {
	var req models.InitiatePaymentRequest
	if err := c.Bind(&req); err != nil {
		return respondFail(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Method != "esewa" && req.Method != "khalti" {
		return respondFail(c, http.StatusBadRequest, "valid payment method is required (esewa or khalti)")
	}
	if req.OrderID == "" {
		req.OrderID = utils.GenerateOrderID()
	}

	siteName := site(c)
	initReq := payment.InitiateRequest{
		Amount:                req.Amount,
		TaxAmount:             req.TaxAmount,
		ProductServiceCharge:  req.ProductServiceCharge,
		ProductDeliveryCharge: req.ProductDeliveryCharge,
		ProductName:           req.ProductName,
		OrderID:               req.OrderID,
		SuccessURL:            req.SuccessURL,
		FailureURL:            req.FailureURL,
	}

	var provider payment.Provider
	var err error
	if req.Method == "esewa" {
		provider, err = h.esewaService(siteName)
	} else {
		provider, err = h.khaltiService(siteName)
	}
	if err != nil {
		return respondPaymentError(c, h.logger, err)
	}

	result, err := provider.InitiatePayment(c.Request().Context(), initReq)
	if err != nil {
		return respondPaymentError(c, h.logger, err)
	}

	tx := &models.Transaction{
		OrderID:         req.OrderID,
		Site:            siteName,
		Method:          req.Method,
		Amount:          req.Amount,
		TotalAmount:     result.FormFields["total_amount"],
		TransactionUUID: result.TransactionUUID,
		Pidx:            result.Pidx,
		Status:          models.TxStatusInitiated,
	}
	if tx.TotalAmount == "" {
		tx.TotalAmount = req.Amount
	}
	if tx.TransactionUUID == "" {
		tx.TransactionUUID = result.Pidx
	}
	if err := h.ledger.Create(tx); err != nil {
		h.logger.Error("failed to record transaction", zap.Error(err))
		return respondFail(c, http.StatusInternalServerError, "failed to record payment session")
	}

	return respondOK(c, result, "payment session created successfully")
}

// Verify authenticates a gateway redirect and reconciles its status.
// This is the only place the storefront may learn whether to fulfill.
func (h *PaymentHandler) Verify(c echo.Context) error {
	var req models.VerifyPaymentRequest
	if err := c.Bind(&req); err != nil {
		return respondFail(c, http.StatusBadRequest, "invalid request body")
	}

	switch req.Method {
	case "esewa":
		if req.Data == "" {
			return respondFail(c, http.StatusBadRequest, "payment data is required for eSewa verification")
		}
		return h.verifyEsewa(c, req.Data)
	case "khalti":
		if req.Pidx == "" {
			return respondFail(c, http.StatusBadRequest, "payment ID (pidx) is required for Khalti verification")
		}
		return h.verifyKhalti(c, req.Pidx)
	default:
		return respondFail(c, http.StatusBadRequest, "valid payment method is required (esewa or khalti)")
	}
}

func (h *PaymentHandler) verifyEsewa(c echo.Context, data string) error {
	svc, err := h.esewaService(site(c))
	if err != nil {
		return respondPaymentError(c, h.logger, err)
	}

	outcome, err := svc.VerifyCallback(data)
	if err != nil {
		return respondPaymentError(c, h.logger, err)
	}

	h.settle(c, outcome)
	return respondOK(c, outcome, outcome.Message)
}

func (h *PaymentHandler) verifyKhalti(c echo.Context, pidx string) error {
	svc, err := h.khaltiService(site(c))
	if err != nil {
		return respondPaymentError(c, h.logger, err)
	}

	outcome, err := svc.Lookup(c.Request().Context(), pidx)
	if err != nil {
		return respondPaymentError(c, h.logger, err)
	}

	h.settle(c, outcome)
	return respondOK(c, outcome, outcome.Message)
}

// settle updates the ledger with a verified outcome and reports the
// payment once. A replayed success redirect is answered normally but
// triggers no second report; the ledger update is idempotent.
func (h *PaymentHandler) settle(c echo.Context, outcome *payment.Outcome) {
	uuid := outcome.TransactionUUID
	if uuid == "" {
		return
	}

	if err := h.ledger.UpdateStatus(uuid, outcome.Status, outcome.RefID); err != nil {
		h.logger.Error("failed to update transaction status",
			zap.String("transaction_uuid", uuid), zap.Error(err))
	}

	if !outcome.ShouldProvideService {
		return
	}

	replay, err := h.deduper.Seen(c.Request().Context(), uuid)
	if err != nil {
		h.logger.Warn("callback dedup check failed", zap.Error(err))
	}
	if replay {
		h.logger.Info("duplicate success callback ignored",
			zap.String("transaction_uuid", uuid))
		return
	}

	if tx, err := h.ledger.FindByUUID(uuid); err == nil {
		h.notifier.PaymentVerified(tx, outcome)
	}
}

// Status resolves a transaction's state straight from the gateway, for
// PENDING payments and lost redirects. No caching: two calls may
// legitimately observe different states.
func (h *PaymentHandler) Status(c echo.Context) error {
	var req models.StatusCheckRequest
	if err := c.Bind(&req); err != nil {
		return respondFail(c, http.StatusBadRequest, "invalid request body")
	}
	if req.TransactionUUID == "" || req.TotalAmount == "" {
		return respondFail(c, http.StatusBadRequest, "total_amount and transaction_uuid are required")
	}

	svc, err := h.esewaService(site(c))
	if err != nil {
		return respondPaymentError(c, h.logger, err)
	}

	outcome, err := svc.CheckStatus(c.Request().Context(), req.ProductCode, req.TotalAmount, req.TransactionUUID)
	if err != nil {
		return respondPaymentError(c, h.logger, err)
	}

	h.settle(c, outcome)
	return respondOK(c, outcome, outcome.Message)
}

// EsewaCallback handles the browser redirect from eSewa's payment form:
// GET /payment/esewa/callback?data=<base64>.
func (h *PaymentHandler) EsewaCallback(c echo.Context) error {
	data := c.QueryParam("data")
	if data == "" {
		return respondFail(c, http.StatusBadRequest, "payment data is required")
	}
	return h.verifyEsewa(c, data)
}

// KhaltiCallback handles the browser redirect from Khalti:
// GET /payment/khalti/callback?pidx=<pidx>. The redirect's own status
// parameter is advisory; only the lookup result counts.
func (h *PaymentHandler) KhaltiCallback(c echo.Context) error {
	pidx := c.QueryParam("pidx")
	if pidx == "" {
		return respondFail(c, http.StatusBadRequest, "payment ID (pidx) is required")
	}
	return h.verifyKhalti(c, pidx)
}
