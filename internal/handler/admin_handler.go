package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"paygate/internal/models"
	"paygate/internal/repository"
)

// AdminHandler manages per-site gateway credentials and exposes the
// transaction ledger. Mounted behind APIAuth.
type AdminHandler struct {
	gateways     *repository.GatewayRepository
	resolver     *repository.GatewayResolver
	transactions *repository.TransactionRepository
	logger       *zap.Logger
}

func NewAdminHandler(
	gateways *repository.GatewayRepository,
	resolver *repository.GatewayResolver,
	transactions *repository.TransactionRepository,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		gateways:     gateways,
		resolver:     resolver,
		transactions: transactions,
		logger:       logger,
	}
}

type upsertGatewayRequest struct {
	Site         string `json:"site"`
	PaymentType  string `json:"payment_type"`
	MerchantCode string `json:"merchant_code"`
	SecretKey    string `json:"secret_key"`
	IsEnabled    bool   `json:"is_enabled"`
}

// UpsertGateway stores a site's gateway credentials and drops the
// resolver cache so the change applies on the next payment.
func (h *AdminHandler) UpsertGateway(c echo.Context) error {
	var req upsertGatewayRequest
	if err := c.Bind(&req); err != nil {
		return respondFail(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Site == "" || req.SecretKey == "" {
		return respondFail(c, http.StatusBadRequest, "site and secret_key are required")
	}
	if req.PaymentType != "esewa" && req.PaymentType != "khalti" {
		return respondFail(c, http.StatusBadRequest, "payment_type must be esewa or khalti")
	}
	if req.PaymentType == "esewa" && req.MerchantCode == "" {
		return respondFail(c, http.StatusBadRequest, "merchant_code is required for esewa")
	}

	gw := &models.Gateway{
		Site:         req.Site,
		PaymentType:  req.PaymentType,
		MerchantCode: req.MerchantCode,
		SecretKey:    req.SecretKey,
		IsEnabled:    req.IsEnabled,
	}
	if err := h.gateways.Upsert(gw); err != nil {
		h.logger.Error("gateway upsert failed", zap.String("site", req.Site), zap.Error(err))
		return respondFail(c, http.StatusInternalServerError, "failed to save gateway")
	}
	h.resolver.Invalidate(req.Site)

	h.logger.Info("gateway credentials updated",
		zap.String("site", req.Site),
		zap.String("payment_type", req.PaymentType),
		zap.Bool("is_enabled", req.IsEnabled))

	// SecretKey is excluded from the JSON shape.
	return respondOK(c, gw, "gateway saved")
}

// ListGateways returns a site's configured gateways, secrets excluded.
func (h *AdminHandler) ListGateways(c echo.Context) error {
	siteName := c.QueryParam("site")
	if siteName == "" {
		return respondFail(c, http.StatusBadRequest, "site is required")
	}
	gateways, err := h.gateways.FindBySite(siteName)
	if err != nil {
		return respondFail(c, http.StatusInternalServerError, "failed to list gateways")
	}
	return respondOK(c, gateways, "")
}

// ListTransactions returns the ledger with pagination.
func (h *AdminHandler) ListTransactions(c echo.Context) error {
	siteName := c.QueryParam("site")
	limit := intQueryParam(c, "limit", 50)
	page := intQueryParam(c, "page", 1)

	txs, total, err := h.transactions.FindAll(siteName, limit, page)
	if err != nil {
		return respondFail(c, http.StatusInternalServerError, "failed to list transactions")
	}

	return respondOK(c, map[string]interface{}{
		"transactions": txs,
		"pagination": map[string]interface{}{
			"total":        total,
			"current_page": page,
			"per_page":     limit,
		},
	}, "")
}

func intQueryParam(c echo.Context, name string, defaultVal int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return defaultVal
	}
	var v int
	if err := echo.QueryParamsBinder(c).Int(name, &v).BindError(); err != nil || v <= 0 {
		return defaultVal
	}
	return v
}
