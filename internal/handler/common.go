package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"paygate/internal/bootstrap"
	"paygate/internal/models"
	"paygate/internal/payment"
	"paygate/internal/payment/esewa"
)

func respondOK(c echo.Context, data interface{}, message string) error {
	return c.JSON(http.StatusOK, models.OK(data, message))
}

func respondFail(c echo.Context, status int, msg string) error {
	return c.JSON(status, models.Fail(msg, status))
}

// site resolves the tenant for a request: explicit query parameter,
// then the X-Site header set by the storefront proxy, then the default
// site.
func site(c echo.Context) string {
	if s := c.QueryParam("site"); s != "" {
		return s
	}
	if s := c.Request().Header.Get("X-Site"); s != "" {
		return s
	}
	return bootstrap.DefaultSite
}

// respondPaymentError maps the error taxonomy onto the envelope. The
// user-facing text stays generic for security-relevant failures; full
// diagnostics go to the log only, never into the response, so the
// endpoint cannot be used as a signature oracle.
func respondPaymentError(c echo.Context, logger *zap.Logger, err error) error {
	var missing *esewa.MissingFieldError
	var mismatch *esewa.SignatureMismatchError
	var transport *payment.TransportError
	var gateway *payment.GatewayError

	switch {
	case errors.Is(err, esewa.ErrEmptyCallback),
		errors.Is(err, esewa.ErrMalformedBase64),
		errors.Is(err, esewa.ErrInvalidJSON):
		logger.Warn("callback decode failed", zap.Error(err))
		return respondFail(c, http.StatusBadRequest, "Invalid payment response format - failed to decode data")

	case errors.As(err, &missing):
		logger.Warn("callback missing required field", zap.String("field", missing.Field))
		return respondFail(c, http.StatusBadRequest, "Invalid payment response - missing required fields")

	case errors.As(err, &mismatch):
		// Diagnostic detail is log-only.
		logger.Warn("payment signature mismatch",
			zap.String("expected", mismatch.Expected),
			zap.String("received", mismatch.Received),
			zap.String("signed_payload", mismatch.SignedPayload))
		return respondFail(c, http.StatusBadRequest, "Invalid signature - payment verification failed")

	case errors.Is(err, payment.ErrNotConfigured), errors.Is(err, gorm.ErrRecordNotFound):
		logger.Error("payment gateway not configured", zap.Error(err))
		return respondFail(c, http.StatusServiceUnavailable, "Payment gateway is not configured for this store")

	case errors.As(err, &transport):
		logger.Warn("gateway unreachable", zap.Error(err))
		return respondFail(c, http.StatusBadGateway, "Unable to reach the payment gateway. Please try again.")

	case errors.As(err, &gateway):
		logger.Warn("gateway error", zap.Error(err))
		msg := gateway.Message
		if msg == "" {
			msg = "The payment gateway reported an error. Please try again later."
		}
		return respondFail(c, http.StatusBadGateway, msg)

	default:
		logger.Error("payment processing failed", zap.Error(err))
		return respondFail(c, http.StatusBadRequest, err.Error())
	}
}
