package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rhoulihan/wavemax-payment-service/internal/delivery/http/dto/request"
	"github.com/rhoulihan/wavemax-payment-service/internal/delivery/http/dto/response"
	"github.com/rhoulihan/wavemax-payment-service/internal/domain"
)

var validate = validator.New()

type PaymentHandler struct {
	tokens  domain.TokenUsecase
	baseURL string
}

func NewPaymentHandler(tokens domain.TokenUsecase, baseURL string) *PaymentHandler {
	return &PaymentHandler{tokens: tokens, baseURL: baseURL}
}

func (h *PaymentHandler) CreateToken(c *fiber.Ctx) error {
	var req request.CreateTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(response.ErrorResponse{Error: "invalid request body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(response.ErrorResponse{Error: err.Error()})
	}

	created, err := h.tokens.CreateToken(c.Context(),
		domain.CustomerData{
			Name:        req.Customer.Name,
			Email:       req.Customer.Email,
			Phone:       req.Customer.Phone,
			AffiliateID: req.Customer.AffiliateID,
		},
		domain.PaymentData{
			Amount:      req.Payment.Amount,
			Currency:    req.Payment.Currency,
			OrderID:     req.Payment.OrderID,
			Description: req.Payment.Description,
		},
	)
	if err != nil {
		if errors.Is(err, domain.ErrPoolExhausted) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(response.ErrorResponse{Error: domain.ErrPoolExhausted.Error()})
		}
		slog.Error("create token failed", "error", err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(response.ErrorResponse{Error: "internal error"})
	}

	return c.Status(fiber.StatusCreated).JSON(response.CreateTokenResponse{
		Token:        created.Token,
		CallbackPath: created.CallbackPath,
		FormURL:      created.FormURL,
		ExpiresAt:    created.ExpiresAt,
	})
}

func (h *PaymentHandler) GetStatus(c *fiber.Ctx) error {
	token := c.Params("token")

	projection, err := h.tokens.GetStatus(c.Context(), token)
	if err != nil {
		if errors.Is(err, domain.ErrTokenNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(response.ErrorResponse{Error: domain.ErrTokenNotFound.Error()})
		}
		slog.Error("get token status failed", "token", token, "error", err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(response.ErrorResponse{Error: "internal error"})
	}

	return c.JSON(response.TokenStatusResponse{
		Status:        string(projection.Status),
		ErrorMessage:  projection.ErrorMessage,
		TransactionID: projection.TransactionID,
	})
}

func (h *PaymentHandler) CancelToken(c *fiber.Ctx) error {
	token := c.Params("token")

	projection, err := h.tokens.CancelToken(c.Context(), token)
	if err != nil {
		if errors.Is(err, domain.ErrTokenNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(response.ErrorResponse{Error: domain.ErrTokenNotFound.Error()})
		}
		slog.Error("cancel token failed", "token", token, "error", err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(response.ErrorResponse{Error: "internal error"})
	}

	return c.JSON(response.TokenStatusResponse{
		Status:        string(projection.Status),
		ErrorMessage:  projection.ErrorMessage,
		TransactionID: projection.TransactionID,
	})
}

// callbackParam reads a provider result parameter from the query string or,
// for server-side POSTs, from the form-encoded body.
func callbackParam(c *fiber.Ctx, key string) string {
	if v := c.Query(key); v != "" {
		return v
	}
	return c.FormValue(key)
}

// FormCallback handles the provider's browser redirect after the hosted form
// submits. Paygistix-style result params: Result ("0" means approved),
// PNRef, AuthCode, Message.
func (h *PaymentHandler) FormCallback(c *fiber.Ctx) error {
	path := "/payment-callback/" + c.Params("slot")

	paymentToken, err := h.tokens.ResolveByPath(c.Context(), path)
	if err != nil {
		if errors.Is(err, domain.ErrTokenNotFound) {
			return c.Redirect(fmt.Sprintf("%s/payment-status?error=session_expired", h.baseURL), fiber.StatusFound)
		}
		slog.Error("form callback resolve failed", "path", path, "error", err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(response.ErrorResponse{Error: "internal error"})
	}

	result := callbackParam(c, "Result")
	pnref := callbackParam(c, "PNRef")
	message := callbackParam(c, "Message")

	providerParams := map[string]string{
		"Result":   result,
		"PNRef":    pnref,
		"AuthCode": callbackParam(c, "AuthCode"),
		"Amount":   callbackParam(c, "Amount"),
		"Message":  message,
	}
	rawParams, _ := json.Marshal(providerParams)

	outcome := domain.TokenOutcome{
		Status:           domain.StatusSuccess,
		TransactionID:    pnref,
		ProviderResponse: string(rawParams),
	}
	if result != "0" {
		outcome.Status = domain.StatusFailed
		outcome.ErrorMessage = message
		if outcome.ErrorMessage == "" {
			outcome.ErrorMessage = "payment declined"
		}
	}

	if err := h.tokens.ApplyOutcome(c.Context(), paymentToken.Token, outcome); err != nil {
		slog.Error("form callback outcome failed", "token", paymentToken.Token, "error", err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(response.ErrorResponse{Error: "internal error"})
	}

	redirect := fmt.Sprintf("%s/payment-status?token=%s&status=%s&transactionId=%s",
		h.baseURL, url.QueryEscape(paymentToken.Token), outcome.Status, url.QueryEscape(pnref))
	return c.Redirect(redirect, fiber.StatusFound)
}
