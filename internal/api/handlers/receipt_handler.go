package handlers

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"receipt-tracker/domain"
	"receipt-tracker/internal/api/presenters"
	"receipt-tracker/pkg/receipt"
)

type (
	ReceiptHandler interface {
		CreateReceipt(c *fiber.Ctx) error
		GetReceipts(c *fiber.Ctx) error
		GetReceiptByID(c *fiber.Ctx) error
		UpdateReceipt(c *fiber.Ctx) error
		DeleteReceipt(c *fiber.Ctx) error
		SearchReceipts(c *fiber.Ctx) error
	}

	receiptHandler struct {
		receiptService receipt.ReceiptService
		validator      *validator.Validate
	}
)

func NewReceiptHandler(receiptService receipt.ReceiptService, validator *validator.Validate) ReceiptHandler {
	return &receiptHandler{
		receiptService: receiptService,
		validator:      validator,
	}
}

func parseReceiptID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return 0, domain.ErrParseID
	}
	return uint(id), nil
}

// errorStatus picks the HTTP status for a service failure: 404 for a missing
// receipt, 400 for rejected input, 500 for store failures.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrReceiptNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrNoReceiptItems),
		errors.Is(err, domain.ErrInvalidStoreName),
		errors.Is(err, domain.ErrInvalidItemName),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidReceiptDate),
		errors.Is(err, domain.ErrInvalidSearchBound):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func (h *receiptHandler) CreateReceipt(c *fiber.Ctx) error {
	req := new(domain.CreateReceiptRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedCreateReceipt, err)
	}

	res, err := h.receiptService.CreateReceipt(c.Context(), *req)
	if err != nil {
		return presenters.ErrorResponse(c, errorStatus(err), domain.MessageFailedCreateReceipt, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessCreateReceipt)
}

func (h *receiptHandler) GetReceipts(c *fiber.Ctx) error {
	res, err := h.receiptService.GetReceipts(c.Context())
	if err != nil {
		return presenters.ErrorResponse(c, errorStatus(err), domain.MessageFailedGetReceipts, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetReceipts)
}

func (h *receiptHandler) GetReceiptByID(c *fiber.Ctx) error {
	id, err := parseReceiptID(c)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetReceipt, err)
	}

	res, err := h.receiptService.GetReceiptByID(c.Context(), id)
	if err != nil {
		return presenters.ErrorResponse(c, errorStatus(err), domain.MessageFailedGetReceipt, err)
	}

	// An unknown id is an absent value, not an error.
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetReceipt)
}

func (h *receiptHandler) UpdateReceipt(c *fiber.Ctx) error {
	id, err := parseReceiptID(c)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateReceipt, err)
	}

	req := new(domain.UpdateReceiptRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateReceipt, err)
	}

	res, err := h.receiptService.UpdateReceipt(c.Context(), id, *req)
	if err != nil {
		return presenters.ErrorResponse(c, errorStatus(err), domain.MessageFailedUpdateReceipt, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessUpdateReceipt)
}

func (h *receiptHandler) DeleteReceipt(c *fiber.Ctx) error {
	id, err := parseReceiptID(c)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedDeleteReceipt, err)
	}

	if err := h.receiptService.DeleteReceipt(c.Context(), id); err != nil {
		return presenters.ErrorResponse(c, errorStatus(err), domain.MessageFailedDeleteReceipt, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{"success": true}, fiber.StatusOK, domain.MessageSuccessDeleteReceipt)
}

func (h *receiptHandler) SearchReceipts(c *fiber.Ctx) error {
	req := domain.SearchReceiptsRequest{
		Query:     c.Query("query"),
		StoreName: c.Query("store_name"),
		DateFrom:  c.Query("date_from"),
		DateTo:    c.Query("date_to"),
	}

	if raw := c.Query("min_amount"); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedSearchReceipts, domain.ErrInvalidSearchBound)
		}
		req.MinAmount = &value
	}
	if raw := c.Query("max_amount"); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedSearchReceipts, domain.ErrInvalidSearchBound)
		}
		req.MaxAmount = &value
	}

	res, err := h.receiptService.SearchReceipts(c.Context(), req)
	if err != nil {
		return presenters.ErrorResponse(c, errorStatus(err), domain.MessageFailedSearchReceipts, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessSearchReceipts)
}
