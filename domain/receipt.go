package domain

import (
	"errors"
	"time"
)

var (
	MessageSuccessCreateReceipt  = "receipt created successfully"
	MessageSuccessGetReceipts    = "receipts retrieved successfully"
	MessageSuccessGetReceipt     = "receipt retrieved successfully"
	MessageSuccessUpdateReceipt  = "receipt updated successfully"
	MessageSuccessDeleteReceipt  = "receipt deleted successfully"
	MessageSuccessSearchReceipts = "receipts search completed successfully"

	MessageFailedCreateReceipt  = "failed to create receipt"
	MessageFailedGetReceipts    = "failed to retrieve receipts"
	MessageFailedGetReceipt     = "failed to retrieve receipt"
	MessageFailedUpdateReceipt  = "failed to update receipt"
	MessageFailedDeleteReceipt  = "failed to delete receipt"
	MessageFailedSearchReceipts = "failed to search receipts"

	ErrReceiptNotFound    = errors.New("receipt not found")
	ErrNoReceiptItems     = errors.New("at least one item is required")
	ErrInvalidStoreName   = errors.New("store name must not be empty")
	ErrInvalidItemName    = errors.New("item name must not be empty")
	ErrInvalidAmount      = errors.New("amount must be a positive number")
	ErrInvalidQuantity    = errors.New("quantity must be positive")
	ErrInvalidReceiptDate = errors.New("invalid receipt date")
	ErrInvalidSearchBound = errors.New("invalid search bound")
)

type (
	ReceiptItemRequest struct {
		Name       string  `json:"name" validate:"required"`
		Quantity   int     `json:"quantity" validate:"required,min=1"`
		UnitPrice  float64 `json:"unit_price" validate:"required,gt=0"`
		TotalPrice float64 `json:"total_price" validate:"required,gt=0"`
	}

	CreateReceiptRequest struct {
		StoreName   string               `json:"store_name" validate:"required"`
		TotalAmount float64              `json:"total_amount" validate:"required,gt=0"`
		ReceiptDate string               `json:"receipt_date" validate:"required"`
		ImageURL    *string              `json:"image_url" validate:"omitempty"`
		Items       []ReceiptItemRequest `json:"items" validate:"required,min=1,dive"`
	}

	// UpdateReceiptRequest carries each header field as a pointer: nil means
	// leave unchanged. ImageURL additionally distinguishes an explicit null
	// (clear the column) from absence. A non-nil Items slice, even an empty
	// one, wholly replaces the receipt's item set.
	UpdateReceiptRequest struct {
		StoreName   *string               `json:"store_name" validate:"omitempty,min=1"`
		TotalAmount *float64              `json:"total_amount" validate:"omitempty,gt=0"`
		ReceiptDate *string               `json:"receipt_date" validate:"omitempty"`
		ImageURL    NullableString        `json:"image_url"`
		Items       *[]ReceiptItemRequest `json:"items" validate:"omitempty,dive"`
	}

	SearchReceiptsRequest struct {
		Query     string   `json:"query"`
		StoreName string   `json:"store_name"`
		DateFrom  string   `json:"date_from"`
		DateTo    string   `json:"date_to"`
		MinAmount *float64 `json:"min_amount"`
		MaxAmount *float64 `json:"max_amount"`
	}

	ReceiptItemResponse struct {
		ID         uint      `json:"id"`
		ReceiptID  uint      `json:"receipt_id"`
		Name       string    `json:"name"`
		Quantity   int       `json:"quantity"`
		UnitPrice  float64   `json:"unit_price"`
		TotalPrice float64   `json:"total_price"`
		CreatedAt  time.Time `json:"created_at"`
	}

	ReceiptResponse struct {
		ID          uint                  `json:"id"`
		StoreName   string                `json:"store_name"`
		TotalAmount float64               `json:"total_amount"`
		ReceiptDate time.Time             `json:"receipt_date"`
		ImageURL    *string               `json:"image_url"`
		CreatedAt   time.Time             `json:"created_at"`
		UpdatedAt   time.Time             `json:"updated_at"`
		Items       []ReceiptItemResponse `json:"items"`
	}
)
