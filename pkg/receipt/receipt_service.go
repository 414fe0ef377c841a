package receipt

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"receipt-tracker/domain"
	"receipt-tracker/entities"
	"receipt-tracker/pkg/money"
)

type (
	ReceiptService interface {
		CreateReceipt(ctx context.Context, req domain.CreateReceiptRequest) (domain.ReceiptResponse, error)
		GetReceipts(ctx context.Context) ([]domain.ReceiptResponse, error)
		GetReceiptByID(ctx context.Context, id uint) (*domain.ReceiptResponse, error)
		UpdateReceipt(ctx context.Context, id uint, req domain.UpdateReceiptRequest) (domain.ReceiptResponse, error)
		DeleteReceipt(ctx context.Context, id uint) error
		SearchReceipts(ctx context.Context, req domain.SearchReceiptsRequest) ([]domain.ReceiptResponse, error)
	}

	receiptService struct {
		receiptRepository ReceiptRepository
	}
)

func NewReceiptService(receiptRepository ReceiptRepository) ReceiptService {
	return &receiptService{receiptRepository: receiptRepository}
}

// parseReceiptDate accepts RFC 3339 timestamps and plain dates.
func parseReceiptDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

// buildItems validates and encodes an item list. Validation here is defense
// in depth; the transport layer has already checked request shape.
func buildItems(reqs []domain.ReceiptItemRequest) ([]*entities.ReceiptItem, error) {
	items := make([]*entities.ReceiptItem, 0, len(reqs))
	for _, req := range reqs {
		if strings.TrimSpace(req.Name) == "" {
			return nil, domain.ErrInvalidItemName
		}
		if req.Quantity <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
		unitPrice, err := money.Encode(req.UnitPrice)
		if err != nil {
			return nil, domain.ErrInvalidAmount
		}
		totalPrice, err := money.Encode(req.TotalPrice)
		if err != nil {
			return nil, domain.ErrInvalidAmount
		}
		items = append(items, &entities.ReceiptItem{
			Name:       req.Name,
			Quantity:   req.Quantity,
			UnitPrice:  unitPrice,
			TotalPrice: totalPrice,
		})
	}
	return items, nil
}

func (s *receiptService) CreateReceipt(ctx context.Context, req domain.CreateReceiptRequest) (domain.ReceiptResponse, error) {
	if len(req.Items) == 0 {
		return domain.ReceiptResponse{}, domain.ErrNoReceiptItems
	}
	if strings.TrimSpace(req.StoreName) == "" {
		return domain.ReceiptResponse{}, domain.ErrInvalidStoreName
	}

	receiptDate, err := parseReceiptDate(req.ReceiptDate)
	if err != nil {
		return domain.ReceiptResponse{}, domain.ErrInvalidReceiptDate
	}
	totalAmount, err := money.Encode(req.TotalAmount)
	if err != nil {
		return domain.ReceiptResponse{}, domain.ErrInvalidAmount
	}
	items, err := buildItems(req.Items)
	if err != nil {
		return domain.ReceiptResponse{}, err
	}

	receipt := &entities.Receipt{
		StoreName:   req.StoreName,
		TotalAmount: totalAmount,
		ReceiptDate: receiptDate,
		ImageURL:    req.ImageURL,
	}

	created, err := s.receiptRepository.CreateReceipt(ctx, receipt, items)
	if err != nil {
		return domain.ReceiptResponse{}, err
	}
	return toReceiptResponse(created)
}

func (s *receiptService) GetReceipts(ctx context.Context) ([]domain.ReceiptResponse, error) {
	receipts, err := s.receiptRepository.GetReceipts(ctx)
	if err != nil {
		return nil, err
	}
	return toReceiptResponses(receipts)
}

// GetReceiptByID returns nil, nil when the receipt does not exist: an absent
// value, not an error.
func (s *receiptService) GetReceiptByID(ctx context.Context, id uint) (*domain.ReceiptResponse, error) {
	receipt, err := s.receiptRepository.GetReceiptByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, nil
	}
	response, err := toReceiptResponse(receipt)
	if err != nil {
		return nil, err
	}
	return &response, nil
}

func (s *receiptService) UpdateReceipt(ctx context.Context, id uint, req domain.UpdateReceiptRequest) (domain.ReceiptResponse, error) {
	fields := map[string]interface{}{}

	if req.StoreName != nil {
		if strings.TrimSpace(*req.StoreName) == "" {
			return domain.ReceiptResponse{}, domain.ErrInvalidStoreName
		}
		fields["store_name"] = *req.StoreName
	}
	if req.TotalAmount != nil {
		totalAmount, err := money.Encode(*req.TotalAmount)
		if err != nil {
			return domain.ReceiptResponse{}, domain.ErrInvalidAmount
		}
		fields["total_amount"] = totalAmount
	}
	if req.ReceiptDate != nil {
		receiptDate, err := parseReceiptDate(*req.ReceiptDate)
		if err != nil {
			return domain.ReceiptResponse{}, domain.ErrInvalidReceiptDate
		}
		fields["receipt_date"] = receiptDate
	}
	if req.ImageURL.Set {
		if req.ImageURL.Valid {
			fields["image_url"] = req.ImageURL.Value
		} else {
			fields["image_url"] = nil
		}
	}

	var items []*entities.ReceiptItem
	replaceItems := req.Items != nil
	if replaceItems {
		var err error
		items, err = buildItems(*req.Items)
		if err != nil {
			return domain.ReceiptResponse{}, err
		}
	}

	updated, err := s.receiptRepository.UpdateReceipt(ctx, id, fields, items, replaceItems)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ReceiptResponse{}, domain.ErrReceiptNotFound
		}
		return domain.ReceiptResponse{}, err
	}
	return toReceiptResponse(updated)
}

func (s *receiptService) DeleteReceipt(ctx context.Context, id uint) error {
	if err := s.receiptRepository.DeleteReceipt(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrReceiptNotFound
		}
		return err
	}
	return nil
}

func (s *receiptService) SearchReceipts(ctx context.Context, req domain.SearchReceiptsRequest) ([]domain.ReceiptResponse, error) {
	filter := SearchFilter{
		Query:     req.Query,
		StoreName: req.StoreName,
	}

	if req.DateFrom != "" {
		from, err := parseReceiptDate(req.DateFrom)
		if err != nil {
			return nil, domain.ErrInvalidReceiptDate
		}
		filter.DateFrom = &from
	}
	if req.DateTo != "" {
		to, err := parseReceiptDate(req.DateTo)
		if err != nil {
			return nil, domain.ErrInvalidReceiptDate
		}
		filter.DateTo = &to
	}
	if req.MinAmount != nil {
		bound, err := money.EncodeBound(*req.MinAmount)
		if err != nil {
			return nil, domain.ErrInvalidSearchBound
		}
		filter.MinAmount = bound
	}
	if req.MaxAmount != nil {
		bound, err := money.EncodeBound(*req.MaxAmount)
		if err != nil {
			return nil, domain.ErrInvalidSearchBound
		}
		filter.MaxAmount = bound
	}

	receipts, err := s.receiptRepository.SearchReceipts(ctx, filter)
	if err != nil {
		return nil, err
	}
	return toReceiptResponses(receipts)
}

// toReceiptResponse decodes stored decimals exactly once on the way out. A
// stored amount that no longer parses is a store-level failure.
func toReceiptResponse(receipt *entities.Receipt) (domain.ReceiptResponse, error) {
	totalAmount, err := money.Decode(receipt.TotalAmount)
	if err != nil {
		return domain.ReceiptResponse{}, err
	}

	items := make([]domain.ReceiptItemResponse, 0, len(receipt.Items))
	for _, item := range receipt.Items {
		unitPrice, err := money.Decode(item.UnitPrice)
		if err != nil {
			return domain.ReceiptResponse{}, err
		}
		totalPrice, err := money.Decode(item.TotalPrice)
		if err != nil {
			return domain.ReceiptResponse{}, err
		}
		items = append(items, domain.ReceiptItemResponse{
			ID:         item.ID,
			ReceiptID:  item.ReceiptID,
			Name:       item.Name,
			Quantity:   item.Quantity,
			UnitPrice:  unitPrice,
			TotalPrice: totalPrice,
			CreatedAt:  item.CreatedAt,
		})
	}

	return domain.ReceiptResponse{
		ID:          receipt.ID,
		StoreName:   receipt.StoreName,
		TotalAmount: totalAmount,
		ReceiptDate: receipt.ReceiptDate,
		ImageURL:    receipt.ImageURL,
		CreatedAt:   receipt.CreatedAt,
		UpdatedAt:   receipt.UpdatedAt,
		Items:       items,
	}, nil
}

func toReceiptResponses(receipts []*entities.Receipt) ([]domain.ReceiptResponse, error) {
	responses := make([]domain.ReceiptResponse, 0, len(receipts))
	for _, receipt := range receipts {
		response, err := toReceiptResponse(receipt)
		if err != nil {
			return nil, err
		}
		responses = append(responses, response)
	}
	return responses, nil
}
