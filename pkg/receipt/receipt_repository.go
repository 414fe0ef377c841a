package receipt

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"receipt-tracker/entities"
)

type (
	ReceiptRepository interface {
		CreateReceipt(ctx context.Context, receipt *entities.Receipt, items []*entities.ReceiptItem) (*entities.Receipt, error)
		GetReceiptByID(ctx context.Context, id uint) (*entities.Receipt, error)
		GetReceipts(ctx context.Context) ([]*entities.Receipt, error)
		UpdateReceipt(ctx context.Context, id uint, fields map[string]interface{}, items []*entities.ReceiptItem, replaceItems bool) (*entities.Receipt, error)
		DeleteReceipt(ctx context.Context, id uint) error
		SearchReceipts(ctx context.Context, filter SearchFilter) ([]*entities.Receipt, error)
	}

	receiptRepository struct {
		db *gorm.DB
	}
)

func NewReceiptRepository(db *gorm.DB) ReceiptRepository {
	return &receiptRepository{db: db}
}

// itemOrder keeps item sequencing stable: row ids follow insertion order.
func itemOrder(db *gorm.DB) *gorm.DB {
	return db.Order("receipt_items.id ASC")
}

// CreateReceipt inserts the header and its items in one transaction. A failed
// item insert rolls back the header so no partial aggregate is ever visible.
func (r *receiptRepository) CreateReceipt(ctx context.Context, receipt *entities.Receipt, items []*entities.ReceiptItem) (*entities.Receipt, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(receipt).Error; err != nil {
			return err
		}
		for _, item := range items {
			item.ReceiptID = receipt.ID
		}
		if len(items) > 0 {
			if err := tx.Create(items).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetReceiptByID(ctx, receipt.ID)
}

// GetReceiptByID returns nil, nil when no receipt matches. A receipt without
// items comes back with an empty (non-nil at the service boundary) item set.
func (r *receiptRepository) GetReceiptByID(ctx context.Context, id uint) (*entities.Receipt, error) {
	var receipt entities.Receipt
	if err := r.db.WithContext(ctx).
		Preload("Items", itemOrder).
		Where("id = ?", id).
		First(&receipt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &receipt, nil
}

// GetReceipts loads every receipt newest-first. Items are fetched in a single
// batched preload, never one query per receipt.
func (r *receiptRepository) GetReceipts(ctx context.Context) ([]*entities.Receipt, error) {
	var receipts []*entities.Receipt
	if err := r.db.WithContext(ctx).
		Preload("Items", itemOrder).
		Order("receipt_date DESC, id ASC").
		Find(&receipts).Error; err != nil {
		return nil, err
	}
	return receipts, nil
}

// UpdateReceipt applies the header field map and, when replaceItems is set,
// swaps the entire item set, all inside one transaction. The UPDATE's row
// count doubles as the existence check, so a concurrent delete of the same id
// surfaces as gorm.ErrRecordNotFound rather than a lost write. updated_at is
// refreshed on every successful call, whether or not any field changed.
func (r *receiptRepository) UpdateReceipt(ctx context.Context, id uint, fields map[string]interface{}, items []*entities.ReceiptItem, replaceItems bool) (*entities.Receipt, error) {
	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields["updated_at"] = time.Now()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entities.Receipt{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if replaceItems {
			if err := tx.Where("receipt_id = ?", id).Delete(&entities.ReceiptItem{}).Error; err != nil {
				return err
			}
			if len(items) > 0 {
				for _, item := range items {
					item.ReceiptID = id
				}
				if err := tx.Create(items).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := r.GetReceiptByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return updated, nil
}

// DeleteReceipt removes the header row; the store's cascade constraint takes
// the items with it. Zero affected rows means the receipt never existed or a
// concurrent delete won.
func (r *receiptRepository) DeleteReceipt(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&entities.Receipt{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SearchReceipts runs the composed predicate as a single query. The item join
// is only added when the free-text filter needs item names; DISTINCT keeps a
// header with several matching items from appearing twice, and the full item
// set is attached by one batched preload.
func (r *receiptRepository) SearchReceipts(ctx context.Context, filter SearchFilter) ([]*entities.Receipt, error) {
	pred, joinItems := buildSearchPredicate(filter)

	query := r.db.WithContext(ctx).Model(&entities.Receipt{}).Distinct("receipts.*")
	if joinItems {
		query = query.Joins("LEFT JOIN receipt_items ON receipt_items.receipt_id = receipts.id")
	}
	if !pred.empty() {
		query = query.Where(pred.sql(), pred.args...)
	}

	var receipts []*entities.Receipt
	if err := query.
		Preload("Items", itemOrder).
		Order("receipts.receipt_date DESC, receipts.id ASC").
		Find(&receipts).Error; err != nil {
		return nil, err
	}
	return receipts, nil
}
