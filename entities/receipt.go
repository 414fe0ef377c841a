package entities

import (
	"time"
)

// Receipt amounts are stored as fixed-point decimal text (scale 2) to avoid
// binary floating-point drift; pkg/money converts at the storage boundary.
type Receipt struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	StoreName   string    `gorm:"not null" json:"store_name"`
	TotalAmount string    `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	ReceiptDate time.Time `gorm:"type:timestamp;not null" json:"receipt_date"`
	ImageURL    *string   `json:"image_url,omitempty"`

	Items []*ReceiptItem `gorm:"foreignKey:ReceiptID;constraint:OnDelete:CASCADE"`
	Timestamp
}

type ReceiptItem struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ReceiptID  uint      `gorm:"not null;index" json:"receipt_id"`
	Name       string    `gorm:"not null" json:"name"`
	Quantity   int       `gorm:"not null;check:quantity > 0" json:"quantity"`
	UnitPrice  string    `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	TotalPrice string    `gorm:"type:decimal(10,2);not null" json:"total_price"`
	CreatedAt  time.Time `gorm:"type:timestamp" json:"created_at"`

	Receipt *Receipt `gorm:"foreignKey:ReceiptID"`
}
