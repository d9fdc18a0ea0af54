package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Inventory is a lot of one product held by one store.
type Inventory struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	ProductID      uuid.UUID  `gorm:"column:product_id;type:uuid;not null"`
	StoreID        uuid.UUID  `gorm:"column:store_id;type:uuid;not null"`
	Quantity       int        `gorm:"column:quantity;not null"`
	Location       *string    `gorm:"column:location"`
	ReceivedDate   time.Time  `gorm:"column:received_date;not null"`
	ExpirationDate *time.Time `gorm:"column:expiration_date"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Inventory) TableName() string { return "inventories" }

func (i *Inventory) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.ReceivedDate.IsZero() {
		i.ReceivedDate = time.Now()
	}
	i.ReceivedDate = i.ReceivedDate.UTC()
	if i.ExpirationDate != nil {
		exp := i.ExpirationDate.UTC()
		i.ExpirationDate = &exp
	}
	return nil
}
