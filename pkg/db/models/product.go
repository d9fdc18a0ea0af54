package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Product is a catalog listing. Code is the business barcode.
type Product struct {
	ID            uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Code          string         `gorm:"column:code;not null;uniqueIndex"`
	Name          string         `gorm:"column:name;not null"`
	Price         int64          `gorm:"column:price;not null"`
	PriceOriginal *int64         `gorm:"column:price_original"`
	CategoryID    *uuid.UUID     `gorm:"column:category_id;type:uuid"`
	Category      *Category      `gorm:"foreignKey:CategoryID"`
	Quantity      *int           `gorm:"column:quantity"`
	Tags          pq.StringArray `gorm:"column:tags;type:text;not null"`
	ImageURL      *string        `gorm:"column:image_url"`
	ImageTag      *string        `gorm:"column:image_tag"`
	EventType     *string        `gorm:"column:event_type"`
	Location      *string        `gorm:"column:location"`
	Inventories   []Inventory    `gorm:"foreignKey:ProductID"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string { return "products" }

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Tags == nil {
		p.Tags = pq.StringArray{}
	}
	return nil
}
