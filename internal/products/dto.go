package product

import (
	"time"

	"github.com/google/uuid"

	"github.com/hivehoney/aisla-sub000/pkg/db/models"
	"github.com/hivehoney/aisla-sub000/pkg/pagination"
)

// CategoryDTO is the embedded category summary.
type CategoryDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// InventoryDTO is one store-scoped inventory lot.
type InventoryDTO struct {
	ID             uuid.UUID  `json:"id"`
	StoreID        uuid.UUID  `json:"storeId"`
	Quantity       int        `json:"quantity"`
	Location       *string    `json:"location"`
	ReceivedDate   time.Time  `json:"receivedDate"`
	ExpirationDate *time.Time `json:"expirationDate"`
}

// ResultRow is a product on the paged path with derived inventory and discount fields.
type ResultRow struct {
	ID              uuid.UUID      `json:"id"`
	Code            string         `json:"code"`
	Name            string         `json:"name"`
	Price           int64          `json:"price"`
	PriceOriginal   *int64         `json:"priceOriginal"`
	ImageURL        *string        `json:"imageUrl"`
	EventType       *string        `json:"eventType"`
	CategoryID      *uuid.UUID     `json:"categoryId"`
	ImageTag        *string        `json:"imageTag"`
	Tags            []string       `json:"tags"`
	Quantity        *int           `json:"quantity"`
	Location        *string        `json:"location"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
	Category        *CategoryDTO   `json:"category"`
	Inventories     []InventoryDTO `json:"inventories"`
	TotalQuantity   int64          `json:"totalQuantity"`
	HasExpiringSoon bool           `json:"hasExpiringSoon"`
	DiscountRate    int64          `json:"discountRate"`
}

// SimpleRow is the projection returned on the interactive path.
type SimpleRow struct {
	ID                uuid.UUID    `json:"id"`
	Code              string       `json:"code"`
	Name              string       `json:"name"`
	Price             int64        `json:"price"`
	PriceOriginal     *int64       `json:"priceOriginal"`
	ImageURL          *string      `json:"imageUrl"`
	ImageTag          *string      `json:"imageTag"`
	EventType         *string      `json:"eventType"`
	CategoryID        *uuid.UUID   `json:"categoryId"`
	Tags              []string     `json:"tags"`
	Category          *CategoryDTO `json:"category"`
	InventoryQuantity int64        `json:"inventoryQuantity"`
}

// PagedEnvelope is the paged path response body.
type PagedEnvelope struct {
	Products   []ResultRow     `json:"products"`
	Pagination pagination.Meta `json:"pagination"`
}

// SimpleEnvelope is the interactive path response body. It carries no pagination.
type SimpleEnvelope struct {
	Products []SimpleRow `json:"products"`
}

// Path identifies which execution path served a search.
type Path string

const (
	PathSimple Path = "simple"
	PathPaged  Path = "paged"
)

// SearchResult carries exactly one of Simple or Paged, matching Path.
type SearchResult struct {
	Path     Path
	Strategy string
	Simple   *SimpleEnvelope
	Paged    *PagedEnvelope
}

// Payload returns the body to serialize.
func (r *SearchResult) Payload() any {
	if r.Path == PathSimple {
		return r.Simple
	}
	return r.Paged
}

func categoryDTO(c *models.Category) *CategoryDTO {
	if c == nil || c.ID == uuid.Nil {
		return nil
	}
	return &CategoryDTO{ID: c.ID, Name: c.Name}
}

func inventoryDTOs(rows []models.Inventory) []InventoryDTO {
	out := make([]InventoryDTO, 0, len(rows))
	for _, inv := range rows {
		out = append(out, InventoryDTO{
			ID:             inv.ID,
			StoreID:        inv.StoreID,
			Quantity:       inv.Quantity,
			Location:       inv.Location,
			ReceivedDate:   inv.ReceivedDate,
			ExpirationDate: inv.ExpirationDate,
		})
	}
	return out
}

func tagsOf(p models.Product) []string {
	if len(p.Tags) == 0 {
		return []string{}
	}
	return append([]string(nil), p.Tags...)
}

func newResultRow(p models.Product) ResultRow {
	return ResultRow{
		ID:            p.ID,
		Code:          p.Code,
		Name:          p.Name,
		Price:         p.Price,
		PriceOriginal: p.PriceOriginal,
		ImageURL:      p.ImageURL,
		EventType:     p.EventType,
		CategoryID:    p.CategoryID,
		ImageTag:      p.ImageTag,
		Tags:          tagsOf(p),
		Quantity:      p.Quantity,
		Location:      p.Location,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		Category:      categoryDTO(p.Category),
		Inventories:   []InventoryDTO{},
	}
}

func newSimpleRow(p models.Product, inventoryQuantity int64) SimpleRow {
	return SimpleRow{
		ID:                p.ID,
		Code:              p.Code,
		Name:              p.Name,
		Price:             p.Price,
		PriceOriginal:     p.PriceOriginal,
		ImageURL:          p.ImageURL,
		ImageTag:          p.ImageTag,
		EventType:         p.EventType,
		CategoryID:        p.CategoryID,
		Tags:              tagsOf(p),
		Category:          categoryDTO(p.Category),
		InventoryQuantity: inventoryQuantity,
	}
}
