package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base carries the connection shared by read repositories.
type Base struct {
	db *gorm.DB
}

func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the connection bound to ctx. A nil ctx returns the raw connection.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// ScanRows runs an aggregate query into generic rows. Values keep the driver's
// representation; callers sanitize them before doing arithmetic. The result is never nil.
func (b Base) ScanRows(qb *gorm.DB) ([]map[string]any, error) {
	rows := []map[string]any{}
	if err := qb.Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		for column, value := range row {
			row[column] = unboxed(value)
		}
	}
	return rows, nil
}

// unboxed strips the *interface{} holders some drivers (sqlite) leave around
// expression columns that carry no declared type.
func unboxed(value any) any {
	for {
		holder, ok := value.(*any)
		if !ok {
			return value
		}
		if holder == nil {
			return nil
		}
		value = *holder
	}
}

// CountRows counts what sub would return. Grouped queries are counted as a subquery so
// each group counts once.
func (b Base) CountRows(ctx context.Context, sub *gorm.DB) (int64, error) {
	var total int64
	if err := b.DB(ctx).Table("(?) AS counted", sub).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
