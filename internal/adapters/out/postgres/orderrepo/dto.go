// Package orderrepo provides read-only access to the order records synced
// from the commerce system. Routing never mutates orders; the repository
// exposes only lookups.
package orderrepo

import (
	"routing/internal/core/domain/model/kernel"
	"routing/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO represents the database structure of a synced order.
type OrderDTO struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Street     string
	City       string
	PostalCode string
	Country    string

	Lines []OrderLineDTO `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName overrides GORM's default naming to use "orders".
func (OrderDTO) TableName() string {
	return "orders"
}

// OrderLineDTO is one detail line of an order: quantity and the unit
// mass/volume used for capacity planning.
type OrderLineDTO struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	OrderID      uuid.UUID `gorm:"type:uuid;index"`
	Quantity     int
	UnitMassKg   float64
	UnitVolumeM3 float64
}

// TableName overrides GORM's default naming to use "order_lines".
func (OrderLineDTO) TableName() string {
	return "order_lines"
}

// toDomain converts a database DTO to an order read model.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	lines := make([]order.Line, 0, len(dto.Lines))
	for _, l := range dto.Lines {
		lines = append(lines, order.NewLine(l.Quantity, l.UnitMassKg, l.UnitVolumeM3))
	}

	return order.NewOrder(id, dto.Street, dto.City, dto.PostalCode, dto.Country, lines)
}
