// Package vehiclerepo provides read-only access to the vehicle fleet
// records used for capacity planning.
package vehiclerepo

import (
	"routing/internal/core/domain/model/kernel"
	"routing/internal/core/domain/model/vehicle"

	"github.com/google/uuid"
)

// VehicleDTO represents the database structure of a fleet vehicle.
type VehicleDTO struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name       string
	CapacityKg float64
	CapacityM3 float64
	Profile    string `gorm:"type:varchar(32)"`
}

// TableName overrides GORM's default naming to use "vehicles".
func (VehicleDTO) TableName() string {
	return "vehicles"
}

// toDomain converts a database DTO to a vehicle read model.
func toDomain(dto VehicleDTO) (*vehicle.Vehicle, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	return vehicle.NewVehicle(id, dto.Name, dto.CapacityKg, dto.CapacityM3, dto.Profile)
}
