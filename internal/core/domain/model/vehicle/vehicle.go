// Package vehicle provides the read-mostly vehicle model. Vehicles are
// maintained by the fleet CRUD surface outside this core; routing only reads
// their capacity limits and routing profile.
package vehicle

import (
	"errors"
	"fmt"

	"routing/internal/core/domain/model/kernel"
	"routing/internal/core/domain/model/order"
	"routing/internal/pkg/errs"
)

// ErrVehicleIsNotConstructed is returned when a Vehicle instance was not
// created through the NewVehicle factory method.
var ErrVehicleIsNotConstructed = errors.New("Vehicle must be created via NewVehicle constructor")

// Routing profiles understood by the distance providers.
const (
	ProfileDrivingCar = "driving-car"
	ProfileDrivingHgv = "driving-hgv"
)

// Vehicle carries the capacity limits routing plans against: maximum load
// mass in kilograms and maximum load volume in cubic meters, plus the
// road-network profile the distance providers should route with.
type Vehicle struct {
	id         kernel.UUID
	name       string
	capacityKg float64
	capacityM3 float64
	profile    string

	isConstructed bool
}

// NewVehicle creates a vehicle read model. Both capacity dimensions must be
// positive; an empty profile defaults to driving-car.
func NewVehicle(id kernel.UUID, name string, capacityKg float64, capacityM3 float64, profile string) (*Vehicle, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if capacityKg <= 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause("capacityKg",
			fmt.Errorf("%f is not greater than 0", capacityKg))
	}
	if capacityM3 <= 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause("capacityM3",
			fmt.Errorf("%f is not greater than 0", capacityM3))
	}
	if profile == "" {
		profile = ProfileDrivingCar
	}

	return &Vehicle{
		id:            id,
		name:          name,
		capacityKg:    capacityKg,
		capacityM3:    capacityM3,
		profile:       profile,
		isConstructed: true,
	}, nil
}

// Validate ensures the Vehicle instance was constructed through NewVehicle.
func (v *Vehicle) Validate() error {
	if v == nil || !v.isConstructed {
		return ErrVehicleIsNotConstructed
	}
	return nil
}

// ID returns the vehicle's unique identifier.
func (v *Vehicle) ID() kernel.UUID {
	return v.id
}

// Name returns the vehicle's display name (registration plate, usually).
func (v *Vehicle) Name() string {
	return v.name
}

// CapacityKg returns the maximum load mass in kilograms.
func (v *Vehicle) CapacityKg() float64 {
	return v.capacityKg
}

// CapacityM3 returns the maximum load volume in cubic meters.
func (v *Vehicle) CapacityM3() float64 {
	return v.capacityM3
}

// Profile returns the routing profile for distance providers.
func (v *Vehicle) Profile() string {
	return v.profile
}

// CanCarry reports whether the given aggregate demand fits within both
// capacity dimensions.
func (v *Vehicle) CanCarry(d order.Demand) bool {
	return d.MassKg <= v.capacityKg && d.VolumeM3 <= v.capacityM3
}
