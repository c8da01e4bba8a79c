// Package routerepo provides data transfer objects and mapping functions
// for route aggregate persistence. A route row owns its stop rows and
// optional polyline point rows; the aggregate is always loaded and stored
// as a whole.
package routerepo

import (
	"time"

	"routing/internal/core/domain/model/kernel"
	"routing/internal/core/domain/model/route"

	"github.com/google/uuid"
)

// RouteDTO represents the database structure for persisting route
// aggregates.
type RouteDTO struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Date      time.Time  `gorm:"index"`
	Status    int        `gorm:"index"`
	Algorithm string     `gorm:"type:varchar(32)"`
	VehicleID *uuid.UUID `gorm:"type:uuid;index"`
	DriverID  *uuid.UUID `gorm:"type:uuid;index"`

	Stops    []StopDTO          `gorm:"foreignKey:RouteID;constraint:OnDelete:CASCADE"`
	Polyline []PolylinePointDTO `gorm:"foreignKey:RouteID;constraint:OnDelete:CASCADE"`
}

// TableName overrides GORM's default naming to use "routes".
func (RouteDTO) TableName() string {
	return "routes"
}

// StopDTO represents one visit row within a route.
type StopDTO struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	RouteID      uuid.UUID `gorm:"type:uuid;index"`
	OrderID      uuid.UUID `gorm:"type:uuid;index"`
	Sequence     int
	ETA          time.Time
	Status       int
	LegDistanceM int
	LegDurationS int
}

// TableName overrides GORM's default naming to use "stops".
func (StopDTO) TableName() string {
	return "stops"
}

// PolylinePointDTO is one vertex of a route's display geometry, ordered
// by Position within the route.
type PolylinePointDTO struct {
	ID       uint      `gorm:"primaryKey;autoIncrement"`
	RouteID  uuid.UUID `gorm:"type:uuid;index"`
	Position int
	Lat      float64
	Lng      float64
}

// TableName overrides GORM's default naming to use "route_polyline_points".
func (PolylinePointDTO) TableName() string {
	return "route_polyline_points"
}

// fromDomain converts a route aggregate to its database representation,
// stops and polyline included.
func fromDomain(aggregate *route.Route) RouteDTO {
	var vehicleID, driverID *uuid.UUID
	if id := aggregate.VehicleID(); id != nil {
		raw := id.Bytes()
		vehicleID = &raw
	}
	if id := aggregate.DriverID(); id != nil {
		raw := id.Bytes()
		driverID = &raw
	}

	stops := make([]StopDTO, 0, len(aggregate.Stops()))
	for _, s := range aggregate.Stops() {
		stops = append(stops, StopDTO{
			ID:           s.ID().Bytes(),
			RouteID:      aggregate.ID().Bytes(),
			OrderID:      s.OrderID().Bytes(),
			Sequence:     s.Sequence(),
			ETA:          s.ETA(),
			Status:       int(s.Status()),
			LegDistanceM: s.LegDistanceM(),
			LegDurationS: s.LegDurationS(),
		})
	}

	var polyline []PolylinePointDTO
	if p, ok := aggregate.Polyline(); ok {
		for i, pt := range p.Points() {
			polyline = append(polyline, PolylinePointDTO{
				RouteID:  aggregate.ID().Bytes(),
				Position: i,
				Lat:      pt.Lat(),
				Lng:      pt.Lng(),
			})
		}
	}

	return RouteDTO{
		ID:        aggregate.ID().Bytes(),
		Date:      aggregate.Date(),
		Status:    int(aggregate.Status()),
		Algorithm: aggregate.Algorithm().String(),
		VehicleID: vehicleID,
		DriverID:  driverID,
		Stops:     stops,
		Polyline:  polyline,
	}
}

// toDomain converts a database DTO back to a route aggregate using the
// restore constructors, reattaching the polyline when present.
func toDomain(dto RouteDTO) (*route.Route, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	var vehicleID, driverID *kernel.UUID
	if dto.VehicleID != nil {
		vID, vErr := kernel.UUIDFromBytes((*dto.VehicleID)[:])
		if vErr != nil {
			return nil, vErr
		}
		vehicleID = &vID
	}
	if dto.DriverID != nil {
		dID, dErr := kernel.UUIDFromBytes((*dto.DriverID)[:])
		if dErr != nil {
			return nil, dErr
		}
		driverID = &dID
	}

	stops := make([]*route.Stop, 0, len(dto.Stops))
	for _, s := range dto.Stops {
		stopID, sErr := kernel.UUIDFromBytes(s.ID[:])
		if sErr != nil {
			return nil, sErr
		}
		orderID, oErr := kernel.UUIDFromBytes(s.OrderID[:])
		if oErr != nil {
			return nil, oErr
		}

		stop, sErr := route.RestoreStop(stopID, orderID, s.Sequence, s.ETA,
			route.StopStatus(s.Status), s.LegDistanceM, s.LegDurationS)
		if sErr != nil {
			return nil, sErr
		}
		stops = append(stops, stop)
	}

	aggregate, err := route.RestoreRoute(id, dto.Date, route.Status(dto.Status),
		route.Algorithm(dto.Algorithm), vehicleID, driverID, stops)
	if err != nil {
		return nil, err
	}

	if len(dto.Polyline) >= 2 {
		points := make([]kernel.GeoPoint, 0, len(dto.Polyline))
		for _, raw := range dto.Polyline {
			pt, pErr := kernel.NewGeoPoint(raw.Lat, raw.Lng)
			if pErr != nil {
				return nil, pErr
			}
			points = append(points, pt)
		}

		polyline, pErr := route.NewPolyline(points)
		if pErr != nil {
			return nil, pErr
		}
		if err = aggregate.AttachPolyline(polyline); err != nil {
			return nil, err
		}
	}

	return aggregate, nil
}
