package queries

import (
	"context"

	"routing/internal/core/domain/model/kernel"
	"routing/internal/core/domain/model/route"
	"routing/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetRouteQueryHandler loads the route read model straight from the
// database, bypassing the aggregate. Stops come back in visit order and
// polyline vertices in path order.
type GetRouteQueryHandler struct {
	db *gorm.DB
}

// NewGetRouteQueryHandler creates a handler for route detail queries.
func NewGetRouteQueryHandler(db *gorm.DB) GetRouteQueryHandler {
	return GetRouteQueryHandler{db: db}
}

// Handle executes the route detail query. Returns ObjectNotFoundError when
// no route exists under the given id.
func (h GetRouteQueryHandler) Handle(ctx context.Context, query GetRouteQuery) (GetRouteQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetRouteQueryResponse{}, err
	}

	response, err := h.loadHeader(ctx, query.RouteID())
	if err != nil {
		return GetRouteQueryResponse{}, err
	}

	response.Stops, err = h.loadStops(ctx, query.RouteID())
	if err != nil {
		return GetRouteQueryResponse{}, err
	}
	for _, s := range response.Stops {
		response.DistanceKm += float64(s.LegDistanceM) / 1000.0
		response.DurationMin += float64(s.LegDurationS) / 60.0
	}

	response.Polyline, err = h.loadPolyline(ctx, query.RouteID())
	if err != nil {
		return GetRouteQueryResponse{}, err
	}

	return response, nil
}

func (h GetRouteQueryHandler) loadHeader(ctx context.Context, routeID kernel.UUID) (GetRouteQueryResponse, error) {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			date,
			status,
			algorithm,
			vehicle_id,
			driver_id
		FROM routes
		WHERE id = ?
	`, routeID.Bytes()).Rows()
	if err != nil {
		return GetRouteQueryResponse{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return GetRouteQueryResponse{}, err
		}
		return GetRouteQueryResponse{}, errs.NewObjectNotFoundError("route", routeID.String())
	}

	var response GetRouteQueryResponse
	var id uuid.UUID
	var status int
	var vehicleID, driverID uuid.NullUUID

	if err = rows.Scan(
		&id,
		&response.Date,
		&status,
		&response.Algorithm,
		&vehicleID,
		&driverID,
	); err != nil {
		return GetRouteQueryResponse{}, err
	}

	response.ID, err = kernel.UUIDFromBytes(id[:])
	if err != nil {
		return GetRouteQueryResponse{}, err
	}
	response.Status = route.Status(status).String()
	if response.VehicleID, err = optionalUUID(vehicleID); err != nil {
		return GetRouteQueryResponse{}, err
	}
	if response.DriverID, err = optionalUUID(driverID); err != nil {
		return GetRouteQueryResponse{}, err
	}

	return response, rows.Err()
}

func (h GetRouteQueryHandler) loadStops(ctx context.Context, routeID kernel.UUID) ([]RouteStopResponse, error) {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			order_id,
			sequence,
			eta,
			status,
			leg_distance_m,
			leg_duration_s
		FROM stops
		WHERE route_id = ?
		ORDER BY sequence
	`, routeID.Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stops := make([]RouteStopResponse, 0)
	for rows.Next() {
		var stop RouteStopResponse
		var id, orderID uuid.UUID
		var status int

		if err = rows.Scan(
			&id,
			&orderID,
			&stop.Sequence,
			&stop.ETA,
			&status,
			&stop.LegDistanceM,
			&stop.LegDurationS,
		); err != nil {
			return nil, err
		}

		if stop.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if stop.OrderID, err = kernel.UUIDFromBytes(orderID[:]); err != nil {
			return nil, err
		}
		stop.Status = route.StopStatus(status).String()
		stops = append(stops, stop)
	}

	return stops, rows.Err()
}

func (h GetRouteQueryHandler) loadPolyline(
	ctx context.Context,
	routeID kernel.UUID,
) ([]PolylinePointResponse, error) {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			lat,
			lng
		FROM route_polyline_points
		WHERE route_id = ?
		ORDER BY position
	`, routeID.Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	points := make([]PolylinePointResponse, 0)
	for rows.Next() {
		var point PolylinePointResponse
		if err = rows.Scan(&point.Lat, &point.Lng); err != nil {
			return nil, err
		}
		points = append(points, point)
	}

	return points, rows.Err()
}

func optionalUUID(value uuid.NullUUID) (*kernel.UUID, error) {
	if !value.Valid {
		return nil, nil //nolint:nilnil //absent optional reference
	}
	id, err := kernel.UUIDFromBytes(value.UUID[:])
	if err != nil {
		return nil, err
	}
	return &id, nil
}
