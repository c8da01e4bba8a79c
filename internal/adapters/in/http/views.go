package http

import (
	"time"

	"routing/internal/core/application/usecases/queries"
)

// RouteView is the wire shape of GET /api/v1/routes/:id.
type RouteView struct {
	ID          string       `json:"id"`
	Date        string       `json:"date"`
	Status      string       `json:"status"`
	Algorithm   string       `json:"algorithm"`
	VehicleID   *string      `json:"vehicle_id,omitempty"`
	DriverID    *string      `json:"driver_id,omitempty"`
	DistanceKm  float64      `json:"distance_km"`
	DurationMin float64      `json:"duration_min"`
	Stops       []StopView   `json:"stops"`
	Polyline    [][2]float64 `json:"polyline,omitempty"`
}

// StopView is one stop within RouteView.
type StopView struct {
	ID           string    `json:"id"`
	OrderID      string    `json:"order_id"`
	Sequence     int       `json:"sequence"`
	ETA          time.Time `json:"eta"`
	Status       string    `json:"status"`
	LegDistanceM int       `json:"leg_distance_m"`
	LegDurationS int       `json:"leg_duration_s"`
}

// DriverStopsView is the wire shape of GET /api/v1/routes/:id/stops.
type DriverStopsView struct {
	RouteID     string           `json:"route_id"`
	RouteStatus string           `json:"route_status"`
	Stops       []DriverStopView `json:"stops"`
}

// DriverStopView is one stop as shown to the driver.
type DriverStopView struct {
	StopID   string    `json:"stop_id"`
	OrderID  string    `json:"order_id"`
	Sequence int       `json:"sequence"`
	Address  string    `json:"address"`
	ETA      time.Time `json:"eta"`
	Status   string    `json:"status"`
}

func toRouteView(result queries.GetRouteQueryResponse) RouteView {
	view := RouteView{
		ID:          result.ID.String(),
		Date:        result.Date.Format("2006-01-02"),
		Status:      result.Status,
		Algorithm:   result.Algorithm,
		DistanceKm:  result.DistanceKm,
		DurationMin: result.DurationMin,
		Stops:       make([]StopView, 0, len(result.Stops)),
	}
	if result.VehicleID != nil {
		s := result.VehicleID.String()
		view.VehicleID = &s
	}
	if result.DriverID != nil {
		s := result.DriverID.String()
		view.DriverID = &s
	}
	for _, stop := range result.Stops {
		view.Stops = append(view.Stops, StopView{
			ID:           stop.ID.String(),
			OrderID:      stop.OrderID.String(),
			Sequence:     stop.Sequence,
			ETA:          stop.ETA,
			Status:       stop.Status,
			LegDistanceM: stop.LegDistanceM,
			LegDurationS: stop.LegDurationS,
		})
	}
	for _, point := range result.Polyline {
		view.Polyline = append(view.Polyline, [2]float64{point.Lat, point.Lng})
	}
	return view
}

func toDriverStopsView(result queries.GetDriverStopsQueryResponse) DriverStopsView {
	view := DriverStopsView{
		RouteID:     result.RouteID.String(),
		RouteStatus: result.RouteStatus,
		Stops:       make([]DriverStopView, 0, len(result.Stops)),
	}
	for _, stop := range result.Stops {
		view.Stops = append(view.Stops, DriverStopView{
			StopID:   stop.StopID.String(),
			OrderID:  stop.OrderID.String(),
			Sequence: stop.Sequence,
			Address:  stop.Address,
			ETA:      stop.ETA,
			Status:   stop.Status,
		})
	}
	return view
}
