// Package http exposes the routing core over a REST API. It translates
// transport-level requests into commands and queries and maps domain
// errors onto HTTP status codes.
package http

import (
	"errors"
	"net/http"
	"time"

	"routing/internal/core/application/usecases/commands"
	"routing/internal/core/application/usecases/queries"
	"routing/internal/core/domain/model/kernel"
	"routing/internal/core/domain/model/route"
	"routing/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	createRouteHandler      commands.CreateRouteCommandHandler
	reorderStopsHandler     commands.ReorderStopsCommandHandler
	changeStopStatusHandler commands.ChangeStopStatusCommandHandler

	getRouteHandler       queries.GetRouteQueryHandler
	getDriverStopsHandler queries.GetDriverStopsQueryHandler
}

// NewServer creates a new HTTP server with the required command and query
// handlers.
func NewServer(
	createRouteHandler commands.CreateRouteCommandHandler,
	reorderStopsHandler commands.ReorderStopsCommandHandler,
	changeStopStatusHandler commands.ChangeStopStatusCommandHandler,
	getRouteHandler queries.GetRouteQueryHandler,
	getDriverStopsHandler queries.GetDriverStopsQueryHandler,
) *Server {
	return &Server{
		createRouteHandler:      createRouteHandler,
		reorderStopsHandler:     reorderStopsHandler,
		changeStopStatusHandler: changeStopStatusHandler,
		getRouteHandler:         getRouteHandler,
		getDriverStopsHandler:   getDriverStopsHandler,
	}
}

// RegisterRoutes binds the API endpoints onto the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", s.Health)

	api := e.Group("/api/v1")
	api.POST("/routes", s.CreateRoute)
	api.GET("/routes/:id", s.GetRoute)
	api.GET("/routes/:id/stops", s.GetDriverStops)
	api.POST("/routes/:id/reorder", s.ReorderStops)
	api.PATCH("/stops/:id/status", s.ChangeStopStatus)
}

// ErrorResponse is the wire shape of every error this API returns.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// CreateRouteRequest is the payload of POST /api/v1/routes.
type CreateRouteRequest struct {
	Date      string   `json:"date"`
	OrderIDs  []string `json:"order_ids"`
	VehicleID *string  `json:"vehicle_id,omitempty"`
	DriverID  *string  `json:"driver_id,omitempty"`
	StartTime *string  `json:"start_time,omitempty"`
	Algorithm string   `json:"algorithm,omitempty"`
}

// CreateRouteResponse carries the id of the newly planned route.
type CreateRouteResponse struct {
	ID string `json:"id"`
}

// ReorderStopsRequest is the payload of POST /api/v1/routes/:id/reorder.
type ReorderStopsRequest struct {
	OrderIDs []string `json:"order_ids"`
}

// ChangeStopStatusRequest is the payload of PATCH /api/v1/stops/:id/status.
type ChangeStopStatusRequest struct {
	Status string `json:"status"`
}

// Health handles GET /health.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// CreateRoute handles POST /api/v1/routes - plans a new delivery route.
func (s *Server) CreateRoute(ctx echo.Context) error {
	var request CreateRouteRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	date, err := time.Parse("2006-01-02", request.Date)
	if err != nil {
		return badRequest(ctx, "Invalid date, expected YYYY-MM-DD")
	}

	orderIDs, err := parseUUIDs(request.OrderIDs)
	if err != nil {
		return badRequest(ctx, "Invalid order id: "+err.Error())
	}

	vehicleID, err := parseOptionalUUID(request.VehicleID)
	if err != nil {
		return badRequest(ctx, "Invalid vehicle id")
	}
	driverID, err := parseOptionalUUID(request.DriverID)
	if err != nil {
		return badRequest(ctx, "Invalid driver id")
	}

	var startTime time.Time
	if request.StartTime != nil {
		startTime, err = time.Parse(time.RFC3339, *request.StartTime)
		if err != nil {
			return badRequest(ctx, "Invalid start_time, expected RFC3339")
		}
	}

	routeID := kernel.NewUUID()
	cmd, err := commands.NewCreateRouteCommand(
		routeID, date, orderIDs, vehicleID, driverID, startTime,
		route.Algorithm(request.Algorithm))
	if err != nil {
		return badRequest(ctx, "Invalid route data: "+err.Error())
	}

	if handleErr := s.createRouteHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		switch {
		case errors.Is(handleErr, commands.ErrNoRoutableOrders):
			return errorJSON(ctx, http.StatusUnprocessableEntity, "No order address could be resolved")
		case errors.Is(handleErr, commands.ErrVehicleCapacityExceeded):
			return errorJSON(ctx, http.StatusConflict, "Order demand exceeds vehicle capacity")
		case errors.Is(handleErr, errs.ErrObjectNotFound):
			return errorJSON(ctx, http.StatusNotFound, handleErr.Error())
		case isValueError(handleErr):
			return badRequest(ctx, handleErr.Error())
		default:
			return errorJSON(ctx, http.StatusInternalServerError, "Failed to plan route")
		}
	}

	return ctx.JSON(http.StatusCreated, CreateRouteResponse{ID: routeID.String()})
}

// ReorderStops handles POST /api/v1/routes/:id/reorder.
func (s *Server) ReorderStops(ctx echo.Context) error {
	routeID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid route id")
	}

	var request ReorderStopsRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	orderIDs, err := parseUUIDs(request.OrderIDs)
	if err != nil {
		return badRequest(ctx, "Invalid order id: "+err.Error())
	}

	cmd, err := commands.NewReorderStopsCommand(routeID, orderIDs)
	if err != nil {
		return badRequest(ctx, "Invalid reorder data: "+err.Error())
	}

	if handleErr := s.reorderStopsHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		switch {
		case errors.Is(handleErr, errs.ErrObjectNotFound):
			return errorJSON(ctx, http.StatusNotFound, "Route not found")
		case errors.Is(handleErr, route.ErrRouteIsCompleted):
			return errorJSON(ctx, http.StatusConflict, "Completed routes cannot be reordered")
		default:
			return errorJSON(ctx, http.StatusInternalServerError, "Failed to reorder stops")
		}
	}

	return ctx.NoContent(http.StatusNoContent)
}

// ChangeStopStatus handles PATCH /api/v1/stops/:id/status.
func (s *Server) ChangeStopStatus(ctx echo.Context) error {
	stopID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid stop id")
	}

	var request ChangeStopStatusRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	target, ok := stopStatusFromString(request.Status)
	if !ok {
		return badRequest(ctx, "Unknown stop status: "+request.Status)
	}

	cmd, err := commands.NewChangeStopStatusCommand(stopID, target)
	if err != nil {
		return badRequest(ctx, "Invalid status data: "+err.Error())
	}

	if handleErr := s.changeStopStatusHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		switch {
		case errors.Is(handleErr, errs.ErrObjectNotFound):
			return errorJSON(ctx, http.StatusNotFound, "Stop not found")
		case isValueError(handleErr):
			return errorJSON(ctx, http.StatusConflict, handleErr.Error())
		default:
			return errorJSON(ctx, http.StatusInternalServerError, "Failed to change stop status")
		}
	}

	return ctx.NoContent(http.StatusNoContent)
}

// GetRoute handles GET /api/v1/routes/:id - the route read model.
func (s *Server) GetRoute(ctx echo.Context) error {
	routeID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid route id")
	}

	query, err := queries.NewGetRouteQuery(routeID)
	if err != nil {
		return badRequest(ctx, "Invalid route id")
	}

	result, err := s.getRouteHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			return errorJSON(ctx, http.StatusNotFound, "Route not found")
		}
		return errorJSON(ctx, http.StatusInternalServerError, "Failed to retrieve route")
	}

	return ctx.JSON(http.StatusOK, toRouteView(result))
}

// GetDriverStops handles GET /api/v1/routes/:id/stops - the driver-facing
// stop list. The first call on a planned route marks it in progress.
func (s *Server) GetDriverStops(ctx echo.Context) error {
	routeID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid route id")
	}

	query, err := queries.NewGetDriverStopsQuery(routeID)
	if err != nil {
		return badRequest(ctx, "Invalid route id")
	}

	result, err := s.getDriverStopsHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			return errorJSON(ctx, http.StatusNotFound, "Route not found")
		}
		return errorJSON(ctx, http.StatusInternalServerError, "Failed to retrieve driver stops")
	}

	return ctx.JSON(http.StatusOK, toDriverStopsView(result))
}

func badRequest(ctx echo.Context, message string) error {
	return errorJSON(ctx, http.StatusBadRequest, message)
}

func errorJSON(ctx echo.Context, code int, message string) error {
	return ctx.JSON(code, ErrorResponse{Code: code, Message: message})
}

func parseUUIDs(raw []string) ([]kernel.UUID, error) {
	ids := make([]kernel.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := kernel.UUIDFromString(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseOptionalUUID(raw *string) (*kernel.UUID, error) {
	if raw == nil {
		return nil, nil //nolint:nilnil //absent optional field
	}
	id, err := kernel.UUIDFromString(*raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func stopStatusFromString(s string) (route.StopStatus, bool) {
	switch s {
	case "Arrived":
		return route.StopStatusArrived, true
	case "Delivered":
		return route.StopStatusDelivered, true
	case "Failed":
		return route.StopStatusFailed, true
	case "Skipped":
		return route.StopStatusSkipped, true
	default:
		return route.StopStatusUnknown, false
	}
}

func isValueError(err error) bool {
	var invalid *errs.ValueIsInvalidError
	var outOfRange *errs.ValueIsOutOfRangeError
	var required *errs.ValueIsRequiredError
	return errors.As(err, &invalid) || errors.As(err, &outOfRange) || errors.As(err, &required)
}
