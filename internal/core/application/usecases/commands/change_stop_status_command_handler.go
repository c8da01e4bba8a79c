package commands

import (
	"context"
	"log/slog"
)

// ChangeStopStatusCommandHandler applies a delivery status transition to a
// stop and persists the owning route. When the transition terminates the
// last open stop the route completes as a side effect, exactly once.
type ChangeStopStatusCommandHandler struct {
	uowFactory RouteUoWFactory
	logger     *slog.Logger
}

// NewChangeStopStatusCommandHandler creates a handler for stop status
// transitions.
func NewChangeStopStatusCommandHandler(uowFactory RouteUoWFactory, logger *slog.Logger) ChangeStopStatusCommandHandler {
	return ChangeStopStatusCommandHandler{
		uowFactory: uowFactory,
		logger:     logger.With("component", "change_stop_status_handler"),
	}
}

// Handle processes the stop status transition command.
func (h ChangeStopStatusCommandHandler) Handle(ctx context.Context, command ChangeStopStatusCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	routeRepo := uow.RouteRepository()

	aggregate, err := routeRepo.GetByStopID(ctx, command.StopID())
	if err != nil {
		return err
	}

	completed, err := aggregate.ChangeStopStatus(command.StopID(), command.Target())
	if err != nil {
		return err
	}

	if err := routeRepo.Update(ctx, aggregate); err != nil {
		return err
	}

	if err := uow.Commit(ctx); err != nil {
		return err
	}

	if completed {
		h.logger.InfoContext(ctx, "route completed",
			"route_id", aggregate.ID().String())
	}
	return nil
}
