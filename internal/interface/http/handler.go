package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/packwise/internal/domain/packing"
	"github.com/yanqian/packwise/internal/domain/weather"
	apperrors "github.com/yanqian/packwise/pkg/errors"
)

// Handler wires the HTTP transport to the packing engine.
type Handler struct {
	svc    packing.Service
	logger *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(svc packing.Service, logger *slog.Logger) *Handler {
	return &Handler{
		svc:    svc,
		logger: logger.With("component", "http.handler"),
	}
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GeneratePackingList runs the on-device strategy.
func (h *Handler) GeneratePackingList(c *gin.Context) {
	req, ok := h.bindPackingRequest(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if resp, ok := await(ctx, packing.GeneratePackingListAsync(ctx, h.svc, req)); ok {
		c.JSON(http.StatusOK, resp)
		return
	}
	abortWithError(c, cancelledError(ctx))
}

// GeneratePackingListRemote runs the language model strategy.
func (h *Handler) GeneratePackingListRemote(c *gin.Context) {
	req, ok := h.bindPackingRequest(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if resp, ok := await(ctx, packing.GeneratePackingListRemoteAsync(ctx, h.svc, req)); ok {
		c.JSON(http.StatusOK, resp)
		return
	}
	abortWithError(c, cancelledError(ctx))
}

// Chat answers a free-form packing question.
func (h *Handler) Chat(c *gin.Context) {
	var req packing.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, invalidRequest(errMessage(err), err))
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		abortWithError(c, invalidRequest("prompt cannot be empty", nil))
		return
	}
	ctx := c.Request.Context()
	if resp, ok := await(ctx, packing.GenerateChatResponseAsync(ctx, h.svc, req)); ok {
		c.JSON(http.StatusOK, resp)
		return
	}
	abortWithError(c, cancelledError(ctx))
}

// Weather returns the cached weather summary for a destination.
func (h *Handler) Weather(c *gin.Context) {
	var query packing.WeatherQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		abortWithError(c, invalidRequest(errMessage(err), err))
		return
	}
	query.Destination = strings.TrimSpace(query.Destination)
	if query.Destination == "" {
		abortWithError(c, invalidRequest("destination cannot be empty", nil))
		return
	}
	query.Units = weather.ParseUnits(string(query.Units))

	ctx := c.Request.Context()
	if summary, ok := await(ctx, packing.FetchWeatherSummaryAsync(ctx, h.svc, query)); ok {
		c.JSON(http.StatusOK, summary)
		return
	}
	abortWithError(c, cancelledError(ctx))
}

func (h *Handler) bindPackingRequest(c *gin.Context) (packing.Request, bool) {
	var req packing.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, invalidRequest(errMessage(err), err))
		return req, false
	}
	if err := validateTrip(req.Trip); err != nil {
		abortWithError(c, asHTTPError(err))
		return req, false
	}
	return req, true
}

func validateTrip(trip packing.Trip) error {
	if strings.TrimSpace(trip.Destination) == "" {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "destination cannot be empty", nil)
	}
	if trip.EndDate.Before(trip.StartDate) {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "endDate must not be before startDate", nil)
	}
	return nil
}

// await waits for an async result unless the client goes away first.
func await[T any](ctx context.Context, ch <-chan T) (T, bool) {
	select {
	case v, ok := <-ch:
		return v, ok
	case <-ctx.Done():
		var zero T
		return zero, false
	}
}

func cancelledError(ctx context.Context) *HTTPError {
	if err := ctx.Err(); err != nil {
		return asHTTPError(err)
	}
	return asHTTPError(context.Canceled)
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
