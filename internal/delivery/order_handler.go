package delivery

import (
	"io"
	"net/http"

	"grouporder/internal/domain"
	"grouporder/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type OrderHandler struct {
	orders domain.OrderUseCase
	users  domain.AuthUseCase
	log    *logrus.Logger
}

func NewOrderHandler(orders domain.OrderUseCase, users domain.AuthUseCase, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		users:  users,
		log:    logger,
	}
}

type participantsRequest struct {
	UserIDs []string `json:"user_ids" binding:"required"`
}

type participantsResponse struct {
	UserIDs []string                `json:"user_ids"`
	Delta   domain.ParticipantDelta `json:"delta"`
}

type shareLinkResponse struct {
	URL string `json:"url"`
}

func (h *OrderHandler) RegisterRoutes(router gin.IRouter) {
	orders := router.Group("/orders")
	{
		orders.POST("", h.CreateOrder)
		orders.GET("", h.ListOrders)
		orders.GET("/:id", h.GetOrder)
		orders.PATCH("/:id", h.UpdateOrder)
		orders.DELETE("/:id", h.DeleteOrder)
		orders.GET("/:id/summary", h.GetSummary)
		orders.GET("/:id/summary/stream", h.StreamSummary)
		orders.GET("/:id/participants", h.ListParticipants)
		orders.PUT("/:id/participants", h.SetParticipants)
		orders.POST("/:id/selections/:itemId", h.AddSelection)
		orders.DELETE("/:id/selections/:itemId", h.RemoveSelection)
		orders.GET("/:id/share", h.ShareLink)
	}
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var order domain.Order
	if !bindJSON(c, h.log, &order, "create order") {
		return
	}
	order.ID = ""

	created, err := h.orders.CreateOrder(c.Request.Context(), middleware.UserID(c), &order)
	if err != nil {
		FailWithError(c, h.log, "Failed to create order", err)
		return
	}

	h.log.Infof("Order created successfully: ID %s", created.ID)
	SuccessResponse(c, http.StatusCreated, "Order created successfully", created)
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	orders, err := h.orders.ListVisibleOrders(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		FailWithError(c, h.log, "Failed to retrieve orders", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Orders retrieved successfully", orders)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.orders.GetOrder(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		FailWithError(c, h.log, "Failed to retrieve order", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Order retrieved successfully", order)
}

func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	var patch domain.OrderPatch
	if !bindJSON(c, h.log, &patch, "update order") {
		return
	}

	updated, err := h.orders.UpdateOrder(c.Request.Context(), middleware.UserID(c), c.Param("id"), patch)
	if err != nil {
		FailWithError(c, h.log, "Failed to update order", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Order updated successfully", updated)
}

func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	if err := h.orders.DeleteOrder(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		FailWithError(c, h.log, "Failed to delete order", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Order deleted successfully", nil)
}

// emails looks up participant emails for display. A failed lookup only
// leaves them out.
func (h *OrderHandler) emails(c *gin.Context) map[string]string {
	users, err := h.users.ListUsers(c.Request.Context())
	if err != nil {
		h.log.Warnf("Failed to load users for summary: %v", err)
		return nil
	}
	return domain.Snapshot{Users: users}.UserEmails()
}

func (h *OrderHandler) GetSummary(c *gin.Context) {
	summary, err := h.orders.GetSummary(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		FailWithError(c, h.log, "Failed to compute summary", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Summary computed successfully", NewSummaryView(*summary, h.emails(c)))
}

// StreamSummary pushes a "summary" server-sent event with the recomputed
// summary after every relevant change until the client disconnects.
func (h *OrderHandler) StreamSummary(c *gin.Context) {
	ctx := c.Request.Context()
	summaries, err := h.orders.WatchSummary(ctx, middleware.UserID(c), c.Param("id"))
	if err != nil {
		FailWithError(c, h.log, "Failed to watch summary", err)
		return
	}

	emails := h.emails(c)
	h.log.Infof("Streaming summary of order %s to user %s", c.Param("id"), middleware.UserID(c))
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case s, ok := <-summaries:
			if !ok {
				return false
			}
			c.SSEvent("summary", NewSummaryView(s, emails))
			return true
		}
	})
}

func (h *OrderHandler) ListParticipants(c *gin.Context) {
	ids, err := h.orders.ListParticipants(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		FailWithError(c, h.log, "Failed to retrieve participants", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Participants retrieved successfully", participantsResponse{UserIDs: ids})
}

func (h *OrderHandler) SetParticipants(c *gin.Context) {
	var req participantsRequest
	if !bindJSON(c, h.log, &req, "participants") {
		return
	}

	ctx := c.Request.Context()
	actorID := middleware.UserID(c)
	orderID := c.Param("id")

	delta, err := h.orders.SetParticipants(ctx, actorID, orderID, req.UserIDs)
	if err != nil {
		FailWithError(c, h.log, "Failed to update participants", err)
		return
	}
	ids, err := h.orders.ListParticipants(ctx, actorID, orderID)
	if err != nil {
		FailWithError(c, h.log, "Failed to retrieve participants", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Participants updated successfully", participantsResponse{UserIDs: ids, Delta: delta})
}

func (h *OrderHandler) AddSelection(c *gin.Context) {
	err := h.orders.AddSelection(c.Request.Context(), middleware.UserID(c), c.Param("id"), c.Param("itemId"))
	if err != nil {
		FailWithError(c, h.log, "Failed to add item", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Item selected", nil)
}

func (h *OrderHandler) RemoveSelection(c *gin.Context) {
	err := h.orders.RemoveSelection(c.Request.Context(), middleware.UserID(c), c.Param("id"), c.Param("itemId"))
	if err != nil {
		FailWithError(c, h.log, "Failed to remove item", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Item removed", nil)
}

func (h *OrderHandler) ShareLink(c *gin.Context) {
	link, err := h.orders.ShareLink(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		FailWithError(c, h.log, "Failed to build share link", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Share link built", shareLinkResponse{URL: link})
}
