package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"ecanteen/internal/models"
	"ecanteen/internal/services"
)

type OrderHandler struct {
	orders services.OrderService
}

type updateStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

func NewOrderHandler(orders services.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// @Summary      List orders
// @Description  Users see their own orders, sellers and admins see all. Newest first.
// @Tags         Orders
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Status filter or all"
// @Param        page    query     int     false  "Page (1-based)"
// @Param        limit   query     int     false  "Page size"
// @Success      200     {object}  map[string]interface{}
// @Router       /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	page, err := h.orders.List(c.Request.Context(), currentViewer(c),
		c.Query("status"), queryInt(c, "page", 1), queryInt(c, "limit", 50))
	if err != nil {
		respondError(c, err, "Failed to retrieve orders")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "Orders retrieved successfully",
		"data":       page.Orders,
		"pagination": page.Pagination,
	})
}

// @Summary      Get order
// @Tags         Orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Order ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Router       /orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}
	o, err := h.orders.Get(c.Request.Context(), currentViewer(c), id)
	if err != nil {
		respondError(c, err, "Failed to retrieve order")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order retrieved successfully", "data": o})
}

// @Summary      Place order
// @Description  Prices are taken from the catalog; the order number is assigned by the server.
// @Tags         Orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      services.CreateOrderInput  true  "Order"
// @Success      201   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Router       /orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	var req services.CreateOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	o, err := h.orders.Create(c.Request.Context(), currentViewer(c).UserID, req)
	if err != nil {
		respondError(c, err, "Failed to create order")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Order created successfully", "data": o})
}

// @Summary      Update order status
// @Tags         Orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                  true  "Order ID"
// @Param        body  body      updateStatusRequest  true  "New status"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /orders/{id}/status [patch]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	o, err := h.orders.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err, "Failed to update order status")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Order status updated to %s", o.Status), "data": o})
}

// @Summary      Order receipt
// @Tags         Orders
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id   path  int  true  "Order ID"
// @Success      200  {file}  binary
// @Failure      404  {object}  map[string]string
// @Router       /orders/{id}/receipt [get]
func (h *OrderHandler) Receipt(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}
	o, b, err := h.orders.Receipt(c.Request.Context(), currentViewer(c), id)
	if err != nil {
		respondError(c, err, "Failed to generate receipt")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s.pdf"`, o.OrderNumber))
	c.Data(http.StatusOK, "application/pdf", b)
}
