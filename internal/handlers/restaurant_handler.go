package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ecanteen/internal/models"
	"ecanteen/internal/services"
)

type RestaurantHandler struct {
	restaurant services.RestaurantService
}

func NewRestaurantHandler(restaurant services.RestaurantService) *RestaurantHandler {
	return &RestaurantHandler{restaurant: restaurant}
}

// @Summary      Restaurant information
// @Tags         Restaurant
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /restaurant [get]
func (h *RestaurantHandler) Get(c *gin.Context) {
	r, err := h.restaurant.Get(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to retrieve restaurant information")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Restaurant information retrieved successfully", "data": r})
}

// @Summary      Update restaurant information
// @Tags         Restaurant
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      models.Restaurant  true  "Restaurant"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Router       /restaurant [put]
func (h *RestaurantHandler) Update(c *gin.Context) {
	var req models.Restaurant
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	r, err := h.restaurant.Update(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to update restaurant information")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Restaurant information updated successfully", "data": r})
}
