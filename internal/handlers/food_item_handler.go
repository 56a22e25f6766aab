package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ecanteen/internal/models"
	"ecanteen/internal/services"
)

type FoodItemHandler struct {
	items services.FoodItemService
}

func NewFoodItemHandler(items services.FoodItemService) *FoodItemHandler {
	return &FoodItemHandler{items: items}
}

// @Summary      List food items
// @Tags         FoodItems
// @Produce      json
// @Param        category   query     string  false  "Category"
// @Param        available  query     bool    false  "Only available items"
// @Param        search     query     string  false  "Name search"
// @Success      200        {object}  map[string]interface{}
// @Router       /food-items [get]
func (h *FoodItemHandler) List(c *gin.Context) {
	f := models.FoodItemFilter{Category: c.Query("category"), Search: c.Query("search")}
	if c.Query("category") == "all" {
		f.Category = ""
	}
	if v, err := strconv.ParseBool(c.Query("available")); err == nil {
		f.Available = &v
	}
	items, err := h.items.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, err, "Failed to retrieve food items")
		return
	}
	if items == nil {
		items = []*models.FoodItem{}
	}
	c.JSON(http.StatusOK, gin.H{"message": "Food items retrieved successfully", "data": items, "count": len(items)})
}

// @Summary      Food item categories
// @Tags         FoodItems
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /food-items/data/categories [get]
func (h *FoodItemHandler) Categories(c *gin.Context) {
	cats, err := h.items.Categories(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to retrieve categories")
		return
	}
	if cats == nil {
		cats = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"message": "Categories retrieved successfully", "data": cats})
}

// @Summary      Get food item
// @Tags         FoodItems
// @Produce      json
// @Param        id   path      int  true  "Food item ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Router       /food-items/{id} [get]
func (h *FoodItemHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid food item ID"})
		return
	}
	it, err := h.items.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to retrieve food item")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Food item retrieved successfully", "data": it})
}

// @Summary      Create food item
// @Tags         FoodItems
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      models.FoodItem  true  "Food item"
// @Success      201   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Router       /food-items [post]
func (h *FoodItemHandler) Create(c *gin.Context) {
	var it models.FoodItem
	if err := c.ShouldBindJSON(&it); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.items.Create(c.Request.Context(), &it); err != nil {
		respondError(c, err, "Failed to create food item")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Food item created successfully", "data": it})
}

// @Summary      Update food item
// @Tags         FoodItems
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int              true  "Food item ID"
// @Param        body  body      models.FoodItem  true  "Food item"
// @Success      200   {object}  map[string]interface{}
// @Failure      404   {object}  map[string]string
// @Router       /food-items/{id} [put]
func (h *FoodItemHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid food item ID"})
		return
	}
	var it models.FoodItem
	if err := c.ShouldBindJSON(&it); err != nil {
		badRequest(c, err)
		return
	}
	it.ID = id
	if err := h.items.Update(c.Request.Context(), &it); err != nil {
		respondError(c, err, "Failed to update food item")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Food item updated successfully", "data": it})
}

// @Summary      Delete food item
// @Tags         FoodItems
// @Security     BearerAuth
// @Param        id   path      int  true  "Food item ID"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /food-items/{id} [delete]
func (h *FoodItemHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid food item ID"})
		return
	}
	if err := h.items.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete food item")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Food item deleted successfully"})
}
