package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"ecanteen/internal/middleware"
	"ecanteen/internal/services"
)

func currentViewer(c *gin.Context) services.Viewer {
	return services.Viewer{
		UserID: c.GetInt64(middleware.CtxUserID),
		Role:   c.GetString(middleware.CtxRole),
	}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, key string, def int) int {
	if v, err := strconv.Atoi(c.Query(key)); err == nil {
		return v
	}
	return def
}
