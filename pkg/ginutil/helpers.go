package ginutil

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// QueryInt extracts an integer from query parameters with default value
func QueryInt(c *gin.Context, key string, defaultValue int) int {
	valueStr := c.Query(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// Pagination reads ?page= and ?limit= (defaults 1 and defaultLimit)
func Pagination(c *gin.Context, defaultLimit int) (page, limit int) {
	page = QueryInt(c, "page", 1)
	limit = QueryInt(c, "limit", defaultLimit)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	return page, limit
}

// ParamID returns the trimmed path parameter and whether it is non-empty
func ParamID(c *gin.Context, key string) (string, bool) {
	id := strings.TrimSpace(c.Param(key))
	return id, id != ""
}
