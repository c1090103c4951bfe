package ginutil

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func testContext(target string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", target, nil)
	return c
}

func TestQueryInt(t *testing.T) {
	c := testContext("/?n=7&bad=x")
	assert.Equal(t, 7, QueryInt(c, "n", 1))
	assert.Equal(t, 1, QueryInt(c, "bad", 1))
	assert.Equal(t, 3, QueryInt(c, "missing", 3))
}

func TestPagination(t *testing.T) {
	page, limit := Pagination(testContext("/?page=3&limit=50"), 20)
	assert.Equal(t, 3, page)
	assert.Equal(t, 50, limit)

	page, limit = Pagination(testContext("/?page=-2&limit=0"), 20)
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, limit)
}

func TestParamID(t *testing.T) {
	c := testContext("/")
	c.Params = gin.Params{{Key: "id", Value: " e1 "}, {Key: "blank", Value: "  "}}

	id, ok := ParamID(c, "id")
	assert.True(t, ok)
	assert.Equal(t, "e1", id)

	_, ok = ParamID(c, "blank")
	assert.False(t, ok)
}
