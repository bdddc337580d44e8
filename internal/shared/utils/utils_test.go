package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestGenerateSlug(t *testing.T) {
	assert.Equal(t, "sunny-flat-krakow", GenerateSlug("Sunny Flat, Kraków"))
	assert.Equal(t, "cafe-2-beds", GenerateSlug("  Café -- 2 beds! "))
	assert.Equal(t, "", GenerateSlug("!!!"))
}

func TestWhereBuilder(t *testing.T) {
	var w WhereBuilder
	assert.Equal(t, "", w.SQL())

	w.Add("city ILIKE ?", "%berlin%")
	w.Add("price BETWEEN ? AND ?", 100, 200)

	assert.Equal(t, " WHERE city ILIKE $1 AND price BETWEEN $2 AND $3", w.SQL())
	assert.Equal(t, []any{"%berlin%", 100, 200}, w.Args())
	assert.Equal(t, 4, w.Next())
}

func TestParsePagination(t *testing.T) {
	gin.SetMode(gin.TestMode)

	parse := func(query string) Pagination {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/x?"+query, nil)
		return ParsePagination(c, 20, 100)
	}

	assert.Equal(t, Pagination{Page: 1, Limit: 20}, parse(""))
	assert.Equal(t, Pagination{Page: 3, Limit: 10}, parse("page=3&limit=10"))
	assert.Equal(t, Pagination{Page: 1, Limit: 100}, parse("page=-2&limit=5000"))
	assert.Equal(t, 40, Pagination{Page: 3, Limit: 20}.Offset())
}
