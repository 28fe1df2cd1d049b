package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		query  string
		page   int
		limit  int
		offset int
	}{
		{"", 1, DefaultLimit, 0},
		{"?page=3&limit=10", 3, 10, 20},
		{"?page=-1&limit=0", 1, DefaultLimit, 0},
		{"?limit=5000", 1, MaxLimit, 0},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest("GET", "/items"+tc.query, nil)

		p := Parse(c)
		assert.Equal(t, tc.page, p.Page, tc.query)
		assert.Equal(t, tc.limit, p.Limit, tc.query)
		assert.Equal(t, tc.offset, p.Offset, tc.query)
	}
}
