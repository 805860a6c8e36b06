package response

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/nekogravitycat/directory-portal/internal/pkg/apperror"
)

func TestNewPageResponse(t *testing.T) {
	p := NewPageResponse[string](nil, 7, 10, 200)

	assert.NotNil(t, p.Items)
	assert.Equal(t, 20, p.TotalPages)
	assert.Equal(t, []int{5, 6, 7, 8, 9}, p.VisiblePages)

	empty := NewPageResponse([]int{}, 1, 10, 0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.Empty(t, empty.VisiblePages)
}

func TestError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name string
		err  error
		code int
		body string
	}{
		{"app error", apperror.New(http.StatusNotFound, "not found"), http.StatusNotFound, `{"error":"not found"}`},
		{
			"app error with body",
			apperror.New(http.StatusBadRequest, "bad").WithBody(map[string]any{"error": "bad", "details": "x"}),
			http.StatusBadRequest,
			`{"error":"bad","details":"x"}`,
		},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError, `{"error":"internal server error"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			Error(c, tt.err)
			assert.Equal(t, tt.code, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}
