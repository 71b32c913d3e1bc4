package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/vitaltrack/vitaltrack-api/internal/model"
)

func roleTestEngine(principal *model.Principal) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	if principal != nil {
		engine.Use(func(c *gin.Context) {
			c.Set(PrincipalKey, principal)
		})
	}
	engine.GET("/admin/patients", RequireRoles(model.RoleAdmin), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return engine
}

func TestRequireRolesAllowsMatchingRole(t *testing.T) {
	engine := roleTestEngine(&model.Principal{ID: uuid.New(), Role: model.RoleAdmin})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/patients", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRolesRejectsOtherRoles(t *testing.T) {
	engine := roleTestEngine(&model.Principal{ID: uuid.New(), Role: model.RoleUser})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/patients", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "insufficient role")
}

func TestRequireRolesWithoutPrincipal(t *testing.T) {
	engine := roleTestEngine(nil)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/patients", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
