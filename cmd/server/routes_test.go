package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"bridge-gate.backend/internal/interfaces/http/handlers"
	"bridge-gate.backend/internal/interfaces/http/middleware"
	"bridge-gate.backend/pkg/jwt"
)

func passThrough(c *gin.Context) { c.Next() }

func emptyRouteDeps() routeDeps {
	return routeDeps{
		transferHandler:       &handlers.TransferHandler{},
		confirmationHandler:   &handlers.ConfirmationHandler{},
		assetHandler:          &handlers.AssetHandler{},
		orderHandler:          &handlers.OrderHandler{},
		adminHandler:          &handlers.AdminHandler{},
		messageHandler:        &handlers.MessageHandler{},
		authMiddleware:        passThrough,
		idempotencyMiddleware: passThrough,
	}
}

func TestRegisterAPIV1Routes_RegistersKeyRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	registerAPIV1Routes(r, emptyRouteDeps())

	routes := r.Routes()
	assert.GreaterOrEqual(t, len(routes), 45)

	expects := []struct {
		method string
		path   string
	}{
		{"POST", "/api/v1/transfers/send"},
		{"POST", "/api/v1/transfers/burn"},
		{"POST", "/api/v1/transfers/claim"},
		{"GET", "/api/v1/submissions/:id"},
		{"POST", "/api/v1/confirmations/:id"},
		{"GET", "/api/v1/confirmations/params"},
		{"POST", "/api/v1/orders/fulfill"},
		{"POST", "/api/v1/orders/:id/cancel-message"},
		{"PUT", "/api/v1/admin/chains/:chainId"},
		{"POST", "/api/v1/admin/aggregators"},
		{"PUT", "/api/v1/admin/order-sources/:chainId"},
		{"GET", "/api/v1/messages"},
	}
	for _, exp := range expects {
		found := false
		for _, route := range routes {
			if route.Method == exp.method && route.Path == exp.path {
				found = true
				break
			}
		}
		assert.True(t, found, "route %s %s not registered", exp.method, exp.path)
	}
}

func TestRegisterAPIV1Routes_ProtectedRoutesRequireToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	deps := emptyRouteDeps()
	deps.authMiddleware = middleware.AuthMiddleware(jwt.NewJWTService("secret", time.Minute))

	r := gin.New()
	registerHealthRoute(r)
	registerAPIV1Routes(r, deps)

	for _, path := range []string{"/api/v1/transfers/send", "/api/v1/orders/fulfill", "/api/v1/admin/aggregators"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
