// Package router declares every route with the access it requires and
// builds the gin engine from that table.
package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"optika/internal/auth"
	"optika/internal/cache"
	"optika/internal/handlers"
	"optika/internal/mail"
	"optika/internal/middleware"
	"optika/internal/store"
	"optika/internal/upload"
)

// Deps are the collaborators the handlers share.
type Deps struct {
	Backend       store.Backend
	Tokens        *auth.TokenService
	Cache         *cache.Client
	Notifier      mail.Notifier
	Images        upload.Storage
	SecureCookies bool

	// UploadDir and UploadURL expose locally stored images when set.
	UploadDir string
	UploadURL string
}

type Route struct {
	Method  string
	Path    string
	Access  middleware.Access
	Handler gin.HandlerFunc
}

func Routes(d Deps) []Route {
	cookies := handlers.CookieOptions{Secure: d.SecureCookies}

	return []Route{
		{http.MethodGet, "/healthz", middleware.Public, handlers.Health(d.Backend)},

		{http.MethodPost, "/api/auth/login", middleware.Public, handlers.Login(d.Backend, d.Tokens, cookies)},
		{http.MethodPost, "/api/auth/logout", middleware.Public, handlers.Logout(cookies)},
		{http.MethodGet, "/api/auth/check", middleware.Optional, handlers.CheckAuth()},

		{http.MethodGet, "/api/products", middleware.Public, handlers.GetProducts(d.Backend)},
		{http.MethodPost, "/api/products", middleware.Admin, handlers.CreateProduct(d.Backend, d.Cache)},
		{http.MethodGet, "/api/products/:id", middleware.Public, handlers.GetProduct(d.Backend)},
		{http.MethodGet, "/api/product-options", middleware.Public, handlers.GetProductOptions(d.Backend, d.Cache)},

		{http.MethodGet, "/api/admin/products", middleware.Admin, handlers.GetAllProducts(d.Backend)},
		{http.MethodPost, "/api/admin/products", middleware.Admin, handlers.CreateProduct(d.Backend, d.Cache)},
		{http.MethodGet, "/api/admin/products/:id", middleware.Admin, handlers.GetProductByID(d.Backend)},
		{http.MethodPut, "/api/admin/products/:id", middleware.Admin, handlers.UpdateProduct(d.Backend, d.Cache)},
		{http.MethodDelete, "/api/admin/products/:id", middleware.Admin, handlers.DeleteProduct(d.Backend, d.Cache, d.Images)},

		{http.MethodGet, "/api/orders", middleware.Authenticated, handlers.GetMyOrders(d.Backend)},
		{http.MethodPost, "/api/orders", middleware.Optional, handlers.CreateOrder(d.Backend, d.Notifier)},

		{http.MethodGet, "/api/admin/orders", middleware.Admin, handlers.GetAllOrders(d.Backend)},
		{http.MethodGet, "/api/admin/orders/:id", middleware.Admin, handlers.GetOrderByID(d.Backend)},
		{http.MethodPatch, "/api/admin/orders/:id", middleware.Admin, handlers.UpdateOrderStatus(d.Backend)},
		{http.MethodDelete, "/api/admin/orders/:id", middleware.Admin, handlers.DeleteOrder(d.Backend)},

		{http.MethodPost, "/api/upload", middleware.Admin, handlers.UploadImage(d.Images)},
	}
}

// PolicyFor extracts the gate policy from a route table.
func PolicyFor(routes []Route) middleware.Policy {
	policy := make(middleware.Policy, len(routes))
	for _, rt := range routes {
		policy[middleware.PolicyKey(rt.Method, rt.Path)] = rt.Access
	}
	return policy
}

// New builds the engine. The gate is installed before any route so every
// handler chain starts with it.
func New(d Deps) *gin.Engine {
	r := gin.Default()

	routes := Routes(d)
	policy := PolicyFor(routes)

	var staticPath string
	if d.UploadDir != "" && d.UploadURL != "" {
		staticPath = "/" + strings.Trim(d.UploadURL, "/")
		pattern := staticPath + "/*filepath"
		policy[middleware.PolicyKey(http.MethodGet, pattern)] = middleware.Public
		policy[middleware.PolicyKey(http.MethodHead, pattern)] = middleware.Public
	}

	r.Use(middleware.Gate(d.Tokens, policy))

	for _, rt := range routes {
		r.Handle(rt.Method, rt.Path, rt.Handler)
	}
	if staticPath != "" {
		r.Static(staticPath, d.UploadDir)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return r
}
