package router

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"optika/internal/auth"
	"optika/internal/middleware"
	"optika/internal/memstore"
	"optika/internal/models"
	"optika/internal/upload"
)

type notifierMock struct {
	mock.Mock
}

func (m *notifierMock) OrderConfirmation(ctx context.Context, order models.Order) error {
	return m.Called(ctx, order).Error(0)
}

type testServer struct {
	engine   *gin.Engine
	backend  *memstore.Store
	tokens   *auth.TokenService
	notifier *notifierMock
	frame    models.Product
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	backend := memstore.New()
	ctx := context.Background()

	hash, err := auth.HashPassword("admin123")
	require.NoError(t, err)
	require.NoError(t, backend.UserStore().Create(ctx, &models.User{
		Username:     "admin",
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	}))

	frame := models.Product{
		Slug:          "frame-1",
		Name:          "Classic Aviator",
		Brand:         "Ray-Ban",
		Category:      models.CategorySunglasses,
		Price:         199,
		StockQuantity: 5,
		InStock:       true,
		FrameType:     "Aviator",
		Images:        models.StringList{"/images/frame-1.jpg"},
	}
	require.NoError(t, backend.ProductStore().Create(ctx, &frame))

	tokens := auth.NewTokenService("test-secret", 7*24*time.Hour)
	notifier := &notifierMock{}
	dir := t.TempDir()

	engine := New(Deps{
		Backend:   backend,
		Tokens:    tokens,
		Notifier:  notifier,
		Images:    upload.NewLocalStorage(dir, "/uploads"),
		UploadDir: dir,
		UploadURL: "/uploads",
	})

	return &testServer{engine: engine, backend: backend, tokens: tokens, notifier: notifier, frame: frame}
}

func (s *testServer) token(t *testing.T, id, username, role string) string {
	t.Helper()
	token, err := s.tokens.Create(id, username, role)
	require.NoError(t, err)
	return token
}

func (s *testServer) adminToken(t *testing.T) string {
	return s.token(t, primitive.NewObjectID().Hex(), "admin", models.RoleAdmin)
}

func (s *testServer) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: middleware.TokenCookie, Value: token})
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}

func orderBody(id string, quantity int) map[string]interface{} {
	return map[string]interface{}{
		"items": []map[string]interface{}{{"id": id, "name": "Classic Aviator", "price": 199, "quantity": quantity}},
		"shipping": map[string]interface{}{
			"firstName": "A",
			"lastName":  "B",
			"email":     "a@b.com",
			"phone":     "123",
			"address":   "Main 1",
			"city":      "Tirana",
			"country":   "Albania",
		},
		"payment": map[string]interface{}{"type": "cash_on_delivery"},
		"total":   199 * quantity,
	}
}

func TestGuestOrderReducesStock(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/orders", orderBody("frame-1", 1), "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		OrderID string `json:"orderId"`
	}
	decode(t, w, &created)
	assert.True(t, primitive.IsValidObjectID(created.OrderID))

	w = s.do(http.MethodGet, "/api/products/frame-1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var product models.Product
	decode(t, w, &product)
	assert.Equal(t, 4, product.StockQuantity)
	assert.True(t, product.InStock)

	order, err := s.backend.OrderStore().Get(context.Background(), created.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, models.PaymentPending, order.Payment.Status)
	assert.Empty(t, order.UserID)
}

func TestOrderDrainingStockFlipsInStock(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/orders", orderBody(s.frame.ID.Hex(), 5), "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	p, err := s.backend.ProductStore().Get(context.Background(), "frame-1")
	require.NoError(t, err)
	assert.Equal(t, 0, p.StockQuantity)
	assert.False(t, p.InStock)
}

func TestOrderRejectedWithoutWriting(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/orders", orderBody("frame-1", 6), "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/api/orders", orderBody("frame-404", 1), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	p, err := s.backend.ProductStore().Get(context.Background(), "frame-1")
	require.NoError(t, err)
	assert.Equal(t, 5, p.StockQuantity)

	_, total, err := s.backend.OrderStore().Page(context.Background(), "", 1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestOrderValidation(t *testing.T) {
	s := newTestServer(t)

	cases := map[string]func(map[string]interface{}){
		"no items":      func(b map[string]interface{}) { delete(b, "items") },
		"empty items":   func(b map[string]interface{}) { b["items"] = []interface{}{} },
		"zero quantity": func(b map[string]interface{}) { b["items"] = []map[string]interface{}{{"id": "frame-1", "quantity": 0}} },
		"no shipping":   func(b map[string]interface{}) { delete(b, "shipping") },
		"no last name":  func(b map[string]interface{}) { b["shipping"] = map[string]interface{}{"firstName": "A"} },
		"no payment":    func(b map[string]interface{}) { delete(b, "payment") },
		"zero total":    func(b map[string]interface{}) { b["total"] = 0 },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			body := orderBody("frame-1", 1)
			mutate(body)
			w := s.do(http.MethodPost, "/api/orders", body, "")
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}

	p, err := s.backend.ProductStore().Get(context.Background(), "frame-1")
	require.NoError(t, err)
	assert.Equal(t, 5, p.StockQuantity)
}

func TestOrderOwnedByCallerAndListed(t *testing.T) {
	s := newTestServer(t)
	userID := primitive.NewObjectID().Hex()
	customer := s.token(t, userID, "jane", "")

	w := s.do(http.MethodPost, "/api/orders", orderBody("frame-1", 1), customer)
	require.Equal(t, http.StatusCreated, w.Code)
	w = s.do(http.MethodPost, "/api/orders", orderBody("frame-1", 1), "garbage")
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(http.MethodGet, "/api/orders", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/api/orders", nil, customer)
	require.Equal(t, http.StatusOK, w.Code)
	var orders []models.Order
	decode(t, w, &orders)
	require.Len(t, orders, 1)
	assert.Equal(t, userID, orders[0].UserID)
}

func TestOrderConfirmationEmail(t *testing.T) {
	s := newTestServer(t)

	sent := make(chan models.Order, 1)
	s.notifier.On("OrderConfirmation", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent <- args.Get(1).(models.Order) }).
		Return(assert.AnError)

	body := orderBody("frame-1", 1)
	body["sendEmail"] = true
	w := s.do(http.MethodPost, "/api/orders", body, "")
	require.Equal(t, http.StatusCreated, w.Code)

	select {
	case order := <-sent:
		assert.Equal(t, "a@b.com", order.Shipping.Email)
		assert.False(t, order.ID.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("confirmation was not sent")
	}

	w = s.do(http.MethodPost, "/api/orders", orderBody("frame-1", 1), "")
	require.Equal(t, http.StatusCreated, w.Code)
	s.notifier.AssertNumberOfCalls(t, "OrderConfirmation", 1)
}

func TestAdminRoutesRejectAnonymousAndCustomers(t *testing.T) {
	s := newTestServer(t)
	customer := s.token(t, primitive.NewObjectID().Hex(), "jane", "")

	for _, rt := range Routes(Deps{}) {
		if rt.Access != middleware.Admin {
			continue
		}
		path := strings.ReplaceAll(rt.Path, ":id", primitive.NewObjectID().Hex())

		w := s.do(rt.Method, path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s anonymous", rt.Method, rt.Path)

		w = s.do(rt.Method, path, nil, customer)
		assert.Equal(t, http.StatusForbidden, w.Code, "%s %s customer", rt.Method, rt.Path)
	}
}

func TestPublicProductListAcceptsAnyone(t *testing.T) {
	s := newTestServer(t)

	for _, token := range []string{"", "garbage", s.adminToken(t)} {
		w := s.do(http.MethodGet, "/api/products?category=sunglasses&search=aviator&brand=All+Brands", nil, token)
		require.Equal(t, http.StatusOK, w.Code)

		var products []models.Product
		decode(t, w, &products)
		require.Len(t, products, 1)
		assert.Equal(t, "frame-1", products[0].Slug)
	}

	w := s.do(http.MethodGet, "/api/products?category=eyeglasses", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestLoginLogoutCheck(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/auth/login", map[string]string{"username": "admin", "password": "admin123"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var session *http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == middleware.TokenCookie {
			session = ck
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)
	assert.Equal(t, "/", session.Path)
	assert.Equal(t, http.SameSiteStrictMode, session.SameSite)
	assert.Equal(t, 7*24*60*60, session.MaxAge)
	assert.False(t, session.Secure)

	claims, ok := s.tokens.Verify(session.Value)
	require.True(t, ok)
	user, err := s.backend.UserStore().FindByUsername(context.Background(), "admin")
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.ID)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, models.RoleAdmin, claims.Role)

	w = s.do(http.MethodGet, "/api/auth/check", nil, session.Value)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":true`)

	w = s.do(http.MethodGet, "/api/auth/check", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	for _, token := range []string{"", session.Value} {
		w = s.do(http.MethodPost, "/api/auth/logout", nil, token)
		require.Equal(t, http.StatusOK, w.Code)
		header := w.Header().Get("Set-Cookie")
		assert.Contains(t, header, "token=;")
		assert.Contains(t, header, "Max-Age=0")
	}
}

func TestLoginFailuresLookTheSame(t *testing.T) {
	s := newTestServer(t)

	wrong := s.do(http.MethodPost, "/api/auth/login", map[string]string{"username": "admin", "password": "nope"}, "")
	unknown := s.do(http.MethodPost, "/api/auth/login", map[string]string{"username": "ghost", "password": "nope"}, "")

	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, wrong.Body.String(), unknown.Body.String())
	assert.Empty(t, wrong.Header().Get("Set-Cookie"))

	missing := s.do(http.MethodPost, "/api/auth/login", map[string]string{"username": "admin"}, "")
	assert.Equal(t, http.StatusBadRequest, missing.Code)
}

func TestAdminOrderLifecycle(t *testing.T) {
	s := newTestServer(t)
	admin := s.adminToken(t)

	for i := 0; i < 3; i++ {
		w := s.do(http.MethodPost, "/api/orders", orderBody("frame-1", 1), "")
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := s.do(http.MethodGet, "/api/admin/orders?limit=2&status=all", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Orders     []models.Order `json:"orders"`
		Pagination struct {
			Total int64 `json:"total"`
			Pages int64 `json:"pages"`
			Page  int64 `json:"page"`
			Limit int64 `json:"limit"`
		} `json:"pagination"`
	}
	decode(t, w, &list)
	assert.Len(t, list.Orders, 2)
	assert.Equal(t, int64(3), list.Pagination.Total)
	assert.Equal(t, int64(2), list.Pagination.Pages)
	assert.Equal(t, int64(1), list.Pagination.Page)
	assert.Equal(t, int64(2), list.Pagination.Limit)

	id := list.Orders[0].ID.Hex()
	path := "/api/admin/orders/" + id

	w = s.do(http.MethodPatch, path, map[string]string{"status": "teleported"}, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	for _, status := range []string{"delivered", "pending", "cancelled"} {
		w = s.do(http.MethodPatch, path, map[string]string{"status": status}, admin)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var order models.Order
		decode(t, w, &order)
		assert.Equal(t, models.OrderStatus(status), order.Status)
		assert.NotNil(t, order.UpdatedAt)
	}

	w = s.do(http.MethodPatch, path, map[string]string{"paymentStatus": "paid"}, admin)
	require.Equal(t, http.StatusOK, w.Code)
	var paid models.Order
	decode(t, w, &paid)
	assert.Equal(t, models.PaymentPaid, paid.Payment.Status)
	assert.Equal(t, models.OrderCancelled, paid.Status)

	w = s.do(http.MethodGet, "/api/admin/orders?status=cancelled", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &list)
	assert.Equal(t, int64(1), list.Pagination.Total)

	w = s.do(http.MethodGet, "/api/admin/orders/not-an-id", nil, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodDelete, path, nil, admin)
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodGet, path, nil, admin)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(http.MethodDelete, path, nil, admin)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminProductCRUD(t *testing.T) {
	s := newTestServer(t)
	admin := s.adminToken(t)

	w := s.do(http.MethodPost, "/api/products", map[string]interface{}{"price": 10, "category": "sunglasses"}, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(http.MethodPost, "/api/products", map[string]interface{}{"name": "X", "price": 10, "category": "hats"}, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(http.MethodPost, "/api/products", map[string]interface{}{"name": "X", "price": 0, "category": "sunglasses"}, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(http.MethodPost, "/api/products", map[string]interface{}{"name": "X", "price": 10, "salePrice": 12, "category": "sunglasses"}, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/admin/products", map[string]interface{}{
		"name":          "Round Reader",
		"brand":         "Optika",
		"price":         49.5,
		"salePrice":     39.5,
		"category":      "eyeglasses",
		"stockQuantity": 3,
		"features":      []string{"blue light"},
	}, admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ProductID string         `json:"productId"`
		Product   models.Product `json:"product"`
	}
	decode(t, w, &created)
	require.True(t, primitive.IsValidObjectID(created.ProductID))
	assert.True(t, created.Product.InStock)
	assert.True(t, created.Product.OnSale)
	assert.False(t, created.Product.CreatedAt.IsZero())

	path := "/api/admin/products/" + created.ProductID

	w = s.do(http.MethodGet, "/api/admin/products/frame-1", nil, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(http.MethodGet, "/api/admin/products/"+primitive.NewObjectID().Hex(), nil, admin)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPut, path, map[string]interface{}{"name": "Round Reader II", "price": 55, "category": "eyeglasses", "salePrice": 0}, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated models.Product
	decode(t, w, &updated)
	assert.Equal(t, "Round Reader II", updated.Name)
	assert.Equal(t, "Optika", updated.Brand)
	assert.Equal(t, 3, updated.StockQuantity)
	assert.Nil(t, updated.SalePrice)
	assert.False(t, updated.OnSale)
	assert.NotNil(t, updated.UpdatedAt)

	w = s.do(http.MethodPut, path, map[string]interface{}{"price": 55, "category": "eyeglasses"}, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(http.MethodPut, "/api/admin/products/"+primitive.NewObjectID().Hex(), map[string]interface{}{"name": "Y", "price": 5, "category": "eyeglasses"}, admin)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/api/admin/products?search=reader", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Products   []models.Product `json:"products"`
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	}
	decode(t, w, &page)
	assert.Equal(t, int64(1), page.Pagination.Total)

	w = s.do(http.MethodDelete, path, nil, admin)
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodDelete, path, nil, admin)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductSlugEditsAndConflicts(t *testing.T) {
	s := newTestServer(t)
	admin := s.adminToken(t)

	ids := make([]string, 0, 2)
	for _, name := range []string{"Plain One", "Plain Two"} {
		w := s.do(http.MethodPost, "/api/admin/products", map[string]interface{}{"name": name, "price": 20, "category": "accessories"}, admin)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var created struct {
			ProductID string `json:"productId"`
		}
		decode(t, w, &created)
		ids = append(ids, created.ProductID)
	}

	for _, id := range ids {
		w := s.do(http.MethodPut, "/api/admin/products/"+id, map[string]interface{}{"id": "", "name": "Edited", "price": 25, "category": "accessories"}, admin)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var updated models.Product
		decode(t, w, &updated)
		assert.Empty(t, updated.Slug)
		assert.Equal(t, 25.0, updated.Price)
	}

	w := s.do(http.MethodPost, "/api/admin/products", map[string]interface{}{"id": "frame-1", "name": "Copy", "price": 20, "category": "sunglasses"}, admin)
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	w = s.do(http.MethodPut, "/api/admin/products/"+ids[0], map[string]interface{}{"id": "frame-1", "name": "Copy", "price": 20, "category": "sunglasses"}, admin)
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	w = s.do(http.MethodPut, "/api/admin/products/"+ids[0], map[string]interface{}{"id": "frame-7", "name": "Renamed", "price": 20, "category": "sunglasses"}, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(http.MethodGet, "/api/products/frame-7", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProductOptions(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/product-options", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"brands": ["Ray-Ban"],
		"frameTypes": ["Aviator"],
		"categories": ["eyeglasses", "sunglasses", "contact-lenses", "accessories"]
	}`, w.Body.String())
}

func TestUploadImage(t *testing.T) {
	s := newTestServer(t)
	admin := s.adminToken(t)

	w := s.do(http.MethodPost, "/api/upload", map[string]string{"file": "x"}, admin)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)

	send := func(name string, data []byte) *httptest.ResponseRecorder {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		part, err := writer.CreateFormFile("file", name)
		require.NoError(t, err)
		_, _ = part.Write(data)
		require.NoError(t, writer.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		req.AddCookie(&http.Cookie{Name: middleware.TokenCookie, Value: admin})
		rec := httptest.NewRecorder()
		s.engine.ServeHTTP(rec, req)
		return rec
	}

	w = send("notes.txt", []byte("plain text"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = send("photo.png", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res struct {
		URL string `json:"url"`
	}
	decode(t, w, &res)
	assert.True(t, strings.HasPrefix(res.URL, "/uploads/"))

	w = s.do(http.MethodGet, res.URL, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthAndUnknownRoute(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPolicyCoversEveryRoute(t *testing.T) {
	routes := Routes(Deps{})
	policy := PolicyFor(routes)
	assert.Len(t, policy, len(routes))
	assert.Equal(t, middleware.Optional, policy[middleware.PolicyKey(http.MethodPost, "/api/orders")])
	assert.Equal(t, middleware.Authenticated, policy[middleware.PolicyKey(http.MethodGet, "/api/orders")])
	assert.Equal(t, middleware.Admin, policy[middleware.PolicyKey(http.MethodPost, "/api/upload")])
}
