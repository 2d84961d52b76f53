package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/geezshoe/internal/cart"
	"github.com/MikeMC777/geezshoe/internal/company"
	"github.com/MikeMC777/geezshoe/internal/events"
	"github.com/MikeMC777/geezshoe/internal/logging"
	"github.com/MikeMC777/geezshoe/internal/order"
	prod "github.com/MikeMC777/geezshoe/internal/product"
)

//
// ===== STUBS =====
//

type stubProducts struct {
	items     map[string]*prod.Product
	lastQuery prod.Query
}

func newStubProducts(ps ...prod.Product) *stubProducts {
	s := &stubProducts{items: map[string]*prod.Product{}}
	for i := range ps {
		p := ps[i]
		s.items[p.ID] = &p
	}
	return s
}

func (s *stubProducts) List(_ context.Context, q prod.Query) ([]prod.Product, error) {
	s.lastQuery = q
	out := []prod.Product{}
	for _, p := range s.items {
		if q.ActiveOnly && !p.IsActive {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (s *stubProducts) GetByID(_ context.Context, id string) (*prod.Product, error) {
	p, ok := s.items[id]
	if !ok {
		return nil, prod.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *stubProducts) Create(_ context.Context, p *prod.Product) error {
	s.items[p.ID] = p
	return nil
}

func (s *stubProducts) Update(_ context.Context, p *prod.Product) error {
	if _, ok := s.items[p.ID]; !ok {
		return prod.ErrNotFound
	}
	s.items[p.ID] = p
	return nil
}

func (s *stubProducts) Delete(_ context.Context, id string) (bool, error) {
	_, ok := s.items[id]
	delete(s.items, id)
	return ok, nil
}

type stubCompany struct{ info company.Info }

func (s *stubCompany) Get(context.Context) (*company.Info, error) {
	cp := s.info
	return &cp, nil
}

func (s *stubCompany) Upsert(_ context.Context, in *company.Info) error {
	s.info = *in
	return nil
}

type stubOrders struct{ created []order.Order }

func (s *stubOrders) Create(_ context.Context, o *order.Order) error {
	s.created = append(s.created, *o)
	return nil
}
func (s *stubOrders) GetByID(context.Context, string) (*order.Order, error) {
	return nil, order.ErrNotFound
}
func (s *stubOrders) List(context.Context, int, int) ([]order.Order, error) { return nil, nil }
func (s *stubOrders) Delete(context.Context, string) (bool, error) { return false, nil }

type memIdem struct{ keys map[string]bool }

func (m *memIdem) Key(scope, key string) string { return scope + ":" + key }
func (m *memIdem) Seen(_ context.Context, key string) (bool, error) {
	if m.keys[key] {
		return true, nil
	}
	m.keys[key] = true
	return false, nil
}
func (m *memIdem) Release(_ context.Context, key string) error {
	delete(m.keys, key)
	return nil
}

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func catalog() *stubProducts {
	disc := price("2100")
	return newStubProducts(
		prod.Product{ID: "runner", Name: "Runner", ItemNumber: 4, Price: price("2500"), Discount: true, DiscountPrice: &disc, Sizes: []string{"41", "42"}, Images: []string{"http://media/products/a.jpg"}, IsActive: true},
		prod.Product{ID: "boot", Name: "Boot", ItemNumber: 0, Price: price("900"), IsActive: false},
	)
}

type testEnv struct {
	r      *gin.Engine
	orders *stubOrders
	store  *cart.MemoryStorage
}

func newEnv(products *stubProducts) *testEnv {
	gin.SetMode(gin.TestMode)
	orders := &stubOrders{}
	store := cart.NewMemoryStorage()
	r := gin.New()
	registerRoutes(r, shopDeps{
		products: products,
		company:  &stubCompany{info: company.Info{Name: "GeezShoe"}},
		carts:    &cartOpener{storage: store},
		placer:   order.NewPlacer(orders, events.Nop{}, logging.Discard()),
		idem:     &memIdem{keys: map[string]bool{}},
	})
	return &testEnv{r: r, orders: orders, store: store}
}

func (e *testEnv) do(method, target, cartID, body string, headers ...string) *httptest.ResponseRecorder {
	var rdr *bytes.Buffer
	if body != "" {
		rdr = bytes.NewBufferString(body)
	} else {
		rdr = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, target, rdr)
	req.Header.Set("Content-Type", "application/json")
	if cartID != "" {
		req.Header.Set(cartHeader, cartID)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func decodeCart(t *testing.T, w *httptest.ResponseRecorder) cartView {
	t.Helper()
	var v cartView
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("invalid json: %v body=%s", err, w.Body.String())
	}
	return v
}

//
// ===== TESTS =====
//

func TestListProducts_ActiveOnly(t *testing.T) {
	products := catalog()
	env := newEnv(products)

	w := env.do(http.MethodGet, "/products?limit=500&q=run", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var got prod.ListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if len(got.Items) != 1 || got.Items[0].ID != "runner" {
		t.Fatalf("unexpected items: %+v", got.Items)
	}
	if !products.lastQuery.ActiveOnly || products.lastQuery.Q != "run" || products.lastQuery.Limit != 20 {
		t.Fatalf("unexpected query: %+v", products.lastQuery)
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	env := newEnv(catalog())

	w := env.do(http.MethodGet, "/products/nope", "", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", w.Code, w.Body.String())
	}
}

func TestGetCompany(t *testing.T) {
	env := newEnv(catalog())

	w := env.do(http.MethodGet, "/company", "", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "GeezShoe") {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestCart_AddMergesAndPricesFromCatalog(t *testing.T) {
	env := newEnv(catalog())

	// no cart id: a new one is issued
	w := env.do(http.MethodPost, "/cart/items", "", `{"product_id":"runner","qty":2,"size":42}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	id := w.Header().Get(cartHeader)
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("expected issued cart id, got %q", id)
	}

	w = env.do(http.MethodPost, "/cart/items", id, `{"product_id":"runner","qty":20,"size":42}`)
	v := decodeCart(t, w)
	if len(v.Items) != 1 || v.Items[0].Qty != cart.MaxQuantity {
		t.Fatalf("expected one merged line clamped to %d, got %+v", cart.MaxQuantity, v.Items)
	}
	if !v.Items[0].Price.Equal(price("2100")) || v.Items[0].OriginalPrice == nil || !v.Items[0].OriginalPrice.Equal(price("2500")) {
		t.Fatalf("line not priced from catalog: %+v", v.Items[0])
	}
	if v.Items[0].Image != "http://media/products/a.jpg" {
		t.Fatalf("image=%q", v.Items[0].Image)
	}
	if w.Header().Get(cartCountHeader) != "15" || v.Total != "31500.00" {
		t.Fatalf("count=%q total=%q", w.Header().Get(cartCountHeader), v.Total)
	}
}

func TestCart_AddRejectsUnknownProductAndSize(t *testing.T) {
	env := newEnv(catalog())
	id := uuid.NewString()

	if w := env.do(http.MethodPost, "/cart/items", id, `{"product_id":"ghost"}`); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if w := env.do(http.MethodPost, "/cart/items", id, `{"product_id":"runner","size":44}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unavailable size, got %d", w.Code)
	}
	if w := env.do(http.MethodPost, "/cart/items", id, `{}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing product_id, got %d", w.Code)
	}
}

func TestCart_OutOfStockIsPreorder(t *testing.T) {
	env := newEnv(catalog())

	w := env.do(http.MethodPost, "/cart/items", uuid.NewString(), `{"product_id":"boot","qty":1}`)
	v := decodeCart(t, w)
	if len(v.Items) != 1 || !v.Items[0].IsPreorder {
		t.Fatalf("expected preorder line, got %+v", v.Items)
	}
}

func TestCart_UpdateRemoveClear(t *testing.T) {
	env := newEnv(catalog())
	id := uuid.NewString()
	env.do(http.MethodPost, "/cart/items", id, `{"product_id":"runner","qty":1,"size":41}`)
	env.do(http.MethodPost, "/cart/items", id, `{"product_id":"runner","qty":1,"size":42}`)

	// update
	{
		w := env.do(http.MethodPatch, "/cart/items/runner", id, `{"qty":99,"size":41}`)
		v := decodeCart(t, w)
		if got := w.Header().Get(cartCountHeader); got != "16" {
			t.Fatalf("listener should set count header 16, got %q", got)
		}
		if v.Items[0].Qty != cart.MaxQuantity || v.Items[1].Qty != 1 {
			t.Fatalf("unexpected quantities: %+v", v.Items)
		}
	}

	// reads report the count too
	{
		w := env.do(http.MethodGet, "/cart", id, "")
		if got := w.Header().Get(cartCountHeader); got != "16" {
			t.Fatalf("expected count header 16 on read, got %q", got)
		}
	}

	// remove one size
	{
		w := env.do(http.MethodDelete, "/cart/items/runner?size=41", id, "")
		v := decodeCart(t, w)
		if len(v.Items) != 1 || v.Items[0].SizeLabel() != "42" {
			t.Fatalf("unexpected items after remove: %+v", v.Items)
		}
	}

	// bad size
	if w := env.do(http.MethodDelete, "/cart/items/runner?size=big", id, ""); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	// clear
	{
		w := env.do(http.MethodDelete, "/cart", id, "")
		v := decodeCart(t, w)
		if len(v.Items) != 0 || w.Header().Get(cartCountHeader) != "0" {
			t.Fatalf("cart not cleared: %+v", v)
		}
	}
}

func TestCheckout_PlacesOrderAndClearsCart(t *testing.T) {
	env := newEnv(catalog())
	id := uuid.NewString()
	env.do(http.MethodPost, "/cart/items", id, `{"product_id":"runner","qty":2,"size":42}`)

	body := `{"name":"Abebe","phone":"+251911223344","location":"Bole","in_addis":true}`
	w := env.do(http.MethodPost, "/checkout", id, body, "Idempotency-Key", "k1")
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if len(env.orders.created) != 1 {
		t.Fatalf("expected 1 order, got %d", len(env.orders.created))
	}
	o := env.orders.created[0]
	if o.Email != nil || !o.OrderPlace || o.Quantities[0] != 2 || o.ProductSizes[0] != "42" {
		t.Fatalf("unexpected order: %+v", o)
	}
	if _, ok, _ := env.store.Get(context.Background(), cart.Key(id)); ok {
		t.Fatalf("cart still stored after checkout")
	}

	// replay with the same key
	w = env.do(http.MethodPost, "/checkout", id, body, "Idempotency-Key", "k1")
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 on replay, got %d", w.Code)
	}
}

func TestCheckout_ValidationKeepsCart(t *testing.T) {
	env := newEnv(catalog())
	id := uuid.NewString()
	env.do(http.MethodPost, "/cart/items", id, `{"product_id":"runner","qty":2,"size":42}`)

	w := env.do(http.MethodPost, "/checkout", id, `{"name":"Abebe","phone":"+251911223344","location":"Bole","email":"abebe@"}`, "Idempotency-Key", "k2")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", w.Code, w.Body.String())
	}
	var body struct {
		Fields map[string]string `json:"fields"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if _, ok := body.Fields["email"]; !ok {
		t.Fatalf("expected email field error, got %s", w.Body.String())
	}
	if len(env.orders.created) != 0 {
		t.Fatalf("order persisted despite validation error")
	}
	if v := decodeCart(t, env.do(http.MethodGet, "/cart", id, "")); v.Count != 2 {
		t.Fatalf("cart changed: %+v", v)
	}

	// the key was released, so a corrected retry goes through
	w = env.do(http.MethodPost, "/checkout", id, `{"name":"Abebe","phone":"+251911223344","location":"Bole"}`, "Idempotency-Key", "k2")
	if w.Code != http.StatusCreated {
		t.Fatalf("retry status=%d body=%s", w.Code, w.Body.String())
	}
}
