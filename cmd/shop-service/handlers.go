package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MikeMC777/geezshoe/internal/cart"
	"github.com/MikeMC777/geezshoe/internal/company"
	"github.com/MikeMC777/geezshoe/internal/httpx"
	"github.com/MikeMC777/geezshoe/internal/order"
	"github.com/MikeMC777/geezshoe/internal/product"
)

const (
	cartHeader      = "X-Cart-ID"
	cartCountHeader = "X-Cart-Count"
	genericError    = "something went wrong, please try again"
)

// idempotencyGuard claims a client-supplied request key.
type idempotencyGuard interface {
	Key(scope, key string) string
	Seen(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

type shopDeps struct {
	products product.Repository
	company  company.Repository
	carts    *cartOpener
	placer   *order.Placer
	idem     idempotencyGuard
}

func registerRoutes(r *gin.Engine, d shopDeps) {
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	r.GET("/products", listProductsHandler(d.products))
	r.GET("/products/:id", getProductHandler(d.products))
	r.GET("/company", getCompanyHandler(d.company))

	r.GET("/cart", getCartHandler(d.carts))
	r.POST("/cart/items", addCartItemHandler(d.carts, d.products))
	r.PATCH("/cart/items/:id", updateCartItemHandler(d.carts))
	r.DELETE("/cart/items/:id", removeCartItemHandler(d.carts))
	r.DELETE("/cart", clearCartHandler(d.carts))

	r.POST("/checkout", checkoutHandler(d.carts, d.placer, d.idem))
}

// cartOpener binds a request to the cart named by its X-Cart-ID header,
// issuing a new id when the header is missing or malformed.
type cartOpener struct {
	storage cart.Storage
}

func (o *cartOpener) open(c *gin.Context) *cart.Store {
	id := c.GetHeader(cartHeader)
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	c.Header(cartHeader, id)
	s := cart.Open(o.storage, cart.Key(id))
	s.Subscribe(func(items []cart.Item) {
		c.Header(cartCountHeader, strconv.Itoa(cart.CountOf(items)))
	})
	return s
}

type cartView struct {
	CartID string      `json:"cart_id"`
	Items  []cart.Item `json:"items"`
	Count  int         `json:"count"`
	Total  string      `json:"total"`
}

// writeCart renders the cart. X-Cart-Count comes from the listener open
// subscribed, which fires on every mutation.
func writeCart(c *gin.Context, s *cart.Store) {
	items, err := s.Items(c.Request.Context())
	if err != nil {
		httpx.Error(c, http.StatusInternalServerError, genericError)
		return
	}
	c.JSON(http.StatusOK, cartView{
		CartID: c.Writer.Header().Get(cartHeader),
		Items:  items,
		Count:  cart.CountOf(items),
		Total:  cart.TotalOf(items).StringFixed(2),
	})
}

func parseSize(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func pageParams(c *gin.Context) (int, int) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// ===== catalog =====

func listProductsHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset := pageParams(c)
		q := strings.TrimSpace(c.Query("q"))
		items, err := repo.List(c.Request.Context(), product.Query{Q: q, ActiveOnly: true, Limit: limit, Offset: offset})
		if err != nil {
			httpx.Error(c, http.StatusInternalServerError, genericError)
			return
		}
		c.JSON(http.StatusOK, product.ListResponse{Q: q, Limit: limit, Offset: offset, Items: items})
	}
}

func getProductHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := repo.GetByID(c.Request.Context(), c.Param("id"))
		if errors.Is(err, product.ErrNotFound) {
			httpx.Error(c, http.StatusNotFound, "product not found")
			return
		}
		if err != nil {
			httpx.Error(c, http.StatusInternalServerError, genericError)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func getCompanyHandler(repo company.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, err := repo.Get(c.Request.Context())
		if err != nil {
			httpx.Error(c, http.StatusInternalServerError, genericError)
			return
		}
		c.JSON(http.StatusOK, info)
	}
}

// ===== cart =====

// getCartHandler sets X-Cart-Count itself; reads do not notify listeners.
func getCartHandler(carts *cartOpener) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := carts.open(c)
		n, err := s.Count(c.Request.Context())
		if err != nil {
			httpx.Error(c, http.StatusInternalServerError, genericError)
			return
		}
		c.Header(cartCountHeader, strconv.Itoa(n))
		writeCart(c, s)
	}
}

type addItemRequest struct {
	ProductID string   `json:"product_id" binding:"required"`
	Qty       int      `json:"qty"`
	Size      *float64 `json:"size"`
}

// addCartItemHandler prices the line from the catalog, never from the client.
// Out-of-stock products are added as preorders.
func addCartItemHandler(carts *cartOpener, repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.Error(c, http.StatusBadRequest, "product_id is required")
			return
		}
		p, err := repo.GetByID(c.Request.Context(), req.ProductID)
		if errors.Is(err, product.ErrNotFound) {
			httpx.Error(c, http.StatusNotFound, "product not found")
			return
		}
		if err != nil {
			httpx.Error(c, http.StatusInternalServerError, genericError)
			return
		}
		if len(p.Sizes) > 0 && !hasSize(p.Sizes, req.Size) {
			httpx.Error(c, http.StatusBadRequest, "please choose an available size")
			return
		}

		item := cart.Item{
			ID:            p.ID,
			Name:          p.Name,
			Price:         p.EffectivePrice(),
			OriginalPrice: p.DisplayOriginalPrice(),
			Qty:           req.Qty,
			Size:          req.Size,
			IsPreorder:    !p.IsActive,
		}
		if len(p.Images) > 0 {
			item.Image = p.Images[0]
		}

		s := carts.open(c)
		if err := s.Add(c.Request.Context(), item); err != nil {
			httpx.Error(c, http.StatusInternalServerError, genericError)
			return
		}
		writeCart(c, s)
	}
}

func hasSize(sizes []string, size *float64) bool {
	if size == nil {
		return false
	}
	label := strconv.FormatFloat(*size, 'f', -1, 64)
	for _, s := range sizes {
		if strings.TrimSpace(s) == label {
			return true
		}
	}
	return false
}

type updateItemRequest struct {
	Qty  int      `json:"qty"`
	Size *float64 `json:"size"`
}

func updateCartItemHandler(carts *cartOpener) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.Error(c, http.StatusBadRequest, "invalid json")
			return
		}
		s := carts.open(c)
		if err := s.UpdateQuantity(c.Request.Context(), c.Param("id"), cart.ClampQuantity(req.Qty), req.Size); err != nil {
			httpx.Error(c, http.StatusInternalServerError, genericError)
			return
		}
		writeCart(c, s)
	}
}

func removeCartItemHandler(carts *cartOpener) gin.HandlerFunc {
	return func(c *gin.Context) {
		size, err := parseSize(c.Query("size"))
		if err != nil {
			httpx.Error(c, http.StatusBadRequest, "invalid size")
			return
		}
		s := carts.open(c)
		if err := s.Remove(c.Request.Context(), c.Param("id"), size); err != nil {
			httpx.Error(c, http.StatusInternalServerError, genericError)
			return
		}
		writeCart(c, s)
	}
}

func clearCartHandler(carts *cartOpener) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := carts.open(c)
		if err := s.Clear(c.Request.Context()); err != nil {
			httpx.Error(c, http.StatusInternalServerError, genericError)
			return
		}
		writeCart(c, s)
	}
}

// ===== checkout =====

// checkoutHandler places the order for the request's cart. A repeated
// Idempotency-Key is rejected with 409 instead of placing a second order.
func checkoutHandler(carts *cartOpener, placer *order.Placer, idem idempotencyGuard) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.Error(c, http.StatusBadRequest, "invalid json")
			return
		}
		ctx := c.Request.Context()

		var claimed string
		if key := strings.TrimSpace(c.GetHeader("Idempotency-Key")); key != "" {
			claimed = idem.Key("checkout", key)
			seen, err := idem.Seen(ctx, claimed)
			if err != nil {
				httpx.Error(c, http.StatusInternalServerError, genericError)
				return
			}
			if seen {
				httpx.Error(c, http.StatusConflict, "this order was already submitted")
				return
			}
		}

		o, err := placer.Place(ctx, req, carts.open(c))
		if err != nil {
			if claimed != "" {
				_ = idem.Release(ctx, claimed)
			}
			var verr *order.ValidationError
			if errors.As(err, &verr) {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "please check the highlighted fields", "fields": verr.Fields})
				return
			}
			httpx.Error(c, http.StatusInternalServerError, genericError)
			return
		}
		c.JSON(http.StatusCreated, o)
	}
}
