package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/geezshoe/internal/admin"
	"github.com/MikeMC777/geezshoe/internal/company"
	"github.com/MikeMC777/geezshoe/internal/customer"
	"github.com/MikeMC777/geezshoe/internal/httpx"
	"github.com/MikeMC777/geezshoe/internal/identity"
	"github.com/MikeMC777/geezshoe/internal/order"
	"github.com/MikeMC777/geezshoe/internal/product"
	"github.com/MikeMC777/geezshoe/internal/report"
	"github.com/MikeMC777/geezshoe/internal/sales"
	"github.com/MikeMC777/geezshoe/internal/storage"
)

const (
	genericError   = "something went wrong, please try again"
	maxUploadBytes = 5 << 20
	exportPageSize = 100
	userKey        = "user"
)

// uploader stores admin-uploaded images.
type uploader interface {
	Upload(ctx context.Context, folder, filename string, r io.Reader) (string, error)
	PublicURL(key string) string
}

type adminDeps struct {
	orders    order.Repository
	fulfiller *order.Fulfiller
	canceller *order.Canceller
	products  *product.Service
	company   *company.Service
	sales     sales.Repository
	customers customer.Repository
	bucket    uploader
	admins    *admin.Service
	identity  *identity.Service
	log       *slog.Logger
}

func registerRoutes(r *gin.Engine, d adminDeps) {
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	r.POST("/auth/sign-in", signInHandler(d.identity))
	r.GET("/auth/me", requireAdmin(d.identity), meHandler())

	g := r.Group("/admin", requireAdmin(d.identity))
	g.GET("/orders", listOrdersHandler(d.orders))
	g.POST("/orders/:id/fulfill", fulfillOrderHandler(d.orders, d.fulfiller, d.log))
	g.DELETE("/orders/:id", cancelOrderHandler(d.canceller))

	g.GET("/products", listAllProductsHandler(d.products))
	g.POST("/products", createProductHandler(d.products))
	g.PUT("/products/:id", updateProductHandler(d.products))
	g.DELETE("/products/:id", deleteProductHandler(d.products))
	g.GET("/products/export", exportProductsHandler(d.products))

	g.GET("/sales", listSalesHandler(d.sales))
	g.GET("/sales/export", exportSalesHandler(d.sales))
	g.GET("/customers", listCustomersHandler(d.customers))
	g.GET("/customers/export", exportCustomersHandler(d.customers))

	g.PUT("/company", updateCompanyHandler(d.company))
	g.POST("/uploads/:folder", uploadHandler(d.bucket))

	// Account management checks the requester's role itself.
	api := r.Group("/api/admins")
	api.POST("", createAdminHandler(d.admins))
	api.PUT("", editAdminHandler(d.admins))
	api.GET("", listAdminsHandler(d.admins))
	api.DELETE("", deleteAdminHandler(d.admins))
	api.PUT("/password", resetAdminPasswordHandler(d.admins))
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

// ===== auth =====

// requireAdmin resolves the bearer token to a main or normal admin.
func requireAdmin(ids *identity.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			httpx.Error(c, http.StatusUnauthorized, "missing bearer token")
			return
		}
		u, err := ids.UserFromToken(c.Request.Context(), strings.TrimSpace(raw))
		if errors.Is(err, identity.ErrInvalidToken) {
			httpx.Error(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		if err != nil {
			httpx.Error(c, http.StatusInternalServerError, genericError)
			return
		}
		if u.Role != admin.RoleMain && u.Role != admin.RoleNormal {
			httpx.Error(c, http.StatusForbidden, "admin access required")
			return
		}
		c.Set(userKey, u)
		c.Next()
	}
}

type signInRequest struct {
	Email    string `json:"email"    binding:"required"`
	Password string `json:"password" binding:"required"`
}

// signInHandler godoc
// @Summary  Sign in with email and password
// @Tags     auth
// @Accept   json
// @Produce  json
// @Success  200
// @Failure  401 {object} httpx.HTTPError
// @Router   /auth/sign-in [post]
func signInHandler(ids *identity.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req signInRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.Error(c, http.StatusBadRequest, "email and password are required")
			return
		}
		token, u, err := ids.SignIn(c.Request.Context(), req.Email, req.Password)
		if errors.Is(err, identity.ErrInvalidCredentials) {
			httpx.Error(c, http.StatusUnauthorized, "invalid email or password")
			return
		}
		if err != nil {
			httpx.Error(c, http.StatusInternalServerError, genericError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token, "user": u})
	}
}

func meHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, c.MustGet(userKey))
	}
}

// ===== orders =====

// listOrdersHandler godoc
// @Summary  List pending orders, newest first
// @Tags     orders
// @Produce  json
// @Param    limit  query int false "page size"
// @Param    offset query int false "page offset"
// @Success  200 {object} order.ListResponse
// @Router   /admin/orders [get]
func listOrdersHandler(repo order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset := pageParams(c)
		items, err := repo.List(c.Request.Context(), limit, offset)
		if err != nil {
			httpx.Error(c, http.StatusInternalServerError, genericError)
			return
		}
		c.JSON(http.StatusOK, order.ListResponse{Limit: limit, Offset: offset, Items: items})
	}
}

// fulfillOrderHandler godoc
// @Summary  Mark an order as sold
// @Tags     orders
// @Produce  json
// @Param    id path string true "order id"
// @Success  200 {object} order.Receipt
// @Failure  404 {object} httpx.HTTPError
// @Router   /admin/orders/{id}/fulfill [post]
func fulfillOrderHandler(repo order.Repository, f *order.Fulfiller, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		o, err := repo.GetByID(ctx, c.Param("id"))
		if errors.Is(err, order.ErrNotFound) {
			httpx.Error(c, http.StatusNotFound, "order not found")
			return
		}
		if err != nil {
			httpx.Error(c, http.StatusInternalServerError, genericError)
			return
		}
		receipt, err := f.Fulfill(ctx, o)
		switch {
		case errors.Is(err, order.ErrNotFound):
			httpx.Error(c, http.StatusNotFound, "order not found")
			return
		case errors.Is(err, order.ErrMalformed):
			log.Error("malformed order", "order_id", o.ID)
			httpx.Error(c, http.StatusUnprocessableEntity, "order lines are inconsistent")
			return
		case err != nil:
			httpx.Error(c, http.StatusInternalServerError, genericError)
			return
		}
		c.JSON(http.StatusOK, receipt)
	}
}

// cancelOrderHandler godoc
// @Summary  Cancel an order
// @Tags     orders
// @Param    id path string true "order id"
// @Success  204
// @Failure  404 {object} httpx.HTTPError
// @Router   /admin/orders/{id} [delete]
func cancelOrderHandler(cn *order.Canceller) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := cn.Cancel(c.Request.Context(), c.Param("id"))
		if errors.Is(err, order.ErrNotFound) {
			httpx.Error(c, http.StatusNotFound, "order not found")
			return
		}
		if err != nil {
			httpx.Error(c, http.StatusInternalServerError, genericError)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// ===== products =====

// listAllProductsHandler godoc
// @Summary  List all products
// @Tags     products
// @Produce  json
// @Param    q      query string false "search"
// @Param    limit  query int    false "page size"
// @Param    offset query int    false "page offset"
// @Success  200 {object} product.ListResponse
// @Router   /admin/products [get]
func listAllProductsHandler(svc *product.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset := pageParams(c)
		q := strings.TrimSpace(c.Query("q"))
		items, err := svc.List(c.Request.Context(), product.Query{Q: q, Limit: limit, Offset: offset})
		if err != nil {
			httpx.Error(c, http.StatusInternalServerError, genericError)
			return
		}
		c.JSON(http.StatusOK, product.ListResponse{Q: q, Limit: limit, Offset: offset, Items: items})
	}
}

func productError(c *gin.Context, err error) {
	var verr *product.ValidationError
	switch {
	case errors.As(err, &verr):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid product", "fields": verr.Fields})
	case errors.Is(err, product.ErrNotFound):
		httpx.Error(c, http.StatusNotFound, "product not found")
	default:
		httpx.Error(c, http.StatusInternalServerError, genericError)
	}
}

// createProductHandler godoc
// @Summary  Create a product
// @Tags     products
// @Accept   json
// @Produce  json
// @Param    body body product.ProductRequest true "product"
// @Success  201 {object} product.Product
// @Failure  400 {object} httpx.HTTPError
// @Router   /admin/products [post]
func createProductHandler(svc *product.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req product.ProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.Error(c, http.StatusBadRequest, "invalid json")
			return
		}
		p := req.ToProduct("")
		if err := svc.Create(c.Request.Context(), p); err != nil {
			productError(c, err)
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

// updateProductHandler godoc
// @Summary  Replace a product
// @Tags     products
// @Accept   json
// @Produce  json
// @Param    id   path string                 true "product id"
// @Param    body body product.ProductRequest true "product"
// @Success  200 {object} product.Product
// @Failure  400 {object} httpx.HTTPError
// @Failure  404 {object} httpx.HTTPError
// @Router   /admin/products/{id} [put]
func updateProductHandler(svc *product.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req product.ProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.Error(c, http.StatusBadRequest, "invalid json")
			return
		}
		p := req.ToProduct(c.Param("id"))
		if err := svc.Update(c.Request.Context(), p); err != nil {
			productError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// deleteProductHandler godoc
// @Summary  Delete a product and its images
// @Tags     products
// @Param    id path string true "product id"
// @Success  204
// @Failure  404 {object} httpx.HTTPError
// @Router   /admin/products/{id} [delete]
func deleteProductHandler(svc *product.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
			productError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// ===== reports =====

func attachment(c *gin.Context, name string) {
	stamp := time.Now().Format("2006-01-02")
	c.Header("Content-Type", report.ContentType)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-%s.xlsx"`, name, stamp))
	c.Status(http.StatusOK)
}

func exportProductsHandler(svc *product.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var all []product.Product
		for offset := 0; ; offset += exportPageSize {
			page, err := svc.List(c.Request.Context(), product.Query{Limit: exportPageSize, Offset: offset})
			if err != nil {
				httpx.Error(c, http.StatusInternalServerError, genericError)
				return
			}
			all = append(all, page...)
			if len(page) < exportPageSize {
				break
			}
		}
		attachment(c, "products")
		if err := report.WriteProducts(c.Writer, all); err != nil {
			_ = c.Error(err)
		}
	}
}

func listSalesHandler(repo sales.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := repo.List(c.Request.Context())
		if err != nil {
			httpx.Error(c, http.StatusInternalServerError, genericError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": rows})
	}
}

func exportSalesHandler(repo sales.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := repo.List(c.Request.Context())
		if err != nil {
			httpx.Error(c, http.StatusInternalServerError, genericError)
			return
		}
		attachment(c, "sales")
		if err := report.WriteSales(c.Writer, rows); err != nil {
			_ = c.Error(err)
		}
	}
}

func listCustomersHandler(repo customer.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset := pageParams(c)
		rows, err := repo.List(c.Request.Context(), limit, offset)
		if err != nil {
			httpx.Error(c, http.StatusInternalServerError, genericError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"limit": limit, "offset": offset, "items": rows})
	}
}

func exportCustomersHandler(repo customer.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var all []customer.Customer
		for offset := 0; ; offset += exportPageSize {
			page, err := repo.List(c.Request.Context(), exportPageSize, offset)
			if err != nil {
				httpx.Error(c, http.StatusInternalServerError, genericError)
				return
			}
			all = append(all, page...)
			if len(page) < exportPageSize {
				break
			}
		}
		attachment(c, "customers")
		if err := report.WriteCustomers(c.Writer, all); err != nil {
			_ = c.Error(err)
		}
	}
}

// ===== company & media =====

// updateCompanyHandler godoc
// @Summary  Save company info
// @Tags     company
// @Accept   json
// @Produce  json
// @Param    body body company.Info true "company info"
// @Success  200 {object} company.Info
// @Failure  400 {object} httpx.HTTPError
// @Router   /admin/company [put]
func updateCompanyHandler(svc *company.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in company.Info
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.Error(c, http.StatusBadRequest, "invalid json")
			return
		}
		err := svc.Update(c.Request.Context(), &in)
		if errors.Is(err, company.ErrInvalid) {
			httpx.Error(c, http.StatusBadRequest, err.Error())
			return
		}
		if err != nil {
			httpx.Error(c, http.StatusInternalServerError, genericError)
			return
		}
		c.JSON(http.StatusOK, in)
	}
}

// uploadHandler godoc
// @Summary  Upload an image into products or promotions
// @Tags     media
// @Accept   multipart/form-data
// @Param    folder path     string true "products or promotions"
// @Param    file   formData file   true "image"
// @Success  201
// @Failure  400 {object} httpx.HTTPError
// @Router   /admin/uploads/{folder} [post]
func uploadHandler(b uploader) gin.HandlerFunc {
	return func(c *gin.Context) {
		fh, err := c.FormFile("file")
		if err != nil {
			httpx.Error(c, http.StatusBadRequest, "file is required")
			return
		}
		if fh.Size > maxUploadBytes {
			httpx.Error(c, http.StatusBadRequest, "file is too large")
			return
		}
		f, err := fh.Open()
		if err != nil {
			httpx.Error(c, http.StatusBadRequest, "unreadable file")
			return
		}
		defer f.Close()

		key, err := b.Upload(c.Request.Context(), c.Param("folder"), fh.Filename, f)
		if errors.Is(err, storage.ErrBadFolder) || errors.Is(err, storage.ErrBadExtension) {
			httpx.Error(c, http.StatusBadRequest, err.Error())
			return
		}
		if err != nil {
			httpx.Error(c, http.StatusInternalServerError, genericError)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"key": key, "url": b.PublicURL(key)})
	}
}

// ===== admin accounts =====

func adminError(c *gin.Context, err error) {
	var verr *admin.ValidationError
	switch {
	case errors.Is(err, admin.ErrForbidden):
		httpx.Error(c, http.StatusForbidden, err.Error())
	case errors.As(err, &verr):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error(), "fields": verr.Fields})
	case errors.Is(err, admin.ErrNotFound):
		httpx.Error(c, http.StatusNotFound, err.Error())
	default:
		httpx.Error(c, http.StatusInternalServerError, genericError)
	}
}

// createAdminHandler godoc
// @Summary  Create a normal admin
// @Tags     admins
// @Accept   json
// @Produce  json
// @Param    body body admin.CreateRequest true "new admin"
// @Success  200
// @Failure  400 {object} httpx.HTTPError
// @Failure  403 {object} httpx.HTTPError
// @Router   /api/admins [post]
func createAdminHandler(svc *admin.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req admin.CreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.Error(c, http.StatusBadRequest, "invalid json")
			return
		}
		a, err := svc.Create(c.Request.Context(), req)
		if err != nil {
			adminError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "admin": a})
	}
}

func editAdminHandler(svc *admin.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req admin.EditRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.Error(c, http.StatusBadRequest, "invalid json")
			return
		}
		a, err := svc.Edit(c.Request.Context(), req)
		if err != nil {
			adminError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "admin": a})
	}
}

func listAdminsHandler(svc *admin.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		accounts, err := svc.List(c.Request.Context(), c.Query("requesterId"))
		if err != nil {
			adminError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"admins": accounts})
	}
}

func deleteAdminHandler(svc *admin.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Query("requesterId"), c.Query("id")); err != nil {
			adminError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

func resetAdminPasswordHandler(svc *admin.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req admin.ResetPasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.Error(c, http.StatusBadRequest, "invalid json")
			return
		}
		if err := svc.ResetPassword(c.Request.Context(), req); err != nil {
			adminError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
