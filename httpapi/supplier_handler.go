package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation"
	"go.uber.org/zap"

	"supplierapi/supplier"
)

// SupplierHandler exposes CRUD endpoints for suppliers.
type SupplierHandler struct {
	suppliers *supplier.Service
	logger    *zap.Logger
}

// NewSupplierHandler creates the supplier handler set.
func NewSupplierHandler(service *supplier.Service, logger *zap.Logger) *SupplierHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SupplierHandler{suppliers: service, logger: logger}
}

// List handles GET /fornecedores.
func (h *SupplierHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))

	records, total, err := h.suppliers.List(c.Request.Context(), supplier.ListFilters{
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		h.respondSupplierError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": records, "total": total})
}

// Get handles GET /fornecedores/:id.
func (h *SupplierHandler) Get(c *gin.Context) {
	record, err := h.suppliers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondSupplierError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// Create handles POST /fornecedores.
func (h *SupplierHandler) Create(c *gin.Context) {
	var params supplier.Params
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	record, err := h.suppliers.Create(c.Request.Context(), params)
	if err != nil {
		h.respondSupplierError(c, err)
		return
	}

	c.Header("Location", "/fornecedores/"+record.ID)
	c.JSON(http.StatusCreated, record)
}

// Update handles PUT /fornecedores/:id.
func (h *SupplierHandler) Update(c *gin.Context) {
	var params supplier.Params
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if _, err := h.suppliers.Update(c.Request.Context(), c.Param("id"), params); err != nil {
		h.respondSupplierError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Delete handles DELETE /fornecedores/:id.
func (h *SupplierHandler) Delete(c *gin.Context) {
	if err := h.suppliers.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondSupplierError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *SupplierHandler) respondSupplierError(c *gin.Context, err error) {
	var fieldErrs validation.Errors
	switch {
	case errors.As(err, &fieldErrs):
		c.JSON(http.StatusBadRequest, gin.H{"errors": fieldErrs})
	case errors.Is(err, supplier.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "supplier not found"})
	default:
		h.logger.Error("supplier request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
