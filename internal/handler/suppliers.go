package handler

import (
	"net/http"

	"stockroom/internal/apierror"
	"stockroom/internal/dto"
	"stockroom/internal/middleware"
	"stockroom/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SuppliersHandler struct{ svc service.SupplierService }

func NewSuppliersHandler(svc service.SupplierService) *SuppliersHandler {
	return &SuppliersHandler{svc: svc}
}

func (h *SuppliersHandler) Create(c *gin.Context) {
	var req dto.CreateSupplierRequest
	if !bindAndValidate(c, &req) {
		return
	}
	supplier, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.SupplierDetailResponse{
		Success:  true,
		Message:  "Supplier created successfully",
		Supplier: *supplier,
	})
}

func (h *SuppliersHandler) List(c *gin.Context) {
	var filter dto.SupplierFilter
	if !bindQuery(c, &filter) {
		return
	}
	page, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *SuppliersHandler) Get(c *gin.Context) {
	id, ok := supplierID(c)
	if !ok {
		return
	}
	supplier, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SupplierDetailResponse{Success: true, Supplier: *supplier})
}

func (h *SuppliersHandler) Update(c *gin.Context) {
	id, ok := supplierID(c)
	if !ok {
		return
	}
	var req dto.UpdateSupplierRequest
	if !bindAndValidate(c, &req) {
		return
	}
	supplier, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SupplierDetailResponse{
		Success:  true,
		Message:  "Supplier updated successfully",
		Supplier: *supplier,
	})
}

func (h *SuppliersHandler) Delete(c *gin.Context) {
	id, ok := supplierID(c)
	if !ok {
		return
	}
	removed, err := h.svc.Delete(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SupplierDeleteResponse{
		Success:      true,
		Message:      "Supplier deleted successfully",
		DeletedItems: removed,
	})
}

func supplierID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apierror.NotFound("Supplier not found"))
		return uuid.Nil, false
	}
	return id, true
}
