package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/pdv/internal/es"
	"github.com/Skotchmaster/pdv/internal/logging"
	"github.com/Skotchmaster/pdv/internal/models"
	"github.com/Skotchmaster/pdv/internal/mykafka"
	"github.com/Skotchmaster/pdv/internal/util"
)

type ProductHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
	Indexer  *es.ProductIndexer
}

type productRequest struct {
	Name    string  `json:"name"`
	Price   float64 `json:"price"`
	Stock   int     `json:"stock"`
	Barcode *string `json:"barcode"`
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func (h *ProductHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "product_events", fmt.Sprint(event["product_id"]), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish failed", "error", err)
	}
}

func (h *ProductHandler) index(c echo.Context, p *models.Product) {
	if h.Indexer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Indexer.Index(ctx, p); err != nil {
		logging.FromContext(c.Request().Context()).Error("es index failed", "product_id", p.ID, "error", err)
	}
}

func (h *ProductHandler) deindex(c echo.Context, id uint) {
	if h.Indexer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Indexer.Delete(ctx, id); err != nil {
		logging.FromContext(c.Request().Context()).Error("es delete failed", "product_id", id, "error", err)
	}
}

// barcodeTaken reports whether another product already owns the barcode.
// exclude is the id of the product being updated, 0 on create.
func (h *ProductHandler) barcodeTaken(ctx context.Context, barcode *string, exclude uint) (bool, error) {
	if barcode == nil || *barcode == "" {
		return false, nil
	}
	q := h.DB.WithContext(ctx).Model(&models.Product{}).Where("barcode = ?", *barcode)
	if exclude != 0 {
		q = q.Where("id <> ?", exclude)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()

	page := parseIntDefault(c.QueryParam("page"), 1)
	limit := parseIntDefault(c.QueryParam("limit"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, limit)
	search := c.QueryParam("search")

	q := h.DB.WithContext(ctx).Model(&models.Product{})
	if search != "" {
		q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+search+"%")
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		logging.FromContext(ctx).Error("product count failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	var items []models.Product
	if err := q.Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		logging.FromContext(ctx).Error("product list failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data": items,
		"meta": echo.Map{
			"page":        page,
			"limit":       limit,
			"total":       total,
			"total_pages": util.TotalPages(total, limit),
		},
	})
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "product name is required")
	}

	taken, err := h.barcodeTaken(ctx, req.Barcode, 0)
	if err != nil {
		l.Error("create_product_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if taken {
		return echo.NewHTTPError(http.StatusConflict, "barcode already in use")
	}

	prod := models.Product{
		Name:    req.Name,
		Price:   req.Price,
		Stock:   req.Stock,
		Barcode: req.Barcode,
	}
	if err := h.DB.WithContext(ctx).Create(&prod).Error; err != nil {
		l.Error("create_product_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	util.ProductsCreatedTotal.Inc()
	h.publish(c, map[string]any{
		"type":       "product_created",
		"product_id": prod.ID,
		"name":       prod.Name,
	})
	h.index(c, &prod)

	return c.JSON(http.StatusCreated, prod)
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "product name is required")
	}

	var prod models.Product
	if err := h.DB.WithContext(ctx).First(&prod, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		l.Error("update_product_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	taken, err := h.barcodeTaken(ctx, req.Barcode, prod.ID)
	if err != nil {
		l.Error("update_product_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if taken {
		return echo.NewHTTPError(http.StatusConflict, "barcode already in use")
	}

	prod.Name = req.Name
	prod.Price = req.Price
	prod.Stock = req.Stock
	prod.Barcode = req.Barcode

	if err := h.DB.WithContext(ctx).Save(&prod).Error; err != nil {
		l.Error("update_product_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, map[string]any{
		"type":       "product_updated",
		"product_id": prod.ID,
		"name":       prod.Name,
	})
	h.index(c, &prod)

	return c.JSON(http.StatusOK, prod)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	res := h.DB.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		logging.FromContext(ctx).Error("delete_product_error", "status", 500, "error", res.Error)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}

	h.publish(c, map[string]any{
		"type":       "product_deleted",
		"product_id": id,
	})
	h.deindex(c, uint(id))

	return c.NoContent(http.StatusNoContent)
}
