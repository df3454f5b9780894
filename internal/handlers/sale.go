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

	"github.com/Skotchmaster/pdv/internal/logging"
	"github.com/Skotchmaster/pdv/internal/models"
	"github.com/Skotchmaster/pdv/internal/mykafka"
	"github.com/Skotchmaster/pdv/internal/service"
	"github.com/Skotchmaster/pdv/internal/util"
)

type SaleHandler struct {
	DB       *gorm.DB
	Svc      *service.SaleService
	Producer *mykafka.Producer
}

// SaleDetailRow is one line item of a sale joined with its product name.
type SaleDetailRow struct {
	Quantity    uint    `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	ProductName string  `json:"product_name"`
}

func (h *SaleHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "sale_events", fmt.Sprint(event["sale_id"]), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish failed", "error", err)
	}
}

func (h *SaleHandler) CreateSale(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "sale.create")

	var req service.SaleInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	saleID, err := h.Svc.RecordSale(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			util.SalesFailedTotal.WithLabelValues("validation").Inc()
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrNotFound):
			util.SalesFailedTotal.WithLabelValues("not_found").Inc()
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInsufficientStock):
			util.SalesFailedTotal.WithLabelValues("insufficient_stock").Inc()
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			util.SalesFailedTotal.WithLabelValues("internal").Inc()
			l.Error("create_sale_error", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "could not record sale")
		}
	}

	util.SalesRecordedTotal.Inc()
	h.publish(c, map[string]any{
		"type":         "sale_recorded",
		"sale_id":      saleID,
		"total_amount": req.TotalAmount,
		"items":        len(req.Items),
	})

	return c.JSON(http.StatusCreated, echo.Map{"sale_id": saleID})
}

func (h *SaleHandler) ListSales(c echo.Context) error {
	ctx := c.Request().Context()

	var sales []models.Sale
	if err := h.DB.WithContext(ctx).Order("created_at DESC").Find(&sales).Error; err != nil {
		logging.FromContext(ctx).Error("list_sales_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, sales)
}

func (h *SaleHandler) GetSale(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var rows []SaleDetailRow
	if err := h.DB.WithContext(ctx).
		Table("sale_items").
		Select("sale_items.quantity, sale_items.unit_price, products.name AS product_name").
		Joins("JOIN products ON products.id = sale_items.product_id").
		Where("sale_items.sale_id = ?", id).
		Scan(&rows).Error; err != nil {
		logging.FromContext(ctx).Error("get_sale_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	if len(rows) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "no items found for this sale")
	}

	return c.JSON(http.StatusOK, rows)
}
