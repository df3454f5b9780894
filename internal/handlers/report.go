package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/pdv/internal/logging"
	"github.com/Skotchmaster/pdv/internal/models"
)

type ReportHandler struct {
	DB *gorm.DB
}

type SalesByDayRow struct {
	Day       string  `json:"day"`
	TotalSold float64 `json:"total_sold"`
}

func (h *ReportHandler) SalesByDay(c echo.Context) error {
	ctx := c.Request().Context()

	// DATE() works on both the Postgres and the sqlite test driver; the
	// VARCHAR cast keeps the day scannable as a plain string on both.
	var rows []SalesByDayRow
	if err := h.DB.WithContext(ctx).
		Model(&models.Sale{}).
		Select("CAST(DATE(created_at) AS VARCHAR) AS day, SUM(total_amount) AS total_sold").
		Group("CAST(DATE(created_at) AS VARCHAR)").
		Order("day DESC").
		Scan(&rows).Error; err != nil {
		logging.FromContext(ctx).Error("sales_by_day_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, rows)
}
