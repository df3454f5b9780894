package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/Skotchmaster/pdv/internal/handlers"
	"github.com/Skotchmaster/pdv/internal/jwtmiddleware"
)

type Deps struct {
	DB             *gorm.DB
	JWTSecret      []byte
	AuthHandler    *handlers.AuthHandler
	ProductHandler *handlers.ProductHandler
	SaleHandler    *handlers.SaleHandler
	ReportHandler  *handlers.ReportHandler
	SearchHandler  *handlers.SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		sqlDB, err := d.DB.DB()
		if err != nil {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := sqlDB.PingContext(ctx); err != nil {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	auth := e.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)

	api := e.Group("", jwtmiddleware.RequireToken(d.JWTSecret))

	products := api.Group("/products")
	products.GET("", d.ProductHandler.GetProducts)
	products.POST("", d.ProductHandler.CreateProduct)
	products.PUT("/:id", d.ProductHandler.UpdateProduct)
	products.DELETE("/:id", d.ProductHandler.DeleteProduct)
	if d.SearchHandler != nil {
		products.GET("/search", d.SearchHandler.Search)
	}

	sales := api.Group("/sales")
	sales.POST("", d.SaleHandler.CreateSale)
	sales.GET("", d.SaleHandler.ListSales)
	sales.GET("/:id", d.SaleHandler.GetSale)

	api.GET("/reports/sales-by-day", d.ReportHandler.SalesByDay)
}
