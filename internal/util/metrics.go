package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UsersRegisteredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pdv_users_registered_total",
		Help: "Total number of registered users",
	})

	LoginsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pdv_logins_total",
		Help: "Total number of successful logins",
	})

	ProductsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pdv_products_created_total",
		Help: "Total number of products created",
	})

	SalesRecordedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pdv_sales_recorded_total",
		Help: "Total number of sales recorded",
	})

	SalesFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pdv_sales_failed_total",
		Help: "Total number of failed sale recordings",
	}, []string{"reason"})
)
