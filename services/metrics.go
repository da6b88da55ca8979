package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "orders_created_total",
		Help:      "Total number of orders committed by checkout",
	})

	OrderItemsSoldTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "order_items_sold_total",
		Help:      "Total quantity of product units sold",
	})

	CheckoutRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "checkout_rejected_total",
		Help:      "Checkouts that did not commit",
	}, []string{"reason"})

	CheckoutLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "storefront",
		Name:      "checkout_commit_seconds",
		Help:      "Latency of the checkout unit of work",
		Buckets:   prometheus.DefBuckets,
	})
)
