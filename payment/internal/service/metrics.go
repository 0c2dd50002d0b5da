package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var transfersIssued = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "transfers_issued_total",
		Help:      "Fund transfers issued to category destination accounts.",
	},
	[]string{"category"},
)
