package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "qaforum"

var (
	storeMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "store",
			Name:      "mutations_total",
			Help:      "Rows changed by store mutations",
		},
		[]string{"table", "op"},
	)
	feedNotifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "feed",
			Name:      "notifications_total",
			Help:      "Change notifications published per table",
		},
		[]string{"table", "origin"}, // origin: local | remote
	)
	creditsIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "moderation",
			Name:      "credits_total",
			Help:      "Participation points credited to students",
		},
		[]string{"mode"}, // single | bulk
	)
	viewRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "view",
			Name:      "refreshes_total",
			Help:      "Full-table refetches performed by live views",
		},
		[]string{"table", "result"}, // ok | error
	)
	sseClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "event_streams",
			Help:      "Open server-sent event streams",
		},
	)
)
