package http

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	registrationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "registry_registrations_total",
		Help: "Completed registrations by kind.",
	}, []string{"kind"})

	loginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "registry_logins_total",
		Help: "Successful logins by kind.",
	}, []string{"kind"})

	approvalsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "registry_approvals_total",
		Help: "Accounts moved from pending to approved.",
	})
)
