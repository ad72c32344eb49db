package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ClaimsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "keymint_claims_total",
		Help: "Key claim attempts by result.",
	}, []string{"result"})

	KeysIssuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "keymint_keys_issued_total",
		Help: "License keys issued since process start.",
	})

	KeysExpired = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "keymint_keys_expired",
		Help: "Claimed keys currently past their expiry, as of the last scan.",
	})
)
