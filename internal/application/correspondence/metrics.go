package correspondence

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "oficialia_transiciones_total",
		Help: "Cambios de estado aplicados por estado destino y resultado.",
	}, []string{"estado", "resultado"})

	correspondenceCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oficialia_correspondencia_registrada_total",
		Help: "Correspondencia registrada con folio asignado.",
	})

	folioRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oficialia_folio_reintentos_total",
		Help: "Reintentos de registro por folio duplicado.",
	})
)
