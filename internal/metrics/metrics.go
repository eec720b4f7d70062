package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeProcessed = "processed"
	OutcomeDropped   = "dropped"
	OutcomeRequeued  = "requeued"
)

// EventsTotal считает сообщения по финальному исходу обработки.
// Дубликаты в dropped не попадают: повтор доставки — это processed.
var EventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cargo_rewards_events_total",
	Help: "Queue messages by queue and final outcome.",
}, []string{"queue", "outcome"})

// ScoresGranted считает фактические вставки в courier_scores по источнику.
var ScoresGranted = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cargo_rewards_scores_granted_total",
	Help: "Score grants actually written, by source.",
}, []string{"source"})

func Handler() http.Handler { return promhttp.Handler() }
