package strikestore

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var strikePersistErrors = promauto.NewCounter(prometheus.CounterOpts{
	Name: "automod_strike_persist_errors",
	Help: "Number of failed writes of the strike file",
})
