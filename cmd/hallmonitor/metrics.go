package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var trackedWindows = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "hallmonitor_tracked_activity_windows",
	Help: "Number of users with an in-memory activity window",
})

var lastEventAge = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "hallmonitor_last_message_age_sec",
	Help: "Seconds since the most recent message was received from the gateway",
})
