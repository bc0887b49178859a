package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var eventProcessDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name: "automod_event_duration_sec",
	Help: "Total duration of automod event processing",
}, []string{"type"})

var eventProcessCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "automod_event_processed",
	Help: "Number of events processed",
}, []string{"type"})

var eventErrorCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "automod_event_errors",
	Help: "Number of events which failed processing",
}, []string{"type"})

var eventSkipCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "automod_event_skipped",
	Help: "Number of events skipped without evaluation",
}, []string{"reason"})

var verdictCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "automod_verdicts",
	Help: "Number of messages by moderation verdict",
}, []string{"verdict"})

var actionCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "automod_actions",
	Help: "Number of successful enforcement and notification actions",
}, []string{"action"})

var actionErrorCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "automod_action_errors",
	Help: "Number of enforcement and notification actions which failed",
}, []string{"action"})

var circuitBreakerCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "automod_circuit_breaker_trips",
	Help: "Number of actions skipped due to quota circuit breakers",
}, []string{"action"})
