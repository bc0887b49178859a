package consumer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var messagesReceived = promauto.NewCounter(prometheus.CounterOpts{
	Name: "hallmonitor_discord_messages_received",
	Help: "Number of message events received from the discord gateway",
})

var messagesSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "hallmonitor_discord_messages_skipped",
	Help: "Number of message events skipped before reaching the engine",
}, []string{"reason"})
