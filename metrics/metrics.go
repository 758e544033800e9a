// Package metrics holds the Prometheus collectors of the bot.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RestrictionsCreated - voice restrictions written, by invocation mode.
	RestrictionsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modbot_voice_restrictions_created_total",
			Help: "Voice restrictions created per mode",
		},
		[]string{"mode"},
	)

	// RestrictionsActive - entries currently held by the restriction store.
	RestrictionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "modbot_voice_restrictions_active",
		Help: "Voice restrictions currently in force",
	})

	// Evictions - members disconnected from a restricted channel.
	Evictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "modbot_voice_evictions_total",
		Help: "Members disconnected because of an active voice restriction",
	})

	// EvictionFailures - disconnect attempts the platform refused, by reason.
	EvictionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modbot_voice_eviction_failures_total",
			Help: "Failed disconnects per reason",
		},
		[]string{"reason"},
	)

	// ModerationActions - other moderation actions taken by the bot.
	ModerationActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modbot_moderation_actions_total",
			Help: "Moderation actions per type",
		},
		[]string{"action"},
	)

	// Commands - command invocations by name.
	Commands = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modbot_commands_total",
			Help: "Command invocations per name",
		},
		[]string{"command"},
	)
)
