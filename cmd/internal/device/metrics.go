package device

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "explore_device_events_total",
		Help: "Asynchronous session events received, by kind.",
	}, []string{"kind"})

	metricTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "explore_device_status_transitions_total",
		Help: "Device status transitions applied, by target status.",
	}, []string{"status"})

	metricLiveDevices = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "explore_devices_registered",
		Help: "Devices currently present in the registry.",
	})

	metricMessages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "explore_messages_received_total",
		Help: "Inbound messages buffered across all devices.",
	})

	metricTeardownFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "explore_teardown_failures_total",
		Help: "Session storage teardowns that failed after all retries.",
	})

	metricWebhookFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "explore_webhook_failures_total",
		Help: "Webhook deliveries that failed (never retried).",
	})

	metricReclaimRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "explore_reclaim_retries_total",
		Help: "Session storage deletions retried due to lock contention.",
	})
)

// CountWebhookFailure is the hook handed to the webhook notifier.
func CountWebhookFailure() { metricWebhookFailures.Inc() }

// CountReclaimRetry is the hook handed to the storage reclaimer.
func CountReclaimRetry() { metricReclaimRetries.Inc() }
