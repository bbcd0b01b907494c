package telegram

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	commandsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_commands_processed_total",
			Help: "Total number of processed commands by type",
		},
		[]string{"command"}, // start, cancel, help, export_excel, unknown
	)

	messagesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_messages_processed_total",
			Help: "Total number of processed messages by type",
		},
		[]string{"type"}, // text, photo, attachment
	)

	callbacksProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "telegram_callbacks_processed_total",
			Help: "Total number of processed callback queries",
		},
	)

	contributionsRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "telegram_contributions_recorded_total",
			Help: "Total number of contributions committed to the record store",
		},
	)

	exportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_exports_total",
			Help: "Total number of export requests by outcome",
		},
		[]string{"outcome"}, // sent, denied, empty, failed
	)

	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_errors_total",
			Help: "Total number of errors by type",
		},
		[]string{"type"}, // validation, storage, download, send_message, send_document, other
	)

	downloadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "telegram_photo_download_duration_seconds",
			Help:    "Duration of proof photo downloads in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10},
		},
	)
)
