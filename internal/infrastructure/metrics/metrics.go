package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the music service
type Metrics struct {
	// Channel reconciliation metrics
	ReconcileCycles   *prometheus.CounterVec
	ChannelsCreated   prometheus.Counter
	ChannelsUpdated   prometheus.Counter
	ChannelsDeleted   prometheus.Counter
	TrackedChannels   prometheus.Gauge
	ReconcileDuration prometheus.Histogram

	// History sync metrics
	HistoryPagesFetched  prometheus.Counter
	HistoryMessagesSaved prometheus.Counter
	HistorySyncErrors    prometheus.Counter
	HistorySyncDuration  prometheus.Histogram

	// Realtime ingest metrics
	RealtimeMessages    *prometheus.CounterVec
	RealtimeQueueLength prometheus.Gauge

	// Streaming metrics
	StreamRequests    *prometheus.CounterVec
	StreamBytesServed prometheus.Counter
	StreamRetryWaits  prometheus.Counter
	StreamTruncated   prometheus.Counter

	// Telegram download metrics
	DownloadsStarted   prometheus.Counter
	DownloadsCompleted prometheus.Counter
	DownloadsFailed    prometheus.Counter
	TelegramFloodWaits prometheus.Counter

	// Kafka metrics
	KafkaMessagesProduced prometheus.Counter
	KafkaProduceErrors    *prometheus.CounterVec
	KafkaProduceDuration  prometheus.Histogram

	// Archive metrics
	ArchiveUploads *prometheus.CounterVec
}

var (
	// DefaultMetrics is the default metrics instance
	DefaultMetrics *Metrics
	once           sync.Once
)

// GetDefaultMetrics returns the singleton metrics instance
func GetDefaultMetrics() *Metrics {
	once.Do(func() {
		DefaultMetrics = NewMetrics()
	})
	return DefaultMetrics
}

// NewMetrics creates a new Metrics instance registered in the default registry
func NewMetrics() *Metrics {
	return &Metrics{
		ReconcileCycles: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "music_service_reconcile_cycles_total",
				Help: "Total number of channel reconciliation cycles by result",
			},
			[]string{"result"},
		),
		ChannelsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "music_service_channels_created_total",
			Help: "Total number of channel records created",
		}),
		ChannelsUpdated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "music_service_channels_updated_total",
			Help: "Total number of channel records updated",
		}),
		ChannelsDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "music_service_channels_deleted_total",
			Help: "Total number of channel records removed by reconciliation",
		}),
		TrackedChannels: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "music_service_tracked_channels",
			Help: "Number of channels resolved in the last reconciliation",
		}),
		ReconcileDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "music_service_reconcile_duration_seconds",
			Help:    "Duration of reconciliation cycles in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),

		HistoryPagesFetched: promauto.NewCounter(prometheus.CounterOpts{
			Name: "music_service_history_pages_fetched_total",
			Help: "Total number of history pages fetched",
		}),
		HistoryMessagesSaved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "music_service_history_messages_saved_total",
			Help: "Total number of music messages saved by history sync",
		}),
		HistorySyncErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "music_service_history_sync_errors_total",
			Help: "Total number of failed history syncs",
		}),
		HistorySyncDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "music_service_history_sync_duration_seconds",
			Help:    "Duration of history syncs per chat in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),

		RealtimeMessages: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "music_service_realtime_messages_total",
				Help: "Total number of realtime messages processed by result",
			},
			[]string{"result"},
		),
		RealtimeQueueLength: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "music_service_realtime_queue_length",
			Help: "Number of messages waiting in the realtime queue",
		}),

		StreamRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "music_service_stream_requests_total",
				Help: "Total number of stream requests by status code",
			},
			[]string{"status"},
		),
		StreamBytesServed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "music_service_stream_bytes_served_total",
			Help: "Total number of audio bytes written to clients",
		}),
		StreamRetryWaits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "music_service_stream_retry_waits_total",
			Help: "Total number of waits for download progress",
		}),
		StreamTruncated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "music_service_stream_truncated_total",
			Help: "Total number of streams that ended before the requested length",
		}),

		DownloadsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "music_service_downloads_started_total",
			Help: "Total number of file downloads started",
		}),
		DownloadsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "music_service_downloads_completed_total",
			Help: "Total number of file downloads completed",
		}),
		DownloadsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "music_service_downloads_failed_total",
			Help: "Total number of failed file downloads",
		}),
		TelegramFloodWaits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "music_service_telegram_flood_waits_total",
			Help: "Total number of FLOOD_WAIT responses from Telegram",
		}),

		KafkaMessagesProduced: promauto.NewCounter(prometheus.CounterOpts{
			Name: "music_service_kafka_messages_produced_total",
			Help: "Total number of messages produced to Kafka",
		}),
		KafkaProduceErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "music_service_kafka_produce_errors_total",
				Help: "Total number of Kafka produce errors",
			},
			[]string{"error_type"},
		),
		KafkaProduceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "music_service_kafka_produce_duration_seconds",
			Help:    "Duration of Kafka produce operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),

		ArchiveUploads: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "music_service_archive_uploads_total",
				Help: "Total number of archive uploads by result",
			},
			[]string{"result"},
		),
	}
}

// RecordReconcile records a reconciliation cycle
func (m *Metrics) RecordReconcile(result string, duration float64) {
	m.ReconcileCycles.WithLabelValues(result).Inc()
	m.ReconcileDuration.Observe(duration)
}

// RecordChannelChanges records created, updated and deleted channel counts
func (m *Metrics) RecordChannelChanges(created, updated, deleted, tracked int) {
	m.ChannelsCreated.Add(float64(created))
	m.ChannelsUpdated.Add(float64(updated))
	m.ChannelsDeleted.Add(float64(deleted))
	m.TrackedChannels.Set(float64(tracked))
}

// RecordHistorySync records a finished history sync
func (m *Metrics) RecordHistorySync(pages, saved int, duration float64) {
	m.HistoryPagesFetched.Add(float64(pages))
	if saved > 0 {
		m.HistoryMessagesSaved.Add(float64(saved))
	}
	m.HistorySyncDuration.Observe(duration)
}

// RecordHistorySyncError records a failed history sync
func (m *Metrics) RecordHistorySyncError() {
	m.HistorySyncErrors.Inc()
}

// RecordRealtimeMessage records the outcome of one realtime message
func (m *Metrics) RecordRealtimeMessage(result string) {
	if result == "" {
		result = "unknown"
	}
	m.RealtimeMessages.WithLabelValues(result).Inc()
}

// UpdateQueueLength sets the realtime queue gauge
func (m *Metrics) UpdateQueueLength(length int) {
	m.RealtimeQueueLength.Set(float64(length))
}

// RecordStreamRequest records a stream request by status code
func (m *Metrics) RecordStreamRequest(status int) {
	m.StreamRequests.WithLabelValues(strconv.Itoa(status)).Inc()
}

// RecordStreamResult records bytes served and whether the body was cut short
func (m *Metrics) RecordStreamResult(written int64, truncated bool) {
	m.StreamBytesServed.Add(float64(written))
	if truncated {
		m.StreamTruncated.Inc()
	}
}

// RecordStreamWait records a wait for download progress
func (m *Metrics) RecordStreamWait() {
	m.StreamRetryWaits.Inc()
}

// RecordDownload records a download state transition: started, completed or failed
func (m *Metrics) RecordDownload(state string) {
	switch state {
	case "started":
		m.DownloadsStarted.Inc()
	case "completed":
		m.DownloadsCompleted.Inc()
	case "failed":
		m.DownloadsFailed.Inc()
	}
}

// RecordFloodWait records a FLOOD_WAIT from Telegram
func (m *Metrics) RecordFloodWait() {
	m.TelegramFloodWaits.Inc()
}

// RecordKafkaMessage records a successful Kafka message production
func (m *Metrics) RecordKafkaMessage(duration float64) {
	m.KafkaMessagesProduced.Inc()
	m.KafkaProduceDuration.Observe(duration)
}

// RecordKafkaError records a Kafka production error
func (m *Metrics) RecordKafkaError(errorType string) {
	if errorType == "" {
		errorType = "unknown"
	}
	m.KafkaProduceErrors.WithLabelValues(errorType).Inc()
}

// RecordArchiveUpload records an archive upload result
func (m *Metrics) RecordArchiveUpload(result string) {
	m.ArchiveUploads.WithLabelValues(result).Inc()
}
