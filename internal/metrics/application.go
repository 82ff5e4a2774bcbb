package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ApplicationMetrics tracks chat domain activity
type ApplicationMetrics struct {
	MessagesCreated      prometheus.CounterVec
	ReactionsTotal       prometheus.CounterVec
	GroupsCreated        prometheus.Counter
	GroupMembershipTotal prometheus.CounterVec
	StatusesCreated      prometheus.Counter
	StatusesExpired      prometheus.Counter
	NotificationsCreated prometheus.CounterVec
	AuthEventsTotal      prometheus.CounterVec
	UploadsTotal         prometheus.CounterVec
}

// InitializeApplicationMetrics creates and registers all application metrics.
// Call it through Initialize so registration happens once.
func InitializeApplicationMetrics() *ApplicationMetrics {
	return &ApplicationMetrics{
		MessagesCreated: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chat_messages_created_total",
				Help: "Messages persisted, by kind (direct, group, forward, status_reply)",
			},
			[]string{"kind"},
		),
		ReactionsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chat_reactions_total",
				Help: "Reactions added or removed",
			},
			[]string{"action"},
		),
		GroupsCreated: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "chat_groups_created_total",
				Help: "Groups created",
			},
		),
		GroupMembershipTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chat_group_membership_changes_total",
				Help: "Members added to or removed from groups",
			},
			[]string{"action"},
		),
		StatusesCreated: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "chat_statuses_created_total",
				Help: "Statuses posted",
			},
		),
		StatusesExpired: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "chat_statuses_expired_total",
				Help: "Statuses removed by the expiry sweeper",
			},
		),
		NotificationsCreated: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chat_notifications_created_total",
				Help: "Notifications persisted, by type",
			},
			[]string{"type"},
		),
		AuthEventsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chat_auth_events_total",
				Help: "Signups, logins and password resets by outcome",
			},
			[]string{"event", "outcome"},
		),
		UploadsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chat_uploads_total",
				Help: "Media uploads by kind and backend",
			},
			[]string{"kind", "backend", "status"},
		),
	}
}

// Record helpers used outside the HTTP middleware

func RecordEventEmitted(event string) {
	Get().WSEventsEmitted.WithLabelValues(event).Inc()
}

func RecordEventDropped(event, reason string) {
	Get().WSEventsDropped.WithLabelValues(event, reason).Inc()
}

func SetRealtimeGauges(connections, onlineUsers int) {
	m := Get()
	m.WSActiveConnections.Set(float64(connections))
	m.WSOnlineUsers.Set(float64(onlineUsers))
}

func RecordMessageCreated(kind string) {
	Get().App.MessagesCreated.WithLabelValues(kind).Inc()
}

func RecordReaction(action string) {
	Get().App.ReactionsTotal.WithLabelValues(action).Inc()
}

func RecordGroupCreated() {
	Get().App.GroupsCreated.Inc()
}

func RecordMembershipChange(action string, count int) {
	Get().App.GroupMembershipTotal.WithLabelValues(action).Add(float64(count))
}

func RecordStatusCreated() {
	Get().App.StatusesCreated.Inc()
}

func RecordStatusesExpired(count int) {
	Get().App.StatusesExpired.Add(float64(count))
}

func RecordNotificationCreated(notificationType string) {
	Get().App.NotificationsCreated.WithLabelValues(notificationType).Inc()
}

func RecordAuthEvent(event, outcome string) {
	Get().App.AuthEventsTotal.WithLabelValues(event, outcome).Inc()
}

func RecordUpload(kind, backend string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	Get().App.UploadsTotal.WithLabelValues(kind, backend, status).Inc()
}

func RecordRedisOperation(operation string, duration time.Duration, err error) {
	m := Get()
	status := "success"
	if err != nil {
		status = "error"
	}
	m.RedisOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	m.RedisOperationsTotal.WithLabelValues(operation, status).Inc()
}

func RecordRateLimitExceeded(endpoint, method string) {
	Get().RateLimitExceededTotal.WithLabelValues(endpoint, method).Inc()
}

func RecordError(errorType, endpoint string) {
	Get().ErrorsTotal.WithLabelValues(errorType, endpoint).Inc()
}
