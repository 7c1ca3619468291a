package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics набор Prometheus метрик сервиса.
// Все методы безопасны для nil-получателя: при выключенных метриках ничего не делают.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBQueryDuration    *prometheus.HistogramVec
	DBQueryErrors      *prometheus.CounterVec
	DBOpenConnections  *prometheus.GaugeVec
	DBInUseConnections *prometheus.GaugeVec
	DBIdleConnections  *prometheus.GaugeVec

	BookingCommits       *prometheus.CounterVec
	AvailabilityQueries  *prometheus.CounterVec
	RulesCacheRequests   *prometheus.CounterVec
	NotificationsDropped *prometheus.CounterVec

	service string
}

// New создает метрики и регистрирует их в глобальном реестре Prometheus
func New(serviceName string) *Metrics {
	return NewWithRegisterer(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegisterer создает метрики и регистрирует их в переданном реестре
func NewWithRegisterer(serviceName string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		service: serviceName,
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"service", "method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"service", "method", "path"}),
		DBQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"service", "operation"}),
		DBQueryErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "db_query_errors_total",
			Help: "Total number of failed database queries",
		}, []string{"service", "operation"}),
		DBOpenConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_open_connections",
			Help: "Number of established connections",
		}, []string{"service"}),
		DBInUseConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_in_use_connections",
			Help: "Number of connections currently in use",
		}, []string{"service"}),
		DBIdleConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_idle_connections",
			Help: "Number of idle connections",
		}, []string{"service"}),
		BookingCommits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_commits_total",
			Help: "Booking commit attempts by result",
		}, []string{"service", "result"}),
		AvailabilityQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "availability_queries_total",
			Help: "Availability queries by outcome",
		}, []string{"service", "outcome"}),
		RulesCacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rules_cache_requests_total",
			Help: "Schedule rules cache lookups by result",
		}, []string{"service", "result"}),
		NotificationsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_dropped_total",
			Help: "Booking events dropped because the dispatch queue was full",
		}, []string{"service"}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DBQueryDuration,
		m.DBQueryErrors,
		m.DBOpenConnections,
		m.DBInUseConnections,
		m.DBIdleConnections,
		m.BookingCommits,
		m.AvailabilityQueries,
		m.RulesCacheRequests,
		m.NotificationsDropped,
	)

	return m
}

func (m *Metrics) Service() string {
	if m == nil {
		return ""
	}
	return m.service
}

// ObserveHTTPRequest фиксирует завершенный HTTP запрос
func (m *Metrics) ObserveHTTPRequest(method, path, status string, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(m.service, method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(m.service, method, path).Observe(seconds)
}

// ObserveDBQuery фиксирует выполнение запроса к БД
func (m *Metrics) ObserveDBQuery(operation string, seconds float64, failed bool) {
	if m == nil {
		return
	}
	m.DBQueryDuration.WithLabelValues(m.service, operation).Observe(seconds)
	if failed {
		m.DBQueryErrors.WithLabelValues(m.service, operation).Inc()
	}
}

// SetDBPoolStats обновляет метрики пула соединений
func (m *Metrics) SetDBPoolStats(open, inUse, idle int) {
	if m == nil {
		return
	}
	m.DBOpenConnections.WithLabelValues(m.service).Set(float64(open))
	m.DBInUseConnections.WithLabelValues(m.service).Set(float64(inUse))
	m.DBIdleConnections.WithLabelValues(m.service).Set(float64(idle))
}

// IncBookingCommit result: created, replayed, slot_unavailable, invalid, error
func (m *Metrics) IncBookingCommit(result string) {
	if m == nil {
		return
	}
	m.BookingCommits.WithLabelValues(m.service, result).Inc()
}

// IncAvailabilityQuery outcome: open, closed, full, invalid, error
func (m *Metrics) IncAvailabilityQuery(outcome string) {
	if m == nil {
		return
	}
	m.AvailabilityQueries.WithLabelValues(m.service, outcome).Inc()
}

// IncRulesCache result: hit, miss, error
func (m *Metrics) IncRulesCache(result string) {
	if m == nil {
		return
	}
	m.RulesCacheRequests.WithLabelValues(m.service, result).Inc()
}

func (m *Metrics) IncNotificationDropped() {
	if m == nil {
		return
	}
	m.NotificationsDropped.WithLabelValues(m.service).Inc()
}
