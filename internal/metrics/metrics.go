package metrics

import (
	"github.com/innerlight/circles-backend/internal/eventbus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Domain prometheus counters fed from the store change bus
type Domain struct {
	storeChanges *prometheus.CounterVec
	rewards      *prometheus.CounterVec
	rewardPoints *prometheus.CounterVec
	liveSessions prometheus.Gauge
	dbOpen       prometheus.Gauge
}

// NewDomain registers the domain collectors on reg (prometheus.DefaultRegisterer in main)
func NewDomain(reg prometheus.Registerer) *Domain {
	f := promauto.With(reg)
	return &Domain{
		storeChanges: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "circles_store_changes_total",
				Help: "State changes published by the circle, message and event stores",
			},
			[]string{"topic"},
		),
		rewards: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "circles_rewards_granted_total",
				Help: "Reward grants recorded in the XP ledger",
			},
			[]string{"reason"},
		),
		rewardPoints: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "circles_reward_points_total",
				Help: "XP points granted",
			},
			[]string{"reason"},
		),
		liveSessions: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "circles_live_sessions",
				Help: "Sessions currently held in memory",
			},
		),
		dbOpen: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "circles_db_connections_open",
				Help: "Open connections in the archive database pool",
			},
		),
	}
}

// Attach subscribes to every topic on bus
func (d *Domain) Attach(bus *eventbus.Bus) {
	if bus == nil {
		return
	}
	bus.Subscribe("metrics", eventbus.TopicAll, d.observe)
}

// SetLiveSessions updates the session gauge (sweeper calls this)
func (d *Domain) SetLiveSessions(n int) {
	d.liveSessions.Set(float64(n))
}

// SetDBConnectionsOpen updates the pool gauge (main polls sql.DB stats)
func (d *Domain) SetDBConnectionsOpen(n int) {
	d.dbOpen.Set(float64(n))
}

func (d *Domain) observe(e eventbus.Event) {
	d.storeChanges.WithLabelValues(e.Topic).Inc()

	if e.Topic != eventbus.TopicRewardGranted {
		return
	}
	payload, ok := e.Payload.(map[string]interface{})
	if !ok {
		return
	}
	reason, _ := payload["reason"].(string)
	if reason == "" {
		reason = "unknown"
	}
	d.rewards.WithLabelValues(reason).Inc()
	if amount, ok := payload["amount"].(int); ok {
		d.rewardPoints.WithLabelValues(reason).Add(float64(amount))
	}
}
