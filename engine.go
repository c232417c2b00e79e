package crewauth

import (
	"time"

	"github.com/MrEthical07/crewauth/internal/flows"
	"github.com/MrEthical07/crewauth/password"
	"github.com/MrEthical07/crewauth/permission"
	"github.com/MrEthical07/crewauth/session"
)

// Engine defines a public type used by crewauth APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config       Config
	sessionStore *session.Store
	resolver     *permission.Resolver
	users        UserDirectory
	hasher       *password.Hasher
	audit        *auditDispatcher
	metrics      *Metrics
	flowDeps     flows.Deps
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped may return an error when input validation, dependency calls, or security checks fail.
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// SessionTTL describes the sessionttl operation and its observable behavior.
//
// SessionTTL may return an error when input validation, dependency calls, or security checks fail.
// SessionTTL does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) SessionTTL() time.Duration {
	if e == nil {
		return 0
	}
	return e.config.Session.TTL
}

// Resolver describes the resolver operation and its observable behavior.
//
// Resolver may return an error when input validation, dependency calls, or security checks fail.
// Resolver does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Resolver() *permission.Resolver {
	if e == nil {
		return nil
	}
	return e.resolver
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}
