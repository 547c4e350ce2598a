package metricskey

import "github.com/effective-security/metrics"

// Perf
var (
	// PerfJWSOperation is perf metric
	PerfJWSOperation = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_jws",
		Help:         "perf_jws provides the sample metrics of JWS sign and validate operations",
		RequiredTags: []string{"alg", "action"},
	}

	// PerfKeyGeneration is perf metric
	PerfKeyGeneration = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_jws_keygen",
		Help:         "perf_jws_keygen provides the sample metrics of key generation",
		RequiredTags: []string{"alg"},
	}
)

// Metrics returns slice of metrics from this repo
var Metrics = []*metrics.Describe{
	&PerfJWSOperation,
	&PerfKeyGeneration,
}
