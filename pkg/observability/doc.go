/*
Package observability turns engine lifecycle hooks into logs and Prometheus metrics.

	metrics, _ := observability.NewMetrics(prometheus.DefaultRegisterer)
	hooks := observability.Chain(metrics.Hooks(), observability.LogHooks(logger))
*/
package observability
