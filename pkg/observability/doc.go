/*
Package observability exports turtle engine activity as Prometheus metrics.

Metrics are bound to an engine through domain.LifecycleHooks, so the engine
itself stays unaware of Prometheus:

	m := observability.NewMetrics(prometheus.DefaultRegisterer)
	eng := turtle.New(turtle.WithMetrics(m))
*/
package observability
