// Package telemetry exports render and subscription activity as Prometheus
// metrics and OpenTelemetry spans.
//
// Metrics implements both host.Observer and sigstore.Observer, so a single
// value can be installed on a tree and on a store definition:
//
//	m := telemetry.NewMetrics(telemetry.WithRegistry(reg))
//	tree := host.NewTree(root, host.WithObserver(m))
//	store := sigstore.Define("demo", build, sigstore.WithObserver(m))
package telemetry
