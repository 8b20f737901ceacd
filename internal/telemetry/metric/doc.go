// Package metric holds the client-side Prometheus metrics of cmsadmin.
//
//   - prometheus.go: the private registry and the API, notification and
//     session counters
//   - collector.go: a collector reporting the live session state
//
// A CLI process is short-lived, so nothing is served over HTTP. The registry
// is written in textfile-collector format on exit (--metrics-file) or
// printed by the "metrics" command in the shell.
package metric
