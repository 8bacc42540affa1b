// Package instrument provides store plugins that export action and
// mutation telemetry.
//
// Metrics registers Prometheus collectors and records every action call,
// its outcome and duration, every observed state change and the number of
// live stores:
//
//	c := store.New(store.WithPlugins(
//	    instrument.Metrics(instrument.WithRegistry(reg)),
//	    instrument.Tracing(instrument.WithTracerName("checkout")),
//	))
//
// Tracing opens one OpenTelemetry span per action call. Spans of
// asynchronous actions end when their future settles.
package instrument
