package metrics

// Package metrics defines interfaces and implementations for collecting
// smart charging metrics. Sinks like PromSink and InfluxSink record events
// such as profile decisions or composite schedule queries and can be
// combined with NewMultiSink. The factory helpers return a MultiSink
// automatically when multiple sinks are configured.
