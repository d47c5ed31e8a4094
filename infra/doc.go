// Package infra contains technical adapters: observation log readers,
// MQTT publishers, metrics exporters and the logger implementation.
// These packages depend only on the interfaces defined in core.
package infra
