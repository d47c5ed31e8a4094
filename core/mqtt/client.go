// Package mqtt declares the publishing contract used to stream lot
// snapshots to a broker.
package mqtt

// Publisher delivers a payload to a topic.
type Publisher interface {
	Publish(topic string, payload []byte) error
}
