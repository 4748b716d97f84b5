// Package messaging publishes domain events to a message broker.
//
// Publisher hides the broker behind one call. Kafka, NATS, NSQ and Google
// Pub/Sub are supported, plus a noop driver for deployments without a broker.
package messaging
