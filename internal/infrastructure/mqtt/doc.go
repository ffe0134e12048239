// Package mqtt wraps the Eclipse Paho client for the sensory runtime's
// broker traffic.
//
// The client publishes device commands, reconfiguration payloads, and a
// retained online/offline status (with a Last Will for crash
// detection), and receives device announcements, effect triggers, and
// timeline control messages. Connections auto-reconnect with
// exponential backoff and subscriptions are restored transparently.
//
// Topic layout is defined in topics.go under the "sensory/" prefix.
package mqtt
