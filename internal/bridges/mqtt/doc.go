// Package mqttbridge is the reference protocol adapter for the sensory
// runtime.
//
// It subscribes to the inbound sensory topics and translates broker
// messages into core calls: device announcements become registry
// registrations, effect triggers go to the dispatcher (or the player
// when they carry an event ID), and timeline control messages drive the
// playback scheduler. Core errors are mapped to log entries here; the
// core packages never see protocol concerns.
package mqttbridge
