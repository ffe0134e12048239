// Package sink publishes dispatched device commands onto the MQTT bus.
//
// MQTTSink implements dispatch.CommandSink: each Send becomes a JSON
// command envelope on sensory/command/{deviceID}, and Reconfigure
// publishes the new routing payload on sensory/reconfigure. Protocol
// bridges subscribe to these topics and translate the envelopes into
// device-native writes.
package sink
