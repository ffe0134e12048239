package mqtt

// Topic namespace for the sensory runtime. All topics live under the
// "sensory/" prefix so a single broker can host multiple services.
//
//	sensory/command/{deviceID}   outbound device commands
//	sensory/reconfigure          outbound dispatcher reconfiguration
//	sensory/device/announce      inbound device announcements
//	sensory/effect/trigger       inbound discrete effect triggers
//	sensory/timeline/control     inbound playback control
//	sensory/system/status        retained online/offline status
const topicPrefix = "sensory"

// Topics builds topic strings for the sensory namespace. The zero value
// is ready to use.
type Topics struct{}

// DeviceCommand is the outbound command topic for a specific device.
func (Topics) DeviceCommand(deviceID string) string {
	return topicPrefix + "/command/" + deviceID
}

// Reconfigure is the outbound topic for dispatcher reconfiguration
// payloads.
func (Topics) Reconfigure() string {
	return topicPrefix + "/reconfigure"
}

// DeviceAnnounce is the inbound topic devices publish registration
// payloads to.
func (Topics) DeviceAnnounce() string {
	return topicPrefix + "/device/announce"
}

// EffectTrigger is the inbound topic for discrete effect triggers.
func (Topics) EffectTrigger() string {
	return topicPrefix + "/effect/trigger"
}

// TimelineControl is the inbound topic for playback control messages.
func (Topics) TimelineControl() string {
	return topicPrefix + "/timeline/control"
}

// SystemStatus is the retained topic carrying the runtime's
// online/offline status, including the Last Will message.
func (Topics) SystemStatus() string {
	return topicPrefix + "/system/status"
}
