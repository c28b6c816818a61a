package mqtt

import "fmt"

// TopicPrefix roots every camportal topic.
const TopicPrefix = "camportal"

// Topics builds camportal topic names.
//
//	mqtt.Topics{}.Event("token_added") // camportal/events/token_added
type Topics struct{}

// SystemStatus is the retained online/offline topic, also used as the LWT.
func (Topics) SystemStatus() string {
	return TopicPrefix + "/system/status"
}

// Event is the topic for portal events of one kind.
func (Topics) Event(kind string) string {
	return fmt.Sprintf("%s/events/%s", TopicPrefix, kind)
}

// AllEvents matches every portal event topic.
func (Topics) AllEvents() string {
	return TopicPrefix + "/events/+"
}

// Command is the topic on which the device accepts remote commands for
// target ("flashlight" or "streaming").
func (Topics) Command(target string) string {
	return fmt.Sprintf("%s/command/%s", TopicPrefix, target)
}

// AllCommands matches every command topic.
func (Topics) AllCommands() string {
	return TopicPrefix + "/command/+"
}
