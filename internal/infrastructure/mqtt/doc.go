// Package mqtt connects the device to an MQTT broker.
//
// The device publishes:
//   - camportal/system/status: retained online/offline status; the broker
//     publishes the offline payload as LWT on an unexpected disconnect
//   - camportal/events/{kind}: portal events (token_added, wifi_provisioned,
//     gate_unlocked, ...), never containing tokens or passwords
//
// and accepts remote commands on camportal/command/{flashlight,streaming}.
//
// MQTT is optional. When mqtt.enabled is false the daemon never dials and
// events are only logged.
//
// Usage:
//
//	client, err := mqtt.Connect(cfg.MQTT, logger)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.PublishJSON(mqtt.Topics{}.Event("gate_unlocked"), event)
package mqtt
