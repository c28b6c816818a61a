package stream

import (
	"encoding/json"
	"fmt"
	"path"
)

// Command targets accepted on camportal/command/{target}.
const (
	TargetFlashlight = "flashlight"
	TargetStreaming  = "streaming"
)

// command is the remote command payload, e.g. {"on":true}.
type command struct {
	On *bool `json:"on"`
}

// CommandHandler returns a message handler that applies remote commands to
// state. The target is the last topic segment. A payload without "on"
// toggles.
func CommandHandler(state *State) func(topic string, payload []byte) error {
	return func(topic string, payload []byte) error {
		var cmd command
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &cmd); err != nil {
				return fmt.Errorf("decoding command: %w", err)
			}
		}

		switch target := path.Base(topic); target {
		case TargetFlashlight:
			if cmd.On == nil {
				state.ToggleFlashlight()
			} else {
				state.SetFlashlight(*cmd.On)
			}
		case TargetStreaming:
			if cmd.On == nil {
				state.ToggleStreaming()
			} else {
				state.SetStreaming(*cmd.On)
			}
		default:
			return fmt.Errorf("%w: %q", ErrUnknownCommand, target)
		}
		return nil
	}
}
