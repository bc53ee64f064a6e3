package services

import (
	"context"
	"fmt"

	"github.com/room4-2/voicepanel/messages"
)

// DeviceStates maps device type -> location -> state fields
type DeviceStates map[string]map[string]map[string]any

type controlRequest struct {
	Commands []messages.IoTCommand `json:"commands"`
}

// Devices returns the state of every device known to the IoT controller
func (c *Client) Devices(ctx context.Context) (DeviceStates, error) {
	var out struct {
		Devices DeviceStates `json:"devices"`
	}
	if err := c.get(ctx, IoT, "/devices", &out); err != nil {
		return nil, fmt.Errorf("failed to get device status: %w", err)
	}
	return out.Devices, nil
}

// Control sends device commands to the IoT controller
func (c *Client) Control(ctx context.Context, commands []messages.IoTCommand) (map[string]any, error) {
	var out map[string]any
	if err := c.post(ctx, IoT, "/control", controlRequest{Commands: commands}, &out); err != nil {
		return nil, fmt.Errorf("command sending failed: %w", err)
	}
	return out, nil
}
