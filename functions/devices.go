package functions

import (
	"fmt"
	"sort"

	"google.golang.org/genai"
)

// ListDeviceActionsName is the tool name exposed to the model
const ListDeviceActionsName = "ListDeviceActions"

// Action is a device command and its label
type Action struct {
	Value string `json:"value"`
	Text  string `json:"text"`
}

var deviceActions = map[string][]Action{
	"light": {
		{Value: "on", Text: "Turn On"},
		{Value: "off", Text: "Turn Off"},
		{Value: "brighten", Text: "Brighten"},
		{Value: "dim", Text: "Dim"},
	},
	"fan": {
		{Value: "on", Text: "Turn On"},
		{Value: "off", Text: "Turn Off"},
		{Value: "speed_up", Text: "Speed Up"},
		{Value: "speed_down", Text: "Speed Down"},
	},
	"ac": {
		{Value: "on", Text: "Turn On"},
		{Value: "off", Text: "Turn Off"},
		{Value: "temp_up", Text: "Increase Temperature"},
		{Value: "temp_down", Text: "Decrease Temperature"},
	},
	"curtain": {
		{Value: "on", Text: "Open"},
		{Value: "off", Text: "Close"},
	},
}

// DeviceTypes returns the known device types, sorted
func DeviceTypes() []string {
	types := make([]string, 0, len(deviceActions))
	for t := range deviceActions {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// ActionsFor returns the actions a device type accepts
func ActionsFor(deviceType string) []Action {
	return deviceActions[deviceType]
}

// ValidateCommand checks a device/action pair against the catalogue
func ValidateCommand(deviceType, action string) error {
	actions, ok := deviceActions[deviceType]
	if !ok {
		return fmt.Errorf("unknown device type %q", deviceType)
	}
	for _, a := range actions {
		if a.Value == action {
			return nil
		}
	}
	return fmt.Errorf("unknown action %q for %s", action, deviceType)
}

// ListDeviceActionsFunctionDeclaration returns the function declaration for Gemini
func ListDeviceActionsFunctionDeclaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        ListDeviceActionsName,
		Description: "List the smart home device types and the actions each one accepts",
	}
}

// ListDeviceActions returns the catalogue in the shape sent back to the model
func ListDeviceActions() map[string]any {
	out := make(map[string]any, len(deviceActions))
	for t, actions := range deviceActions {
		values := make([]string, 0, len(actions))
		for _, a := range actions {
			values = append(values, a.Value)
		}
		out[t] = values
	}
	return out
}
