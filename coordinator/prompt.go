package coordinator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/room4-2/voicepanel/services"
)

const systemPrompt = `You are a friendly AI voice assistant, capable of answering questions and controlling smart home devices. If a user requests to control a device, please clearly state the action you will perform in your response, for example, "Okay, I'll turn on/off the living room light."

Current device status:
%s

Controllable devices include:
- Lights (on/off/brighten/dim)
- Fans (on/off/speed)
- Air conditioners (on/off/temperature/mode)
- Curtains (open/close)

Please maintain a brief, friendly response style and accurately understand the user's control intentions. When asked about device status, provide the current status from the information above.`

const (
	deviceStatusUnavailable = "Unable to retrieve current device status."
)

// BuildPrompt wraps user input with the assistant instructions and device status
func BuildPrompt(userInput, deviceStatus string) string {
	if deviceStatus == "" {
		deviceStatus = deviceStatusUnavailable
	}
	return fmt.Sprintf(systemPrompt, deviceStatus) + "\n\nUser: " + userInput + "\nAssistant:"
}

// FormatDeviceStates renders device states as one line per device
func FormatDeviceStates(states services.DeviceStates) string {
	var lines []string

	for _, loc := range sortedLocations(states["light"]) {
		state := states["light"][loc]
		lines = append(lines, fmt.Sprintf("- Light (%s): %s, Brightness: %v%%",
			loc, onOff(state), valueOr(state, "brightness", 0)))
	}
	for _, loc := range sortedLocations(states["fan"]) {
		state := states["fan"][loc]
		lines = append(lines, fmt.Sprintf("- Fan (%s): %s, Speed: %v",
			loc, onOff(state), valueOr(state, "speed", 0)))
	}
	for _, loc := range sortedLocations(states["ac"]) {
		state := states["ac"][loc]
		lines = append(lines, fmt.Sprintf("- AC (%s): %s, Temperature: %v°C, Mode: %v",
			loc, onOff(state), valueOr(state, "temperature", 0), valueOr(state, "mode", "unknown")))
	}
	for _, loc := range sortedLocations(states["curtain"]) {
		state := states["curtain"][loc]
		lines = append(lines, fmt.Sprintf("- Curtain (%s): %v",
			loc, valueOr(state, "status", "unknown")))
	}

	return strings.Join(lines, "\n")
}

func sortedLocations(byLocation map[string]map[string]any) []string {
	locs := make([]string, 0, len(byLocation))
	for loc := range byLocation {
		locs = append(locs, loc)
	}
	sort.Strings(locs)
	return locs
}

func onOff(state map[string]any) string {
	if state["status"] == "on" {
		return "ON"
	}
	return "OFF"
}

func valueOr(state map[string]any, key string, def any) any {
	if v, ok := state[key]; ok && v != nil {
		return v
	}
	return def
}
