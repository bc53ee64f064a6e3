package coordinator

import (
	"regexp"
	"strings"

	"github.com/room4-2/voicepanel/functions"
	"github.com/room4-2/voicepanel/messages"
)

type keyword struct {
	phrase string
	value  string
	re     *regexp.Regexp
}

func keywords(pairs ...string) []keyword {
	out := make([]keyword, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, keyword{
			phrase: pairs[i],
			value:  pairs[i+1],
			re:     regexp.MustCompile(`\b` + regexp.QuoteMeta(pairs[i]) + `\b`),
		})
	}
	return out
}

// Checked in order; the first match wins for actions and locations
var (
	deviceKeywords = keywords(
		"light", "light",
		"lights", "light",
		"lamp", "light",
		"fan", "fan",
		"air conditioner", "ac",
		"ac", "ac",
		"curtain", "curtain",
		"curtains", "curtain",
	)
	actionKeywords = keywords(
		"on", "on",
		"turn on", "on",
		"off", "off",
		"turn off", "off",
		"brighten", "brighten",
		"dim", "dim",
		"increase temperature", "temp_up",
		"decrease temperature", "temp_down",
	)
	locationKeywords = keywords(
		"living room", "living room",
		"bedroom", "bedroom",
		"kitchen", "kitchen",
		"study", "study",
	)
)

const (
	defaultLocation = "living room"
	defaultAction   = "on"
)

func firstMatch(text string, table []keyword, def string) string {
	for _, k := range table {
		if k.re.MatchString(text) {
			return k.value
		}
	}
	return def
}

// actionFor returns the first action keyword in text that device accepts.
// With no action keyword at all the default applies; when every matched
// keyword is invalid for the device, ok is false.
func actionFor(text, device string) (action string, ok bool) {
	matched := false
	for _, k := range actionKeywords {
		if !k.re.MatchString(text) {
			continue
		}
		matched = true
		if functions.ValidateCommand(device, k.value) == nil {
			return k.value, true
		}
	}
	if matched {
		return "", false
	}
	return defaultAction, true
}

// ExtractIoTCommands finds device commands in the user's words. Matching is
// on whole words, each device type yields at most one command, and a device
// is skipped when the only actions mentioned are ones it does not accept.
func ExtractIoTCommands(userInput, _ string) []messages.IoTCommand {
	text := strings.ToLower(userInput)
	commands := []messages.IoTCommand{}
	seen := map[string]bool{}

	for _, k := range deviceKeywords {
		if seen[k.value] || !k.re.MatchString(text) {
			continue
		}
		seen[k.value] = true

		action, ok := actionFor(text, k.value)
		if !ok {
			continue
		}
		commands = append(commands, messages.IoTCommand{
			Device:   k.value,
			Action:   action,
			Location: firstMatch(text, locationKeywords, defaultLocation),
		})
	}
	return commands
}

// Expressions the avatar understands
const (
	ExpressionSmile     = "smile"
	ExpressionThinking  = "thinking"
	ExpressionSad       = "sad"
	ExpressionSurprised = "surprised"
	ExpressionNeutral   = "neutral"
)

func containsAny(text string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// DetermineExpression picks an expression from the conversation turn
func DetermineExpression(userInput, aiResponse string) string {
	user := strings.ToLower(userInput)
	ai := strings.ToLower(aiResponse)

	switch {
	case containsAny(user, "thank", "thanks", "grateful"):
		return ExpressionSmile
	case containsAny(user, "what", "how", "why", "explain"):
		return ExpressionThinking
	case containsAny(ai, "sorry", "apologize", "regret"):
		return ExpressionSad
	case containsAny(user, "surprise", "wow", "amazing"):
		return ExpressionSurprised
	default:
		return ExpressionNeutral
	}
}
