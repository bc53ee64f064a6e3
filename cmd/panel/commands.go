package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/room4-2/voicepanel/coordinator"
	"github.com/room4-2/voicepanel/functions"
	"github.com/room4-2/voicepanel/messages"
	"github.com/room4-2/voicepanel/services"

	"github.com/chzyer/readline"
)

const helpText = `Commands:
  /connect                       open the coordinator session
  /disconnect                    close the coordinator session
  /status [service]              check coordinator, stt, tts, iot, ollama
  /chat <text>                   ask the coordinator over HTTP
  /tts <text> [| voice]          synthesize and play speech
  /voices                        list English TTS voices
  /devices                       show device states
  /iot <device> <action> [room]  control a device
  /models                        list Ollama models
  /pull <model>                  download an Ollama model
  /help                          show this help
  /quit                          exit
Any other line is sent to the coordinator as a text message.`

func completer() *readline.PrefixCompleter {
	devices := make([]readline.PrefixCompleterInterface, 0)
	for _, d := range functions.DeviceTypes() {
		actions := make([]readline.PrefixCompleterInterface, 0)
		for _, a := range functions.ActionsFor(d) {
			actions = append(actions, readline.PcItem(a.Value))
		}
		devices = append(devices, readline.PcItem(d, actions...))
	}

	servicesItems := make([]readline.PrefixCompleterInterface, 0)
	for _, s := range services.AllServices {
		servicesItems = append(servicesItems, readline.PcItem(string(s)))
	}

	return readline.NewPrefixCompleter(
		readline.PcItem("/connect"),
		readline.PcItem("/disconnect"),
		readline.PcItem("/status", servicesItems...),
		readline.PcItem("/chat"),
		readline.PcItem("/tts"),
		readline.PcItem("/voices"),
		readline.PcItem("/devices"),
		readline.PcItem("/iot", devices...),
		readline.PcItem("/models"),
		readline.PcItem("/pull"),
		readline.PcItem("/help"),
		readline.PcItem("/quit"),
	)
}

// command runs a slash command and reports whether the panel keeps running
func (p *panel) command(line string) bool {
	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	args := strings.Fields(rest)

	ctx, cancel := context.WithTimeout(p.ctx, p.cfg.HTTPTimeout)
	defer cancel()

	switch name {
	case "/connect":
		p.manager.Connect()
	case "/disconnect":
		p.manager.Disconnect()
	case "/status":
		p.status(ctx, args)
	case "/chat":
		if rest == "" {
			fmt.Fprintln(p.out, "Usage: /chat <text>")
			return true
		}
		p.chat(ctx, rest)
	case "/tts":
		if rest == "" {
			fmt.Fprintln(p.out, "Usage: /tts <text> [| voice]")
			return true
		}
		p.tts(ctx, rest)
	case "/voices":
		p.voices(ctx)
	case "/devices":
		p.devices(ctx)
	case "/iot":
		if len(args) < 2 {
			fmt.Fprintln(p.out, "Usage: /iot <device> <action> [room]")
			return true
		}
		p.iot(ctx, args)
	case "/models":
		p.models(ctx)
	case "/pull":
		if rest == "" {
			fmt.Fprintln(p.out, "Usage: /pull <model>")
			return true
		}
		p.pull(rest)
	case "/help":
		fmt.Fprintln(p.out, helpText)
	case "/quit", "/exit":
		return false
	default:
		fmt.Fprintf(p.out, "Unknown command: %s (try /help)\n", name)
	}
	return true
}

func (p *panel) status(ctx context.Context, args []string) {
	fmt.Fprintf(p.out, "Session: %s", p.manager.State())
	if id := p.manager.SessionID(); id != "" {
		fmt.Fprintf(p.out, " (%s)", id[:8])
	}
	fmt.Fprintln(p.out)

	var reports []services.StatusReport
	if len(args) > 0 {
		reports = []services.StatusReport{p.services.Status(ctx, services.Service(args[0]))}
	} else {
		reports = p.services.CheckAll(ctx)
	}

	w := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "SERVICE\tHEALTH\tDETAIL\n")
	for _, r := range reports {
		detail := r.Err
		if detail == "" && r.Response != nil {
			detail = fmt.Sprint(r.Response)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.Service.DisplayName(), r.Health, detail)
	}
	w.Flush()
}

func (p *panel) chat(ctx context.Context, text string) {
	reply, err := p.services.ProcessText(ctx, text)
	if err != nil {
		fmt.Fprintf(p.out, "🔴 %v\n", err)
		return
	}
	fmt.Fprintf(p.out, "🤖 %s\n", reply.AIResponse)
	if reply.AudioPath != "" {
		go p.play(messages.AudioURL(p.cfg.AudioBase(), reply.AudioPath))
	}
}

func (p *panel) tts(ctx context.Context, input string) {
	text, voice, _ := strings.Cut(input, "|")
	synthesis, err := p.services.Synthesize(ctx, text, strings.TrimSpace(voice))
	if err != nil {
		fmt.Fprintf(p.out, "🔴 %v\n", err)
		return
	}
	if synthesis.URL == "" {
		fmt.Fprintln(p.out, "⚠️ TTS returned no audio")
		return
	}
	go p.play(synthesis.URL)
}

func (p *panel) voices(ctx context.Context) {
	voices, err := p.services.Voices(ctx)
	if err != nil {
		fmt.Fprintf(p.out, "🔴 %v\n", err)
		return
	}
	english := services.EnglishVoices(voices)
	if len(english) == 0 {
		fmt.Fprintln(p.out, "No English voices found.")
		return
	}

	w := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "NAME\tGENDER\tLOCALE\n")
	for _, v := range english {
		fmt.Fprintf(w, "%s\t%s\t%s\n", v.Name, v.Gender, v.Locale)
	}
	w.Flush()
}

func (p *panel) devices(ctx context.Context) {
	states, err := p.services.Devices(ctx)
	if err != nil {
		fmt.Fprintf(p.out, "🔴 %v\n", err)
		return
	}
	out := coordinator.FormatDeviceStates(states)
	if out == "" {
		out = "No devices reported."
	}
	fmt.Fprintln(p.out, out)
}

func (p *panel) iot(ctx context.Context, args []string) {
	device, action := args[0], args[1]
	if err := functions.ValidateCommand(device, action); err != nil {
		fmt.Fprintf(p.out, "🔴 %v\n", err)
		return
	}
	location := "living room"
	if len(args) > 2 {
		location = strings.Join(args[2:], " ")
	}

	result, err := p.services.Control(ctx, []messages.IoTCommand{{
		Device:   device,
		Action:   action,
		Location: location,
	}})
	if err != nil {
		fmt.Fprintf(p.out, "🔴 %v\n", err)
		return
	}
	fmt.Fprintf(p.out, "🏠 %v\n", result["status"])
}

func (p *panel) models(ctx context.Context) {
	models, err := p.services.Models(ctx)
	if err != nil {
		fmt.Fprintf(p.out, "🔴 %v\n", err)
		return
	}
	if len(models) == 0 {
		fmt.Fprintln(p.out, "No models installed. Use /pull <model>.")
		return
	}

	w := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "MODEL\tSIZE\n")
	for _, m := range models {
		fmt.Fprintf(w, "%s\t%.2f MB\n", m.Name, m.SizeMB())
	}
	w.Flush()
}

// pull runs in the background so the prompt stays usable
func (p *panel) pull(name string) {
	fmt.Fprintf(p.out, "⏬ Pulling %s...\n", name)
	go func() {
		if err := p.services.Pull(p.ctx, name); err != nil {
			fmt.Fprintf(p.out, "🔴 %v\n", err)
			return
		}
		fmt.Fprintf(p.out, "✅ Pulled %s\n", name)
	}()
}
