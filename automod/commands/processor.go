package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/bluesky-social/hallmonitor/automod/engine"
)

var (
	errNoPrivateMessage = errors.New("this command cannot be used in private messages")
	errMissingPerms     = errors.New("missing permissions")
)

// Everything a command handler needs about a single invocation.
type Invocation struct {
	Ctx   context.Context
	Event *engine.MessageEvent
	// Whitespace-separated arguments following the command name
	Args []string
	// Raw text following the command name, trimmed
	Rest string

	proc *Processor
}

// Sends a message to the invoking channel.
func (inv *Invocation) Reply(text string) error {
	return inv.proc.Guild.Send(inv.Ctx, inv.Event.ChannelID, text)
}

// Like Reply, but failures are only logged.
func (inv *Invocation) reply(text string) {
	if err := inv.Reply(text); err != nil {
		inv.proc.Logger.Warn("failed to send command reply", "channel", inv.Event.ChannelID, "err", err)
	}
}

// Records a line in the moderation audit trail. Failures are logged, not returned.
func (inv *Invocation) LogModAction(text string) {
	inv.proc.logModAction(inv.Ctx, text)
}

// Text following the first n arguments, with original spacing preserved.
func (inv *Invocation) RestAfter(n int) string {
	rest := inv.Rest
	for i := 0; i < n; i++ {
		rest = strings.TrimLeft(rest, " \t\n")
		idx := strings.IndexAny(rest, " \t\n")
		if idx < 0 {
			return ""
		}
		rest = rest[idx:]
	}
	return strings.TrimSpace(rest)
}

type HandlerFunc = func(inv *Invocation) error

type Command struct {
	Name string
	// Required permissions; zero means anybody may run the command
	Permissions Permissions
	// If true, only usable in a guild
	GuildOnly bool
	Handler   HandlerFunc
}

// Dispatches prefix commands. Implements engine.CommandProcessor.
type Processor struct {
	Prefix string
	Guild  Guild
	// optional
	Audit  engine.AuditSink
	Logger *slog.Logger

	commands map[string]*Command
}

var _ engine.CommandProcessor = (*Processor)(nil)

// Creates a processor with the default command set registered.
func NewProcessor(prefix string, guild Guild, audit engine.AuditSink, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Processor{
		Prefix:   prefix,
		Guild:    guild,
		Audit:    audit,
		Logger:   logger.With("component", "commands"),
		commands: make(map[string]*Command),
	}
	for _, cmd := range DefaultCommands() {
		p.Register(cmd)
	}
	return p
}

// Adds (or replaces) a command.
func (p *Processor) Register(cmd Command) {
	p.commands[cmd.Name] = &cmd
}

// Sorted names of registered commands
func (p *Processor) Names() []string {
	out := make([]string, 0, len(p.commands))
	for name := range p.commands {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Parses and runs a command, if the message text starts with the prefix. Other messages are ignored.
//
// Command failures are reported back to the invoking channel; the only errors returned are failures to send those replies.
func (p *Processor) ProcessCommand(ctx context.Context, evt *engine.MessageEvent) error {
	if p.Prefix == "" || !strings.HasPrefix(evt.Text, p.Prefix) {
		return nil
	}
	body := strings.TrimPrefix(evt.Text, p.Prefix)
	fields := strings.Fields(body)
	if len(fields) == 0 {
		return nil
	}
	name := fields[0]
	inv := &Invocation{
		Ctx:   ctx,
		Event: evt,
		Args:  fields[1:],
		Rest:  strings.TrimSpace(strings.TrimPrefix(strings.TrimLeft(body, " \t\n"), name)),
		proc:  p,
	}
	logger := p.Logger.With("command", name, "user", evt.AuthorID, "channel", evt.ChannelID)

	cmd, ok := p.commands[name]
	if !ok {
		commandCount.WithLabelValues("unknown", "not_found").Inc()
		return inv.Reply("Command not found.")
	}

	err := p.checkAllowed(ctx, cmd, evt)
	if err == nil {
		err = cmd.Handler(inv)
	}
	switch {
	case err == nil:
		commandCount.WithLabelValues(cmd.Name, "ok").Inc()
		return nil
	case errors.Is(err, errMissingPerms):
		commandCount.WithLabelValues(cmd.Name, "forbidden").Inc()
		logger.Info("command rejected, missing permissions")
		return inv.Reply("You don't have permission to run that command.")
	default:
		commandCount.WithLabelValues(cmd.Name, "error").Inc()
		logger.Warn("command failed", "err", err)
		replyErr := inv.Reply(fmt.Sprintf("An error occurred: %s", err))
		p.logModAction(ctx, fmt.Sprintf("Command error by %s: %s", evt.AuthorName, err))
		return replyErr
	}
}

func (p *Processor) checkAllowed(ctx context.Context, cmd *Command, evt *engine.MessageEvent) error {
	if (cmd.GuildOnly || cmd.Permissions != 0) && !evt.InGuild() {
		return errNoPrivateMessage
	}
	if cmd.Permissions == 0 {
		return nil
	}
	perms, err := p.Guild.Permissions(ctx, evt.GuildID, evt.ChannelID, evt.AuthorID)
	if err != nil {
		return fmt.Errorf("checking permissions: %w", err)
	}
	if !perms.Has(cmd.Permissions) {
		return errMissingPerms
	}
	return nil
}

func (p *Processor) logModAction(ctx context.Context, text string) {
	p.Logger.Info("mod action", "text", text)
	if p.Audit == nil {
		return
	}
	if err := p.Audit.LogModAction(ctx, text); err != nil {
		p.Logger.Warn("failed to write audit log", "err", err)
	}
}

func missingArgument(name string) error {
	return fmt.Errorf("%s is a required argument that is missing", name)
}
