// Package dispatch implements the command dispatcher (C4): it parses an
// incoming line from a client and either routes it to a named slash
// command handler or treats it as channel chat.
package dispatch

import (
	"fmt"
	"strings"

	"github.com/kbaird/chatterm/internal/registry"
)

// Dispatch handles one received line from sender. It performs whatever
// fan-out the line requires directly against reg.
func Dispatch(reg *registry.Registry, sender *registry.Client, line string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return
	}

	if trimmed[0] == '/' {
		fields := strings.Fields(trimmed)
		name := strings.TrimPrefix(fields[0], "/")
		args := fields[1:]
		dispatchCommand(reg, sender, name, args)
		return
	}

	reg.TellChannel(sender.Channel, fmt.Sprintf("%s: %s", sender.Nick, trimmed))
}

func dispatchCommand(reg *registry.Registry, sender *registry.Client, name string, args []string) {
	switch name {
	case "nick":
		nickCommand(reg, sender, args)
	case "msg":
		msgCommand(reg, sender, args)
	case "mkch":
		mkchCommand(reg, sender, args)
	case "join":
		joinCommand(reg, sender, args)
	case "list":
		listCommand(reg, sender)
	case "names":
		namesCommand(reg, sender, args)
	case "kick":
		kickCommand(reg, sender, args)
	default:
		reg.Tell(sender, "invalid command")
	}
}

func nickCommand(reg *registry.Registry, sender *registry.Client, args []string) {
	if len(args) == 0 {
		reg.Tell(sender, "invalid command")
		return
	}

	newNick := args[0]
	oldNick := sender.Nick

	switch reg.Rename(sender.Handle, newNick) {
	case registry.Renamed:
		if oldNick != newNick {
			reg.TellAll(fmt.Sprintf("%s is now known as %s", oldNick, newNick))
		}
	case registry.Rejected:
		reg.Tell(sender, fmt.Sprintf("/nick %s", oldNick))
	}
}

func msgCommand(reg *registry.Registry, sender *registry.Client, args []string) {
	if len(args) < 2 {
		return
	}

	targetNick := args[0]
	msg := strings.Join(args[1:], " ")

	target, ok := reg.Lookup(targetNick)
	if !ok {
		return
	}

	reg.Tell(target, fmt.Sprintf("*%s* %s", sender.Nick, msg))
	reg.Tell(sender, fmt.Sprintf("-> *%s* %s", targetNick, msg))
}

func mkchCommand(reg *registry.Registry, sender *registry.Client, args []string) {
	if len(args) == 0 {
		reg.Tell(sender, "invalid command")
		return
	}

	name := args[0]

	switch reg.CreateChannel(name) {
	case registry.Created:
		reg.TellAll(fmt.Sprintf("Channel %s created", name))
	case registry.Exists:
		reg.Tell(sender, fmt.Sprintf("Channel %s already exists", name))
	}
}

func joinCommand(reg *registry.Registry, sender *registry.Client, args []string) {
	if len(args) == 0 {
		reg.Tell(sender, "invalid command")
		return
	}

	name := args[0]
	oldChannel := sender.Channel

	if !reg.MoveToChannel(sender.Handle, name) {
		reg.Tell(sender, fmt.Sprintf("Channel %s doesn't exist", name))
		return
	}

	reg.TellChannel(oldChannel, fmt.Sprintf("%s left %s", sender.Nick, oldChannel))
	reg.TellChannel(name, fmt.Sprintf("%s joined %s", sender.Nick, name))
}

func listCommand(reg *registry.Registry, sender *registry.Client) {
	reg.Tell(sender, "*** Channel\tUsers")
	for _, ch := range reg.SnapshotChannels() {
		reg.Tell(sender, fmt.Sprintf("*** %s\t%d", ch.Name, ch.Count))
	}
}

func namesCommand(reg *registry.Registry, sender *registry.Client, args []string) {
	if len(args) == 0 {
		nicks := reg.SnapshotAllNicks()
		reg.Tell(sender, fmt.Sprintf("all users: %s", strings.Join(nicks, " ")))
		return
	}

	for _, ch := range args {
		nicks, ok := reg.SnapshotChannelNicks(ch)
		if !ok {
			reg.Tell(sender, fmt.Sprintf("%s channel doesn't exist", ch))
			continue
		}
		reg.Tell(sender, fmt.Sprintf("%s: %s", ch, strings.Join(nicks, " ")))
	}
}

func kickCommand(reg *registry.Registry, sender *registry.Client, args []string) {
	if len(args) == 0 {
		reg.Tell(sender, "invalid command")
		return
	}

	nick := args[0]

	target, ok := reg.Lookup(nick)
	if !ok {
		reg.Tell(sender, fmt.Sprintf("Can't kick nonexistent user %s", nick))
		return
	}

	reg.Tell(target, fmt.Sprintf("Kicked by %s", sender.Nick))
	reg.Kick(target.Handle)
	reg.Tell(sender, fmt.Sprintf("%s has been kicked", nick))
}
