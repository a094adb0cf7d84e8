package client

import (
	"fmt"
	"strings"
)

// Handler runs a command against the client with the text after the command name
type Handler func(c *Client, arg string)

// Command is one entry of the command table
type Command struct {
	Name        string
	Signature   string
	Description string
	Handler     Handler
}

// Router resolves slash-prefixed prompt lines to commands
type Router struct {
	commands map[string]*Command
	order    []*Command
}

// NewRouter builds the lookup table once; later duplicates replace earlier ones
func NewRouter(cmds ...Command) *Router {
	r := &Router{commands: make(map[string]*Command, len(cmds))}
	for i := range cmds {
		cmd := cmds[i]
		if existing, ok := r.commands[cmd.Name]; ok {
			*existing = cmd
			continue
		}
		r.commands[cmd.Name] = &cmd
		r.order = append(r.order, &cmd)
	}
	return r
}

// Lookup finds a command by exact name (without the slash)
func (r *Router) Lookup(name string) (*Command, bool) {
	cmd, ok := r.commands[name]
	return cmd, ok
}

// Commands returns the table in registration order
func (r *Router) Commands() []*Command {
	return r.order
}

// ParseCommand splits "/name arg..." at the first space
// ok is false when line does not start with a slash
func ParseCommand(line string) (name, arg string, ok bool) {
	if !strings.HasPrefix(line, "/") {
		return "", "", false
	}
	name, arg, _ = strings.Cut(line[1:], " ")
	return name, arg, true
}

// Route handles a submitted line and reports whether the prompt should be cleared
// Command lines always clear; chat messages clear only once the connection accepted them
func (r *Router) Route(c *Client, line string) bool {
	if name, arg, ok := ParseCommand(line); ok {
		if cmd, found := r.Lookup(name); found {
			cmd.Handler(c, arg)
		} else {
			c.log.Error(fmt.Sprintf("Unknown command `/%s`", name))
		}
		return true
	}

	if line == "" {
		return false
	}
	return c.sendMessage(line)
}

// DefaultCommands returns the built-in command table
func DefaultCommands() []Command {
	return []Command{
		{
			Name:        "connect",
			Signature:   "/connect <ip>",
			Description: "Connect to a server by ip (port optional)",
			Handler:     connectCommand,
		},
		{
			Name:        "disconnect",
			Signature:   "/disconnect",
			Description: "Disconnect from the server you are currently connected to",
			Handler:     disconnectCommand,
		},
		{
			Name:        "quit",
			Signature:   "/quit",
			Description: "Close the chat",
			Handler:     quitCommand,
		},
		{
			Name:        "help",
			Signature:   "/help [command]",
			Description: "Print help for a command, or list all commands",
			Handler:     helpCommand,
		},
	}
}

func connectCommand(c *Client, arg string) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		c.log.Error("Usage: /connect <ip>")
		return
	}
	c.connect(arg)
}

func disconnectCommand(c *Client, _ string) {
	c.disconnect()
}

func quitCommand(c *Client, _ string) {
	c.quit()
}

func helpCommand(c *Client, arg string) {
	name := strings.TrimPrefix(strings.TrimSpace(arg), "/")
	if name == "" {
		for _, cmd := range c.router.Commands() {
			c.log.Info(helpLine(cmd))
		}
		return
	}

	cmd, ok := c.router.Lookup(name)
	if !ok {
		c.log.Error(fmt.Sprintf("Unknown command `/%s`", name))
		return
	}
	c.log.Info(helpLine(cmd))
}

func helpLine(cmd *Command) string {
	return cmd.Signature + " - " + cmd.Description
}
