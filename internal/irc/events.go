package irc

import (
	"gopkg.in/irc.v4"

	"github.com/yourusername/marvin/internal/bot"
	"github.com/yourusername/marvin/internal/output"
)

// BindDispatcher wires the client's inbound stream to the dispatcher.
// irc.v4 invokes the handler synchronously from its read loop, so events
// reach HandleEvent one at a time in arrival order, which is exactly the
// serialization the dispatcher requires. Must be called before Connect.
func BindDispatcher(c *Client, b *bot.Bot, logger output.Logger) {
	c.SetHandler(irc.HandlerFunc(func(_ *irc.Client, msg *irc.Message) {
		switch msg.Command {
		case "001":
			// Registered. The first 001 parameter is the nick the
			// server actually assigned, which may differ from the
			// configured one. Record it, then go home.
			if len(msg.Params) > 0 {
				b.SetMyNick(msg.Params[0])
				logger.Success("Registered as %s", msg.Params[0])
			}
			if err := c.SendJoin(c.channel); err != nil {
				logger.Error("Failed to join %s: %v", c.channel, err)
			}
			return

		case "PING", "PONG":
			// irc.v4 answers these itself.
			return
		}

		b.HandleEvent(eventFrom(msg))
	}))
}

// eventFrom converts one protocol message to a dispatcher event.
// Anything without specific routing becomes EventOther so the dispatcher
// still refreshes its sender context from it.
func eventFrom(msg *irc.Message) *bot.Event {
	ev := &bot.Event{Kind: bot.EventOther}

	if msg.Prefix != nil {
		ev.Nick = msg.Name
		ev.User = msg.User
		ev.Host = msg.Host
	}

	switch msg.Command {
	case "PRIVMSG":
		if len(msg.Params) >= 2 {
			ev.Kind = bot.EventPrivmsg
			ev.Target = msg.Params[0]
			ev.Text = msg.Trailing()
		}
	case "JOIN":
		if len(msg.Params) >= 1 {
			ev.Kind = bot.EventJoin
			ev.Target = msg.Params[0]
		}
	case "NICK":
		if len(msg.Params) >= 1 {
			ev.Kind = bot.EventNick
			ev.Text = msg.Params[0]
		}
	}

	return ev
}
