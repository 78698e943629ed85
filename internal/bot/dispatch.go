package bot

import (
	"strings"
	"time"

	"github.com/yourusername/marvin/internal/config"
)

// HandleEvent routes one inbound transport event. It must be called
// serially from the transport's read loop: events are processed strictly
// in arrival order and never concurrently. A handler's failure is logged
// and contained to that one event; it never takes down the loop.
func (b *Bot) HandleEvent(ev *Event) {
	b.updateSenderContext(ev)

	for _, h := range b.rawHandlers {
		handled, err := h(b, ev)
		if err != nil {
			b.logger.Error("raw handler failed: %v", err)
			continue
		}
		if handled {
			break
		}
	}

	switch ev.Kind {
	case EventPrivmsg:
		cmd, args := splitCommand(ev.Text)
		if ev.Target == b.MyNick() {
			if _, err := b.handlePrivmsg(ev.Text, cmd, args); err != nil {
				b.logger.Error("PRIVMSG handling failed: %v", err)
			}
		} else {
			if _, err := b.handleChanmsg(ev.Target, ev.Text, cmd, args); err != nil {
				b.logger.Error("CHANMSG handling failed: %v", err)
			}
		}

	case EventNick:
		if ev.Nick == b.MyNick() {
			b.logger.Info("My new nick: %s", ev.Text)
			b.setMyNick(ev.Text)
		}

	case EventJoin, EventOther:
		// Raw handlers already saw it; nothing further to route.
	}
}

// updateSenderContext refreshes the per-event origin fields, defaulting
// to NONE sentinels for server-originated events.
func (b *Bot) updateSenderContext(ev *Event) {
	nick, user, host := ev.Nick, ev.User, ev.Host
	if nick == "" && user == "" && host == "" {
		nick, user, host = "NONE", "NONE", "NONE"
	}
	b.msgNick = nick
	b.msgUser = user
	b.msgHost = host
	b.msgUserhost = user + "@" + host
}

// splitCommand splits a message on the first whitespace run into the
// command keyword and the remainder.
func splitCommand(msg string) (cmd, args string) {
	i := strings.IndexFunc(msg, func(r rune) bool { return r == ' ' || r == '\t' })
	if i < 0 {
		return msg, ""
	}
	return msg[:i], strings.TrimLeft(msg[i:], " \t")
}

// handlePrivmsg processes a direct message. The privileged table is
// tried first for privileged senders; a false result there still falls
// through to the open table.
func (b *Bot) handlePrivmsg(msg, cmd, args string) (bool, error) {
	rt := b.Runtime()
	b.logger.Info("*** Privmsg from %s (%s): %s %s", b.msgNick, b.msgUserhost, cmd, args)

	if rt.PrivilegedNicks[b.msgNick] {
		if h, ok := b.privmsgPriv[cmd]; ok {
			handled, err := h(b, msg, cmd, args)
			if err != nil || handled {
				return handled, err
			}
		}
	}

	if h, ok := b.privmsgOpen[cmd]; ok {
		return h(b, msg, cmd, args)
	}

	// All other private messages are ignored.
	return false, nil
}

// handleChanmsg processes a channel message: keyword handlers first,
// then templated url commands, then URL detection.
func (b *Bot) handleChanmsg(channel, msg, cmd, args string) (bool, error) {
	rt := b.Runtime()
	b.logger.ChannelMessage(channel, b.msgNick, msg)

	if h, ok := b.chanmsg[cmd]; ok {
		return h(b, msg, cmd, args)
	}

	if name, found := strings.CutPrefix(cmd, "!"); found && config.WildBool(rt.URLCmdChannels, channel) {
		if uc, ok := rt.URLCommands[name]; ok {
			return b.runURLCommand(rt, uc, channel, args)
		}
	}

	return b.scanURLs(rt, channel, msg)
}

func (b *Bot) runURLCommand(rt *config.Runtime, uc *config.URLCmd, channel, args string) (bool, error) {
	url, err := uc.Render(args, strings.Fields(args))
	if err != nil {
		return false, err
	}
	b.logger.Info("URL cmd: !%s --> %s", uc.Name, url)
	if err := b.NewOp(Op{Kind: OpURLFetch, URL: url, Channel: channel, Filter: uc.OutputFilter}); err != nil {
		return false, err
	}
	return true, nil
}

// scanURLs finds every URL in a channel message and enqueues the
// enrichment operations each channel flag enables. A message may carry
// several URLs; each is handled independently.
func (b *Bot) scanURLs(rt *config.Runtime, channel, msg string) (bool, error) {
	foundURL := false

matches:
	for _, m := range rt.URLRegex.FindAllStringSubmatch(msg, -1) {
		url := m[0]
		if len(m) > 1 {
			url = m[1]
		}
		foundURL = true
		b.logger.Info("*** (%s at %s) detected url: %s", b.msgNick, channel, url)

		for _, prefix := range rt.URLBlacklist {
			if strings.HasPrefix(url, prefix) {
				b.logger.Info("*** Blacklisted URL. Ignored.")
				continue matches
			}
		}

		if config.WildBool(rt.URLLogChannels, channel) {
			if config.WildBool(rt.URLDupComplainChannels, channel) {
				if err := b.NewOp(Op{
					Kind:    OpURLCheck,
					URL:     url,
					Channel: channel,
					Window:  rt.DupExpire(channel),
					Loc:     rt.DupLocation(channel),
				}); err != nil {
					return foundURL, err
				}
			}

			if err := b.NewOp(Op{
				Kind:    OpURLLog,
				URL:     url,
				Channel: channel,
				Nick:    b.msgNick,
				Seen:    time.Now().Unix(),
			}); err != nil {
				return foundURL, err
			}
		}

		if config.WildBool(rt.URLFetchChannels, channel) {
			if err := b.NewOp(Op{Kind: OpURLTitle, URL: url, Channel: channel}); err != nil {
				return foundURL, err
			}
		}

		if config.WildBool(rt.URLMutChannels, channel) {
			if _, rewritten, ok := rt.Rewrites.Rewrite(url); ok {
				if err := b.NewMsg(channel, rewritten); err != nil {
					return foundURL, err
				}
				if err := b.NewOp(Op{Kind: OpURLTitle, URL: rewritten, Channel: channel}); err != nil {
					return foundURL, err
				}
			}
		}
	}

	return foundURL, nil
}
