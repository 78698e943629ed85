package bot

import "strings"

// RegisterCoreHandlers populates the handler tables from the current
// runtime snapshot's command keywords. Called at startup and again after
// every successful reload, because the keywords themselves are
// configuration values.
func RegisterCoreHandlers(b *Bot) {
	b.ClearHandlers()
	rt := b.Runtime()

	b.RegisterRaw(handleJoinAutoOp)

	// Anyone may use these.
	b.RegisterPrivmsgOpen(rt.Commands.Invite, handleInvite)
	b.RegisterPrivmsgOpen(rt.Commands.ModeO, handleModeO)
	b.RegisterPrivmsgOpen(rt.Commands.ModeV, handleModeV)

	// Restricted to privileged senders.
	b.RegisterPrivmsgPriv(rt.Commands.DumpACL, handleDumpACL)
	b.RegisterPrivmsgPriv(rt.Commands.Join, handleJoin)
	b.RegisterPrivmsgPriv(rt.Commands.Nick, handleNick)
	b.RegisterPrivmsgPriv(rt.Commands.Reload, handleReload)
	b.RegisterPrivmsgPriv(rt.Commands.Say, handleSay)
}

// handleJoinAutoOp grants +o on join to identities on the auto-op ACL.
func handleJoinAutoOp(b *Bot, ev *Event) (bool, error) {
	if ev.Kind != EventJoin {
		return false, nil
	}

	nick := b.MsgNick()
	userhost := b.MsgUserhost()
	b.logger.Info("JOIN <%s> %s %s", nick, userhost, ev.Target)

	if nick == b.MyNick() {
		// Our own join.
		return false, nil
	}

	rt := b.Runtime()
	if i, rule, ok := rt.AutoOACL.Match(userhost); ok {
		b.logger.Info("JOIN auto-op: ACL match %s at index %d: %s", userhost, i, rule)
		return true, b.NewOp(Op{Kind: OpModeOper, Channel: ev.Target, Nick: nick})
	}

	return false, nil
}

// handleInvite invites the sender to the default channel unless their
// nick or host is on a deny list.
func handleInvite(b *Bot, _, _, _ string) (bool, error) {
	rt := b.Runtime()
	nick := b.MsgNick()

	if i, rule, ok := rt.InviteDenyNickACL.Match(nick); ok {
		b.logger.Info("Invite denied for nick %s: rule %d %s", nick, i, rule)
		return true, nil
	}
	if i, rule, ok := rt.InviteDenyHostACL.Match(b.msgHost); ok {
		b.logger.Info("Invite denied for host %s: rule %d %s", b.msgHost, i, rule)
		return true, nil
	}

	b.logger.Info("Inviting %s to %s", nick, rt.Channel)
	return true, b.NewOp(Op{Kind: OpInvite, Nick: nick, Channel: rt.Channel})
}

// handleModeO grants +o when the sender's identity matches the op ACL,
// falling back to +v otherwise.
func handleModeO(b *Bot, _, _, _ string) (bool, error) {
	rt := b.Runtime()
	nick := b.MsgNick()
	userhost := b.MsgUserhost()

	if i, rule, ok := rt.ModeOACL.Match(userhost); ok {
		b.logger.Info("ACL match %s at index %d: %s", userhost, i, rule)
		return true, b.NewOp(Op{Kind: OpModeOper, Channel: rt.Channel, Nick: nick})
	}

	b.logger.Info("ACL check failed for %s. Fallback +v.", userhost)
	return true, b.NewOp(Op{Kind: OpModeVoice, Channel: rt.Channel, Nick: nick})
}

func handleModeV(b *Bot, _, _, _ string) (bool, error) {
	rt := b.Runtime()
	return true, b.NewOp(Op{Kind: OpModeVoice, Channel: rt.Channel, Nick: b.MsgNick()})
}

// handleDumpACL replies the grant ACLs to the requester as PMs.
func handleDumpACL(b *Bot, _, _, _ string) (bool, error) {
	rt := b.Runtime()
	nick := b.MsgNick()
	b.logger.Info("Dumping ACLs for %s", nick)

	dump := func(header string, rules []string) error {
		if err := b.NewMsg(nick, header); err != nil {
			return err
		}
		for _, r := range rules {
			if err := b.NewMsg(nick, r); err != nil {
				return err
			}
		}
		return b.NewMsg(nick, "<EOF>")
	}

	if err := dump("My +o ACL:", rt.ModeOACL.Rules()); err != nil {
		return false, err
	}
	if err := dump("My auto +o ACL:", rt.AutoOACL.Rules()); err != nil {
		return false, err
	}
	return true, nil
}

// handleSay relays text to a channel: "say #chan text" targets #chan,
// anything else goes to the default channel.
func handleSay(b *Bot, _, _, args string) (bool, error) {
	if strings.HasPrefix(args, "#") {
		if channel, text, found := strings.Cut(args, " "); found {
			return true, b.NewMsg(channel, text)
		}
	}
	return true, b.NewMsg(b.Runtime().Channel, args)
}

func handleNick(b *Bot, _, _, newNick string) (bool, error) {
	b.logger.Info("Trying to change nick to %s", newNick)
	return true, b.NewOp(Op{Kind: OpNick, Nick: newNick})
}

func handleJoin(b *Bot, _, _, newChan string) (bool, error) {
	b.logger.Info("Trying to join channel %s", newChan)
	return true, b.NewOp(Op{Kind: OpJoin, Channel: newChan})
}

// handleReload rebuilds the runtime config. Unlike every other failure,
// a reload failure is reported back to the requester so the operator who
// asked for it learns it did not take.
func handleReload(b *Bot, _, _, _ string) (bool, error) {
	b.logger.Warning("*** RELOADING CONFIG ***")
	nick := b.MsgNick()

	if err := b.Reload(); err != nil {
		_ = b.NewMsg(nick, err.Error())
		return false, err
	}
	return true, b.NewMsg(nick, "*** Reload successful.")
}
