package bot

import (
	"strings"
	"testing"

	"github.com/yourusername/marvin/internal/config"
)

func TestChanmsg_URLProducesLogAndTitleOps(t *testing.T) {
	tb := newTestBot(t, testBotConfig())

	tb.chanmsgEvent("bob", "bob@host.example", "#home", "check out http://example.com/page")

	ops := drainOps(tb.Bot)
	if len(ops) != 2 {
		t.Fatalf("got %d ops, want 2: %+v", len(ops), ops)
	}
	if ops[0].Kind != OpURLLog || ops[0].URL != "http://example.com/page" {
		t.Errorf("ops[0] = %+v, want url log", ops[0])
	}
	if ops[0].Nick != "bob" || ops[0].Channel != "#home" {
		t.Errorf("log op should capture sender and channel by value: %+v", ops[0])
	}
	if ops[1].Kind != OpURLTitle || ops[1].URL != "http://example.com/page" {
		t.Errorf("ops[1] = %+v, want title fetch", ops[1])
	}
}

func TestChanmsg_DupCheckPrecedesLog(t *testing.T) {
	cfg := testBotConfig()
	cfg.Channels.URLDupComplain = map[string]bool{"*": true}
	tb := newTestBot(t, cfg)

	tb.chanmsgEvent("bob", "bob@host.example", "#home", "http://example.com/x")

	ops := drainOps(tb.Bot)
	if len(ops) != 3 {
		t.Fatalf("got %d ops, want 3: %+v", len(ops), ops)
	}
	wantKinds := []OpKind{OpURLCheck, OpURLLog, OpURLTitle}
	for i, w := range wantKinds {
		if ops[i].Kind != w {
			t.Errorf("ops[%d].Kind = %v, want %v", i, ops[i].Kind, w)
		}
	}
}

func TestChanmsg_MultipleURLs(t *testing.T) {
	tb := newTestBot(t, testBotConfig())

	tb.chanmsgEvent("bob", "bob@host.example", "#home",
		"both http://a.example/1 and http://b.example/2 are good")

	ops := drainOps(tb.Bot)
	var urls []string
	for _, op := range ops {
		if op.Kind == OpURLTitle {
			urls = append(urls, op.URL)
		}
	}
	if len(urls) != 2 || urls[0] != "http://a.example/1" || urls[1] != "http://b.example/2" {
		t.Errorf("title ops for %v, want both urls in message order", urls)
	}
}

func TestChanmsg_BlacklistedURLIgnored(t *testing.T) {
	tb := newTestBot(t, testBotConfig())

	tb.chanmsgEvent("bob", "bob@host.example", "#home", "https://internal.example/secret")

	if ops := drainOps(tb.Bot); len(ops) != 0 {
		t.Errorf("blacklisted url produced ops: %+v", ops)
	}
}

func TestChanmsg_FlagsDisableOps(t *testing.T) {
	cfg := testBotConfig()
	cfg.Channels.URLFetch = map[string]bool{"*": false}
	cfg.Channels.URLLog = map[string]bool{"*": false}
	tb := newTestBot(t, cfg)

	tb.chanmsgEvent("bob", "bob@host.example", "#home", "http://example.com/page")

	if ops := drainOps(tb.Bot); len(ops) != 0 {
		t.Errorf("disabled flags still produced ops: %+v", ops)
	}
}

func TestChanmsg_WildcardFallbackPerChannel(t *testing.T) {
	cfg := testBotConfig()
	cfg.Channels.URLFetch = map[string]bool{"*": false, "#special": true}
	cfg.Channels.URLLog = map[string]bool{"*": false}
	tb := newTestBot(t, cfg)

	tb.chanmsgEvent("bob", "bob@host.example", "#special", "http://example.com/a")
	tb.chanmsgEvent("bob", "bob@host.example", "#other", "http://example.com/b")

	ops := drainOps(tb.Bot)
	if len(ops) != 1 || ops[0].Channel != "#special" {
		t.Errorf("ops = %+v, want one title op for #special only", ops)
	}
}

func TestChanmsg_RewriteAnnouncesAndRefetches(t *testing.T) {
	cfg := testBotConfig()
	cfg.Channels.URLMut = map[string]bool{"*": true}
	cfg.Channels.URLLog = map[string]bool{"*": false}
	cfg.URLRewrites = []config.URLRewrite{
		{Pattern: `^https://twitter\.com/(.*)$`, Replacement: "https://nitter.net/$1"},
	}
	tb := newTestBot(t, cfg)

	tb.chanmsgEvent("bob", "bob@host.example", "#home", "https://twitter.com/x/status/1")

	msgs := drainMsgs(tb.Bot)
	if len(msgs) != 1 || msgs[0].Text != "https://nitter.net/x/status/1" {
		t.Fatalf("msgs = %+v, want rewritten url announcement", msgs)
	}

	ops := drainOps(tb.Bot)
	// Original title fetch plus the follow-up for the rewritten URL.
	if len(ops) != 2 || ops[1].URL != "https://nitter.net/x/status/1" {
		t.Errorf("ops = %+v, want follow-up title op for rewritten url", ops)
	}
}

func TestChanmsg_URLCommand(t *testing.T) {
	tb := newTestBot(t, testBotConfig())

	tb.chanmsgEvent("bob", "bob@host.example", "#home", "!ascii hello world")

	ops := drainOps(tb.Bot)
	if len(ops) != 1 || ops[0].Kind != OpURLFetch {
		t.Fatalf("ops = %+v, want one url fetch", ops)
	}
	if ops[0].URL != "https://svc.example/hello world" {
		t.Errorf("rendered url = %q", ops[0].URL)
	}
	if ops[0].Filter == nil {
		t.Error("fetch op should carry the output filter")
	}
}

func TestChanmsg_UnknownBangCommandFallsThrough(t *testing.T) {
	tb := newTestBot(t, testBotConfig())

	tb.chanmsgEvent("bob", "bob@host.example", "#home", "!nosuch http://example.com/x")

	ops := drainOps(tb.Bot)
	// Unknown command: the message still goes through URL detection.
	if len(ops) != 2 {
		t.Errorf("ops = %+v, want url scan results", ops)
	}
}

func TestPrivmsg_SayPrivilegedOnly(t *testing.T) {
	tb := newTestBot(t, testBotConfig())

	tb.privmsg("alice", "alice@trusted.example", "say #other hello")
	msgs := drainMsgs(tb.Bot)
	if len(msgs) != 1 || msgs[0].Target != "#other" || msgs[0].Text != "hello" {
		t.Fatalf("msgs = %+v, want hello to #other", msgs)
	}

	tb.privmsg("mallory", "mallory@evil.example", "say #other hello")
	if msgs := drainMsgs(tb.Bot); len(msgs) != 0 {
		t.Errorf("non-privileged say produced %+v", msgs)
	}
}

func TestPrivmsg_SayDefaultChannel(t *testing.T) {
	tb := newTestBot(t, testBotConfig())

	tb.privmsg("alice", "alice@trusted.example", "say just words")
	msgs := drainMsgs(tb.Bot)
	if len(msgs) != 1 || msgs[0].Target != "#home" || msgs[0].Text != "just words" {
		t.Errorf("msgs = %+v, want text to default channel", msgs)
	}
}

func TestPrivmsg_ModeO_ACLMatchAndFallback(t *testing.T) {
	tb := newTestBot(t, testBotConfig())

	tb.privmsg("gooduser", "good@trusted.example", "op")
	tb.privmsg("other", "other@nowhere.example", "op")

	ops := drainOps(tb.Bot)
	if len(ops) != 2 {
		t.Fatalf("ops = %+v, want 2", ops)
	}
	if ops[0].Kind != OpModeOper || ops[0].Nick != "gooduser" {
		t.Errorf("ops[0] = %+v, want +o for ACL match", ops[0])
	}
	if ops[1].Kind != OpModeVoice || ops[1].Nick != "other" {
		t.Errorf("ops[1] = %+v, want +v fallback", ops[1])
	}
}

func TestPrivmsg_InviteDenyLists(t *testing.T) {
	tb := newTestBot(t, testBotConfig())

	tb.privmsg("banned", "user@ok.example", "invite")
	tb.privmsg("someone", "user@relay.spam.example", "invite")
	tb.privmsg("friendly", "user@fine.example", "invite")

	ops := drainOps(tb.Bot)
	if len(ops) != 1 {
		t.Fatalf("ops = %+v, want only the allowed invite", ops)
	}
	if ops[0].Kind != OpInvite || ops[0].Nick != "friendly" || ops[0].Channel != "#home" {
		t.Errorf("ops[0] = %+v", ops[0])
	}
}

func TestPrivmsg_DumpACL(t *testing.T) {
	tb := newTestBot(t, testBotConfig())

	tb.privmsg("alice", "alice@trusted.example", "dumpacl")

	msgs := drainMsgs(tb.Bot)
	var texts []string
	for _, m := range msgs {
		if m.Target != "alice" {
			t.Errorf("dump line sent to %q, want alice", m.Target)
		}
		texts = append(texts, m.Text)
	}
	joined := strings.Join(texts, "\n")
	for _, want := range []string{"My +o ACL:", `^good@trusted\.example$`, "My auto +o ACL:", "<EOF>"} {
		if !strings.Contains(joined, want) {
			t.Errorf("dump output missing %q:\n%s", want, joined)
		}
	}
}

func TestNickChange_TracksOwnNickOnly(t *testing.T) {
	tb := newTestBot(t, testBotConfig())
	oldNick := tb.MyNick()

	tb.HandleEvent(&Event{Kind: EventNick, Nick: "someoneelse", User: "u", Host: "h", Text: "newname"})
	if tb.MyNick() != oldNick {
		t.Error("other user's nick change must not affect own nick")
	}

	tb.HandleEvent(&Event{Kind: EventNick, Nick: oldNick, User: "u", Host: "h", Text: "marvin2"})
	if tb.MyNick() != "marvin2" {
		t.Errorf("MyNick() = %q, want marvin2", tb.MyNick())
	}

	// Directed messages now route using the new nick.
	tb.HandleEvent(&Event{
		Kind: EventPrivmsg, Nick: "alice", User: "alice", Host: "trusted.example",
		Target: "marvin2", Text: "say hi there",
	})
	if msgs := drainMsgs(tb.Bot); len(msgs) != 1 {
		t.Errorf("message to new nick not routed as PM: %+v", msgs)
	}
}

func TestJoin_AutoOp(t *testing.T) {
	tb := newTestBot(t, testBotConfig())

	tb.HandleEvent(&Event{Kind: EventJoin, Nick: "pal", User: "friend", Host: "auto.example", Target: "#home"})
	tb.HandleEvent(&Event{Kind: EventJoin, Nick: "rando", User: "x", Host: "y.example", Target: "#home"})

	ops := drainOps(tb.Bot)
	if len(ops) != 1 || ops[0].Kind != OpModeOper || ops[0].Nick != "pal" {
		t.Errorf("ops = %+v, want auto-op for pal only", ops)
	}
}

func TestJoin_SelfIgnored(t *testing.T) {
	tb := newTestBot(t, testBotConfig())

	tb.HandleEvent(&Event{Kind: EventJoin, Nick: tb.MyNick(), User: "friend", Host: "auto.example", Target: "#home"})

	if ops := drainOps(tb.Bot); len(ops) != 0 {
		t.Errorf("own join produced ops: %+v", ops)
	}
}

func TestServerEvent_NoneSentinels(t *testing.T) {
	tb := newTestBot(t, testBotConfig())

	tb.HandleEvent(&Event{Kind: EventOther})

	if tb.MsgNick() != "NONE" || tb.MsgUserhost() != "NONE@NONE" {
		t.Errorf("sender context = %q/%q, want NONE sentinels", tb.MsgNick(), tb.MsgUserhost())
	}
}

func TestSplitCommand(t *testing.T) {
	tests := []struct {
		input    string
		wantCmd  string
		wantArgs string
	}{
		{input: "say #chan hello", wantCmd: "say", wantArgs: "#chan hello"},
		{input: "reload", wantCmd: "reload", wantArgs: ""},
		{input: "op\textra", wantCmd: "op", wantArgs: "extra"},
		{input: "", wantCmd: "", wantArgs: ""},
	}
	for _, tt := range tests {
		cmd, args := splitCommand(tt.input)
		if cmd != tt.wantCmd || args != tt.wantArgs {
			t.Errorf("splitCommand(%q) = (%q, %q), want (%q, %q)",
				tt.input, cmd, args, tt.wantCmd, tt.wantArgs)
		}
	}
}
