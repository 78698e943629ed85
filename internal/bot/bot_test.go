package bot

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/yourusername/marvin/internal/config"
	"github.com/yourusername/marvin/internal/database"
	"github.com/yourusername/marvin/internal/output"
)

// recorder implements Sender and records every outbound call in order.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) record(format string, args ...interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
	return nil
}

func (r *recorder) SendMessage(target, text string) error {
	return r.record("MSG %s %s", target, text)
}
func (r *recorder) SendMode(channel, mode, nick string) error {
	return r.record("MODE %s %s %s", channel, mode, nick)
}
func (r *recorder) SendInvite(nick, channel string) error {
	return r.record("INVITE %s %s", nick, channel)
}
func (r *recorder) SendNick(newNick string) error {
	return r.record("NICK %s", newNick)
}
func (r *recorder) SendJoin(channel string) error {
	return r.record("JOIN %s", channel)
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// fakeFetcher implements fetch.Fetcher without network traffic.
type fakeFetcher struct {
	title       string
	titleErr    error
	body        string
	contentType string
	bodyErr     error
}

func (f *fakeFetcher) TextBody(_ context.Context, _ string) (string, string, error) {
	return f.body, f.contentType, f.bodyErr
}

func (f *fakeFetcher) PageTitle(_ context.Context, _ string) (string, error) {
	return f.title, f.titleErr
}

func testBotConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Bot.Channel = "#home"
	cfg.Bot.PrivilegedNicks = map[string]bool{"alice": true}
	cfg.ACL.ModeO = []string{`^good@trusted\.example$`}
	cfg.ACL.AutoO = []string{`^friend@auto\.example$`}
	cfg.ACL.InviteDenyNick = []string{`^banned$`}
	cfg.ACL.InviteDenyHost = []string{`\.spam\.example$`}
	cfg.Channels.URLFetch = map[string]bool{"*": true}
	cfg.Channels.URLLog = map[string]bool{"*": true}
	cfg.Channels.URLDupComplain = map[string]bool{"*": false}
	cfg.Channels.URLMut = map[string]bool{"*": false}
	cfg.Channels.URLCmd = map[string]bool{"*": true}
	cfg.Bot.URLBlacklist = []string{"https://internal.example/"}
	cfg.URLCommands = map[string]config.URLCommand{
		"ascii": {URLTemplate: `https://svc.example/{{.arg}}`, OutputFilter: `(?m)^out: (.*)$`},
	}
	return cfg
}

type testBot struct {
	*Bot
	sender  *recorder
	fetcher *fakeFetcher
	db      *database.DB
}

func newTestBot(t *testing.T, cfg *config.Config) *testBot {
	t.Helper()

	rt, err := config.Compile(cfg)
	if err != nil {
		t.Fatalf("Compile() failed: %v", err)
	}

	sender := &recorder{}
	fetcher := &fakeFetcher{}
	db := database.NewTestDB(t)

	// configPath points at a real file so reload tests can rewrite it.
	path := filepath.Join(t.TempDir(), "bot.toml")
	if err := config.CreateDefault(path, cfg); err != nil {
		t.Fatalf("CreateDefault() failed: %v", err)
	}

	b := New(rt, sender, db, fetcher, output.Nop{}, path)
	b.opDelay = 0
	b.msgDelay = 0
	RegisterCoreHandlers(b)

	return &testBot{Bot: b, sender: sender, fetcher: fetcher, db: db}
}

// privmsg feeds a direct message to the dispatcher.
func (tb *testBot) privmsg(nick, userhost, text string) {
	user, host, _ := splitUserhost(userhost)
	tb.HandleEvent(&Event{
		Kind:   EventPrivmsg,
		Nick:   nick,
		User:   user,
		Host:   host,
		Target: tb.MyNick(),
		Text:   text,
	})
}

// chanmsg feeds a channel message to the dispatcher.
func (tb *testBot) chanmsgEvent(nick, userhost, channel, text string) {
	user, host, _ := splitUserhost(userhost)
	tb.HandleEvent(&Event{
		Kind:   EventPrivmsg,
		Nick:   nick,
		User:   user,
		Host:   host,
		Target: channel,
		Text:   text,
	})
}

func splitUserhost(userhost string) (user, host string, ok bool) {
	for i := 0; i < len(userhost); i++ {
		if userhost[i] == '@' {
			return userhost[:i], userhost[i+1:], true
		}
	}
	return userhost, "", false
}

// drainOps pops every queued operation without executing it.
func drainOps(b *Bot) []Op {
	var ops []Op
	for b.opQueue.Len() > 0 {
		op, _ := b.opQueue.Pop()
		ops = append(ops, op)
	}
	return ops
}

// drainMsgs pops every queued chat reply without sending it.
func drainMsgs(b *Bot) []Message {
	var msgs []Message
	for b.msgQueue.Len() > 0 {
		m, _ := b.msgQueue.Pop()
		msgs = append(msgs, m)
	}
	return msgs
}
