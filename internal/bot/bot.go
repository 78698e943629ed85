// Package bot implements the event-dispatch and throttled-operation
// engine: it classifies inbound transport events, routes them to
// registered handlers, and serializes every outbound side effect through
// two fixed-cadence queues so the bot never floods the transport.
package bot

import (
	"fmt"
	"sync"
	"time"

	"github.com/yourusername/marvin/internal/config"
	"github.com/yourusername/marvin/internal/database"
	"github.com/yourusername/marvin/internal/fetch"
	"github.com/yourusername/marvin/internal/output"
	"github.com/yourusername/marvin/internal/queue"
)

const (
	opThrottle  = 3 * time.Second
	msgThrottle = 2 * time.Second
)

// RawHandler observes every inbound event before keyword routing.
// Returning true stops later raw handlers for that event.
type RawHandler func(b *Bot, ev *Event) (bool, error)

// MsgHandler handles one keyword command. A true result means the
// command was acted upon; false means "recognized, nothing to do" and
// lets the caller keep looking.
type MsgHandler func(b *Bot, msg, cmd, args string) (bool, error)

// Message is one queued chat reply.
type Message struct {
	Target string
	Text   string
}

// Bot is the dispatcher. It owns the runtime config snapshot, the
// handler tables, and the two outbound queues. HandleEvent must be
// called from a single goroutine (the transport's read loop); the queue
// consumers are the only other long-lived tasks.
type Bot struct {
	sender     Sender
	logger     output.Logger
	db         *database.DB
	fetcher    fetch.Fetcher
	configPath string

	mu     sync.RWMutex
	rt     *config.Runtime
	myNick string

	// SenderContext: origin of the event currently being dispatched.
	// Only valid during that event's synchronous processing; anything a
	// queued operation needs must be copied by value at enqueue time.
	msgNick     string
	msgUser     string
	msgHost     string
	msgUserhost string

	opQueue  *queue.FIFO[Op]
	msgQueue *queue.FIFO[Message]

	rawHandlers []RawHandler
	privmsgOpen map[string]MsgHandler
	privmsgPriv map[string]MsgHandler
	chanmsg     map[string]MsgHandler

	// Overridable in tests; default to the fixed throttle cadence.
	opDelay  time.Duration
	msgDelay time.Duration

	consumers sync.WaitGroup
}

// New creates a Bot around an already-built runtime snapshot.
func New(rt *config.Runtime, sender Sender, db *database.DB, fetcher fetch.Fetcher, logger output.Logger, configPath string) *Bot {
	b := &Bot{
		sender:      sender,
		logger:      logger,
		db:          db,
		fetcher:     fetcher,
		configPath:  configPath,
		rt:          rt,
		myNick:      rt.Server.Nickname,
		msgNick:     "NONE",
		msgUser:     "NONE",
		msgHost:     "NONE",
		msgUserhost: "NONE@NONE",
		opQueue:     queue.NewFIFO[Op](),
		msgQueue:    queue.NewFIFO[Message](),
		privmsgOpen: make(map[string]MsgHandler),
		privmsgPriv: make(map[string]MsgHandler),
		chanmsg:     make(map[string]MsgHandler),
		opDelay:     opThrottle,
		msgDelay:    msgThrottle,
	}
	return b
}

// Runtime returns the current config snapshot. Handlers capture it once
// at the start of processing and keep observing that same snapshot even
// across a concurrent reload.
func (b *Bot) Runtime() *config.Runtime {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rt
}

// MyNick returns the bot's current nickname.
func (b *Bot) MyNick() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.myNick
}

func (b *Bot) setMyNick(nick string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.myNick = nick
}

// SetMyNick records the server-confirmed nickname. The transport calls
// this at registration, when the server may have assigned an alternate.
func (b *Bot) SetMyNick(nick string) { b.setMyNick(nick) }

// MsgNick returns the nickname of the sender of the event currently
// being dispatched.
func (b *Bot) MsgNick() string { return b.msgNick }

// MsgUserhost returns the user@host identity string of the sender of the
// event currently being dispatched.
func (b *Bot) MsgUserhost() string { return b.msgUserhost }

// ClearHandlers empties every handler table. Called before
// re-registration on reload, because command keywords are themselves
// configuration values.
func (b *Bot) ClearHandlers() {
	b.rawHandlers = nil
	b.privmsgOpen = make(map[string]MsgHandler)
	b.privmsgPriv = make(map[string]MsgHandler)
	b.chanmsg = make(map[string]MsgHandler)
}

// RegisterRaw appends a raw-event observer. Observers run in
// registration order.
func (b *Bot) RegisterRaw(h RawHandler) {
	b.rawHandlers = append(b.rawHandlers, h)
}

// RegisterPrivmsgOpen registers a command any sender may use via PM.
func (b *Bot) RegisterPrivmsgOpen(keyword string, h MsgHandler) {
	b.privmsgOpen[keyword] = h
}

// RegisterPrivmsgPriv registers a command only privileged senders may
// use via PM.
func (b *Bot) RegisterPrivmsgPriv(keyword string, h MsgHandler) {
	b.privmsgPriv[keyword] = h
}

// RegisterChanmsg registers a channel-message keyword command.
func (b *Bot) RegisterChanmsg(keyword string, h MsgHandler) {
	b.chanmsg[keyword] = h
}

// Reload rebuilds the runtime snapshot from the config file and
// repopulates the handler tables from its command keywords. On failure
// the previous snapshot and handlers stay fully intact.
func (b *Bot) Reload() error {
	rt, err := config.Build(b.configPath)
	if err != nil {
		b.logger.Error("*** Reload failed: %v", err)
		return fmt.Errorf("could not rebuild runtime config from %s: %w", b.configPath, err)
	}

	b.mu.Lock()
	b.rt = rt
	b.mu.Unlock()

	RegisterCoreHandlers(b)
	b.logger.Info("*** Reload successful.")
	return nil
}

// StartQueues starts the two single-consumer queue tasks.
func (b *Bot) StartQueues() {
	b.consumers.Add(2)
	go func() {
		defer b.consumers.Done()
		queue.Consume(b.opQueue, b.opDelay, b.execOp, func(err error) {
			b.logger.Error("operation failed: %v", err)
		})
	}()
	go func() {
		defer b.consumers.Done()
		queue.Consume(b.msgQueue, b.msgDelay, b.sendMsg, func(err error) {
			b.logger.Error("message send failed: %v", err)
		})
	}()
}

// StopQueues closes both queues and waits for the consumers to drain.
func (b *Bot) StopQueues() {
	b.opQueue.Close()
	b.msgQueue.Close()
	b.consumers.Wait()
}

// NewOp enqueues an operation. Never blocks.
func (b *Bot) NewOp(op Op) error {
	if !b.opQueue.Push(op) {
		return fmt.Errorf("operation queue is closed")
	}
	return nil
}

// NewMsg enqueues a chat reply. Never blocks.
func (b *Bot) NewMsg(target, text string) error {
	b.logger.Debug("%s <%s> %s", target, b.MyNick(), text)
	if !b.msgQueue.Push(Message{Target: target, Text: text}) {
		return fmt.Errorf("message queue is closed")
	}
	return nil
}

func (b *Bot) sendMsg(m Message) error {
	return b.sender.SendMessage(m.Target, m.Text)
}
