package bot

// EventKind classifies an inbound transport event.
type EventKind int

const (
	// EventOther is any event the bot has no specific routing for.
	// Raw handlers still see it.
	EventOther EventKind = iota
	// EventJoin is a channel join.
	EventJoin
	// EventPrivmsg is a chat message, either to a channel or directly
	// to the bot.
	EventPrivmsg
	// EventNick is a nickname-change notification.
	EventNick
)

// Event is one parsed inbound unit from the chat network. Origin fields
// are empty for server-originated events; the dispatcher substitutes
// "NONE" sentinels.
type Event struct {
	Kind EventKind

	// Origin of the event.
	Nick string
	User string
	Host string

	// Target is the channel for joins and channel messages, or the
	// bot's nickname for direct messages.
	Target string

	// Text is the message body for EventPrivmsg, or the new nickname
	// for EventNick.
	Text string
}

// Sender is the outbound side of the transport. All sends funnel through
// the two queues; nothing else calls these directly.
type Sender interface {
	SendMessage(target, text string) error
	SendMode(channel, mode, nick string) error
	SendInvite(nick, channel string) error
	SendNick(newNick string) error
	SendJoin(channel string) error
}
