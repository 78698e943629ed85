package bot

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/yourusername/marvin/internal/database"
	"github.com/yourusername/marvin/internal/errors"
	"github.com/yourusername/marvin/internal/textutil"
)

// OpKind tags an Op variant.
type OpKind int

const (
	// OpModeVoice grants +v to Nick on Channel.
	OpModeVoice OpKind = iota
	// OpModeOper grants +o to Nick on Channel.
	OpModeOper
	// OpInvite invites Nick to Channel.
	OpInvite
	// OpNick changes the bot's nickname to Nick.
	OpNick
	// OpJoin makes the bot join Channel.
	OpJoin
	// OpURLCheck reports prior sightings of URL on Channel inside Window.
	OpURLCheck
	// OpURLTitle fetches URL and announces its page title on Channel.
	OpURLTitle
	// OpURLLog persists one sighting of URL.
	OpURLLog
	// OpURLFetch fetches URL and announces every Filter match on Channel.
	OpURLFetch
)

// Op is a tagged value on the operation queue. It carries everything its
// execution needs by value; there is no back-reference to dispatcher
// state, so the SenderContext may move on freely once an Op is queued.
type Op struct {
	Kind    OpKind
	Channel string
	Nick    string
	URL     string
	Seen    int64
	Window  time.Duration
	Loc     *time.Location
	Filter  *regexp.Regexp
}

// execOp runs one operation inside the OperationQueue consumer. All
// enrichment work happens here too, so it shares the queue's throttle.
func (b *Bot) execOp(op Op) error {
	switch op.Kind {
	case OpModeVoice:
		return wrapTransport("mode +v", b.sender.SendMode(op.Channel, "+v", op.Nick))
	case OpModeOper:
		return wrapTransport("mode +o", b.sender.SendMode(op.Channel, "+o", op.Nick))
	case OpInvite:
		return wrapTransport("invite", b.sender.SendInvite(op.Nick, op.Channel))
	case OpNick:
		return wrapTransport("nick", b.sender.SendNick(op.Nick))
	case OpJoin:
		return wrapTransport("join", b.sender.SendJoin(op.Channel))
	case OpURLCheck:
		return b.execURLCheck(op)
	case OpURLTitle:
		return b.execURLTitle(op)
	case OpURLLog:
		return b.execURLLog(op)
	case OpURLFetch:
		return b.execURLFetch(op)
	default:
		return fmt.Errorf("unknown operation kind %d", op.Kind)
	}
}

func wrapTransport(what string, err error) error {
	if err != nil {
		return errors.NewTransportError(what, err)
	}
	return nil
}

// execURLCheck reports prior sightings of a URL. Silence when the URL is
// new inside the window.
func (b *Bot) execURLCheck(op Op) error {
	stats, err := b.db.QueryURL(op.URL, op.Channel, op.Window)
	if err != nil {
		return err
	}
	if stats.Count == 0 {
		return nil
	}

	var msg string
	if stats.Count == 1 {
		msg = fmt.Sprintf("Old URL, seen %s", textutil.FormatStamp(stats.FirstSeen, op.Loc))
	} else {
		msg = fmt.Sprintf("Old URL, seen %d times, first %s and last %s",
			stats.Count,
			textutil.FormatStamp(stats.FirstSeen, op.Loc),
			textutil.FormatStamp(stats.LastSeen, op.Loc))
	}
	return b.NewMsg(op.Channel, msg)
}

func (b *Bot) execURLTitle(op Op) error {
	title, err := b.fetcher.PageTitle(context.Background(), op.URL)
	if err != nil {
		return err
	}
	if title == "" {
		// Not HTML, no title, or the title just echoed the URL.
		return nil
	}
	return b.NewMsg(op.Channel, fmt.Sprintf("%q", title))
}

func (b *Bot) execURLLog(op Op) error {
	rec := &database.URLRecord{
		Seen:    op.Seen,
		Channel: op.Channel,
		Nick:    op.Nick,
		URL:     op.URL,
	}
	// InsertURL retries internally; an exhausted retry budget means the
	// record is dropped, logged by the consumer loop.
	return b.db.InsertURL(rec)
}

// execURLFetch runs a templated url command: fetch the rendered URL and
// reply one line per output-filter match.
func (b *Bot) execURLFetch(op Op) error {
	body, contentType, err := b.fetcher.TextBody(context.Background(), op.URL)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(contentType, "text/") {
		return nil
	}

	for _, m := range op.Filter.FindAllStringSubmatch(body, -1) {
		line := m[0]
		if len(m) > 1 {
			line = m[1]
		}
		if err := b.NewMsg(op.Channel, "--> "+line); err != nil {
			return err
		}
	}
	return nil
}
