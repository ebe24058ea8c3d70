package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"unibase/internal/game"

	"github.com/bwmarrin/discordgo"
)

const queueSize = 32

// Sender is the subset of *discordgo.Session the notifier needs.
type Sender interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Discord is a game.LogSink. Append never blocks: lines that arrive while
// the queue is full are dropped and counted.
type Discord struct {
	sender    Sender
	channelID string
	logger    *slog.Logger
	queue     chan string
	dropped   atomic.Int64
}

func NewDiscord(token, channelID string, logger *slog.Logger) (*Discord, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	return NewWithSender(session, channelID, logger), nil
}

func NewWithSender(sender Sender, channelID string, logger *slog.Logger) *Discord {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discord{
		sender:    sender,
		channelID: channelID,
		logger:    logger,
		queue:     make(chan string, queueSize),
	}
}

func Forwarded(tag game.Tag) bool {
	return tag == game.TagFund || tag == game.TagReset
}

func (d *Discord) Append(tag game.Tag, message string) {
	if !Forwarded(tag) {
		return
	}
	select {
	case d.queue <- fmt.Sprintf("**[%s]** %s", tag, message):
	default:
		d.dropped.Add(1)
	}
}

func (d *Discord) Dropped() int64 {
	return d.dropped.Load()
}

// Run delivers queued messages until ctx is cancelled, then drains
// whatever is already queued.
func (d *Discord) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case msg := <-d.queue:
					d.send(msg)
				default:
					return
				}
			}
		case msg := <-d.queue:
			d.send(msg)
		}
	}
}

func (d *Discord) send(msg string) {
	if _, err := d.sender.ChannelMessageSend(d.channelID, msg); err != nil {
		d.logger.Warn("discord send failed", "err", err)
	}
}
