package app

import (
	"strings"

	"go.uber.org/zap"

	"gfx.cafe/gfx/protocolcontrol/lib/catalog"
	"gfx.cafe/gfx/protocolcontrol/lib/event"
	"gfx.cafe/gfx/protocolcontrol/lib/packets"
	"gfx.cafe/gfx/protocolcontrol/lib/structure"
)

func player(ev *event.PacketEvent) zap.Field {
	if profile := ev.Profile(); profile != nil {
		if p, ok := profile.Principal(); ok {
			return zap.String("player", p.(*Player).Name)
		}
	}
	return zap.Skip()
}

// chatLogger logs every chat line after every other subscriber has seen it.
type chatLogger struct {
	log *zap.Logger
}

func (T *chatLogger) Subscriptions() []event.Subscription {
	sub := event.On("chat logger", func(ev *event.PacketEvent, msg *packets.ChatMessage) error {
		T.log.Info(
			"chat",
			player(ev),
			zap.String("message", msg.Message),
			zap.Bool("cancelled", ev.Cancelled()),
		)
		return nil
	})
	sub.Direction = catalog.Incoming
	sub.Order = event.Post
	sub.IgnoreCancelled = true
	return []event.Subscription{sub}
}

// wordFilter cancels incoming chat lines containing a blocked word.
type wordFilter struct {
	words []string
	reply string
}

func newWordFilter(config FilterConfig) *wordFilter {
	words := make([]string, 0, len(config.Words))
	for _, word := range config.Words {
		if word = strings.ToLower(strings.TrimSpace(word)); word != "" {
			words = append(words, word)
		}
	}
	return &wordFilter{
		words: words,
		reply: config.Reply,
	}
}

func (T *wordFilter) blocked(line string) bool {
	line = strings.ToLower(line)
	for _, word := range T.words {
		if strings.Contains(line, word) {
			return true
		}
	}
	return false
}

func (T *wordFilter) Subscriptions() []event.Subscription {
	sub := event.On("word filter", func(ev *event.PacketEvent, msg *packets.ChatMessage) error {
		if !T.blocked(msg.Message) {
			return nil
		}
		ev.Cancel()
		if T.reply != "" && ev.Profile() != nil {
			ev.Profile().Send(catalog.Outgoing, &packets.ChatPacket{
				Message:  text(packets.Text{Text: T.reply, Color: "red"}),
				Position: int8(packets.SystemMessage),
			})
		}
		return nil
	})
	sub.Direction = catalog.Incoming
	sub.Order = event.Early
	return []event.Subscription{sub}
}

// chatPrefix prepends a prefix to every chat line shown to players. It edits the message through the structure
// cache, so it works on the translated text component rather than the raw JSON.
type chatPrefix struct {
	prefix string
	cache  *structure.Cache
}

func (T *chatPrefix) Subscriptions() []event.Subscription {
	return []event.Subscription{
		{
			Name:      "chat prefix",
			Kind:      &packets.Chat,
			Direction: catalog.Outgoing,
			Order:     event.Late,
			Handler: func(ev *event.PacketEvent) error {
				w, err := ev.Wrap(T.cache)
				if err != nil {
					return err
				}
				position, err := structure.Get[packets.ChatPosition](w, 0)
				if err != nil {
					return err
				}
				if position != packets.ChatBox {
					return nil
				}
				line, err := structure.Get[packets.Text](w, 0)
				if err != nil {
					return err
				}
				return structure.Set(w, 0, packets.Text{
					Text:  T.prefix,
					Extra: []packets.Text{line},
				})
			},
		},
	}
}

var _ event.Listener = (*chatLogger)(nil)
var _ event.Listener = (*wordFilter)(nil)
var _ event.Listener = (*chatPrefix)(nil)
