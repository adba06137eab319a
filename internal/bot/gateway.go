package bot

import (
	"context"
	"errors"
	"net/http"

	"community-assistant/internal/giveaway"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Gateway renders giveaway announcements through a discordgo session. Edits
// are rate limited because every join refreshes the participant count.
type Gateway struct {
	session  *discordgo.Session
	limiter  *rate.Limiter
	color    int
	language func(ctx context.Context, guildID string) string
	logger   *zap.Logger
}

func NewGateway(session *discordgo.Session, editsPerSecond float64, color int, language func(ctx context.Context, guildID string) string, logger *zap.Logger) *Gateway {
	limit := rate.Inf
	burst := 1
	if editsPerSecond > 0 {
		limit = rate.Limit(editsPerSecond)
		burst = int(editsPerSecond)
		if burst < 1 {
			burst = 1
		}
	}
	return &Gateway{
		session:  session,
		limiter:  rate.NewLimiter(limit, burst),
		color:    color,
		language: language,
		logger:   logger,
	}
}

func (g *Gateway) lang(ctx context.Context, guildID string) string {
	if g.language == nil {
		return "es"
	}
	return g.language(ctx, guildID)
}

func (g *Gateway) SendAnnouncement(ctx context.Context, channelID string, a giveaway.Announcement) (giveaway.MessageRef, error) {
	r := renderAnnouncement(g.lang(ctx, a.Giveaway.GuildID), g.color, a)
	send := &discordgo.MessageSend{
		Content:         r.content,
		Components:      r.components,
		AllowedMentions: r.mentions,
	}
	if r.embed != nil {
		send.Embeds = []*discordgo.MessageEmbed{r.embed}
	}
	msg, err := g.session.ChannelMessageSendComplex(channelID, send)
	if err != nil {
		return giveaway.MessageRef{}, err
	}
	return giveaway.MessageRef{ChannelID: msg.ChannelID, MessageID: msg.ID}, nil
}

func (g *Gateway) EditAnnouncement(ctx context.Context, ref giveaway.MessageRef, a giveaway.Announcement) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return err
	}
	r := renderAnnouncement(g.lang(ctx, a.Giveaway.GuildID), g.color, a)
	edit := discordgo.NewMessageEdit(ref.ChannelID, ref.MessageID)
	if r.embed != nil {
		edit.SetEmbed(r.embed)
	}
	if r.content != "" {
		edit.SetContent(r.content)
	}
	if r.components != nil {
		components := r.components
		edit.Components = &components
	}
	edit.AllowedMentions = r.mentions
	_, err := g.session.ChannelMessageEditComplex(edit)
	return err
}

// FetchAnnouncement reports absent, not an error, when the message is gone.
func (g *Gateway) FetchAnnouncement(ctx context.Context, channelID, messageID string) (giveaway.MessageRef, bool, error) {
	msg, err := g.session.ChannelMessage(channelID, messageID)
	if err != nil {
		if isNotFound(err) {
			return giveaway.MessageRef{}, false, nil
		}
		return giveaway.MessageRef{}, false, err
	}
	return giveaway.MessageRef{ChannelID: msg.ChannelID, MessageID: msg.ID}, true, nil
}

func isNotFound(err error) bool {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		return restErr.Response.StatusCode == http.StatusNotFound
	}
	return false
}
