package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"community-assistant/internal/analytics"
	"community-assistant/internal/config"
	"community-assistant/internal/giveaway"
	"community-assistant/internal/invites"
	"community-assistant/internal/modules/audit"
	"community-assistant/internal/modules/automod"
	"community-assistant/internal/modules/autorole"
	"community-assistant/internal/storage"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const (
	warningLifetime = 5 * time.Second
	auditAggWindow  = 10 * time.Minute
)

type Bot struct {
	cfg        config.Config
	logger     *zap.Logger
	store      *storage.Store
	audit      *audit.Logger
	analytics  *analytics.Service
	session    *discordgo.Session
	engine     *giveaway.Engine
	gateway    *Gateway
	invites    *invites.Tracker
	automod    *automod.Module
	autorole   *autorole.Module
	auditAgg   map[string]*auditAggregate
	auditAggMu sync.Mutex
}

type auditAggregate struct {
	channelID string
	messageID string
	count     int
	lastAt    time.Time
}

func New(cfg config.Config, logger *zap.Logger, store *storage.Store, auditLogger *audit.Logger, analyticsService *analytics.Service) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, err
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildInvites |
		discordgo.IntentsMessageContent

	b := &Bot{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		audit:     auditLogger,
		analytics: analyticsService,
		session:   session,
		auditAgg:  make(map[string]*auditAggregate),
	}

	b.invites = invites.NewTracker(inviteFetcher(session), cfg.Giveaway.InviteCacheTTL, logger)
	b.gateway = NewGateway(session, cfg.Giveaway.EditRatePerSecond, cfg.Notifications.EmbedColors.Giveaway, b.language, logger)
	b.engine = giveaway.NewEngine(
		giveaway.Config{SweepInterval: cfg.Giveaway.SweepInterval, MaxWinners: cfg.Giveaway.MaxWinners},
		giveaway.NewLedger(cfg.Giveaway.LedgerCapacity),
		b.gateway,
		NewOracle(session, b.invites),
		logger.Named("giveaway"),
	)
	b.automod = automod.New(cfg.Automod, store, auditLogger, logger)
	b.autorole = autorole.New(store, auditLogger, logger)

	if b.audit != nil {
		b.engine.SetNotifier(b.audit.Giveaway)
		b.audit.SetNotifier(func(ctx context.Context, entry storage.AuditLog) {
			if !b.cfg.Notifications.AuditToChannel {
				return
			}
			b.notifyAudit(ctx, entry)
		})
	}

	return b, nil
}

func (b *Bot) Start() error {
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onMessageCreate)
	b.session.AddHandler(b.onGuildMemberAdd)
	b.session.AddHandler(b.onInviteCreate)
	b.session.AddHandler(b.onInviteDelete)
	b.session.AddHandler(b.onInteractionCreate)

	if err := b.session.Open(); err != nil {
		return err
	}

	if err := b.registerCommands(); err != nil {
		return err
	}

	b.engine.Start()
	return nil
}

func (b *Bot) Close(ctx context.Context) {
	_ = ctx
	b.engine.Stop()
	if b.session != nil {
		_ = b.session.Close()
	}
}

func (b *Bot) onReady(session *discordgo.Session, event *discordgo.Ready) {
	b.logger.Info("discord ready", zap.String("user", session.State.User.Username), zap.Int("guilds", len(event.Guilds)))
}

func (b *Bot) onMessageCreate(session *discordgo.Session, msg *discordgo.MessageCreate) {
	if msg.Author == nil || msg.Author.Bot {
		return
	}
	if msg.GuildID == "" {
		return
	}

	b.engine.RecordActivity(msg.Author.ID)

	ctx := context.Background()
	settings := b.guildSettings(ctx, msg.GuildID)
	verdict, flagged := b.automod.HandleMessage(ctx, session, automod.FromDiscord(msg.Message), settings)
	if !flagged {
		return
	}
	b.sendAutomodWarning(msg.ChannelID, msg.Author.ID, settings, verdict)
}

func (b *Bot) sendAutomodWarning(channelID, userID string, settings storage.GuildSettings, verdict automod.Verdict) {
	lang := settings.Language
	var text string
	switch verdict.Rule {
	case automod.RuleMentions:
		text = b.t(lang, "automod_warn_mentions", userID, settings.MaxMentions)
	case automod.RuleWords:
		text = b.t(lang, "automod_warn_words", userID)
	case automod.RuleLinks:
		text = b.t(lang, "automod_warn_links", userID)
	case automod.RuleFlood:
		text = b.t(lang, "automod_warn_flood", userID)
	default:
		return
	}
	warning, err := b.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:         text,
		AllowedMentions: &discordgo.MessageAllowedMentions{Users: []string{userID}},
	})
	if err != nil || warning == nil {
		return
	}
	time.AfterFunc(warningLifetime, func() {
		_ = b.session.ChannelMessageDelete(channelID, warning.ID)
	})
}

func (b *Bot) onGuildMemberAdd(session *discordgo.Session, event *discordgo.GuildMemberAdd) {
	if event.Member == nil || event.Member.User == nil {
		return
	}
	b.autorole.HandleJoin(context.Background(), roleAdder{session}, event.GuildID, event.Member.User.ID, event.Member.User.Bot)
}

func (b *Bot) onInviteCreate(session *discordgo.Session, event *discordgo.InviteCreate) {
	b.invites.Invalidate(event.GuildID)
}

func (b *Bot) onInviteDelete(session *discordgo.Session, event *discordgo.InviteDelete) {
	b.invites.Invalidate(event.GuildID)
}

func (b *Bot) buildAuditEmbed(lang string, entry storage.AuditLog, count int) *discordgo.MessageEmbed {
	userValue := "<@" + entry.UserID + ">"
	if entry.UserID == "" {
		userValue = b.t(lang, "value_system")
	}
	color := b.cfg.Notifications.EmbedColors.Action
	switch entry.Level {
	case audit.LevelWarn:
		color = b.cfg.Notifications.EmbedColors.Warning
	case audit.LevelCrit:
		color = b.cfg.Notifications.EmbedColors.Error
	}
	fields := []*discordgo.MessageEmbedField{
		{Name: b.t(lang, "field_event"), Value: entry.Event, Inline: false},
		{Name: b.t(lang, "field_level"), Value: entry.Level, Inline: true},
		{Name: b.t(lang, "field_user"), Value: userValue, Inline: true},
	}
	if count > 1 {
		fields = append(fields, &discordgo.MessageEmbedField{Name: b.t(lang, "field_total"), Value: fmt.Sprintf("%d", count), Inline: true})
	}
	if entry.Details != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: b.t(lang, "field_details"), Value: entry.Details, Inline: false})
	}
	return &discordgo.MessageEmbed{
		Title:     b.t(lang, "audit_title"),
		Color:     color,
		Timestamp: entry.CreatedAt.Format(time.RFC3339),
		Fields:    fields,
	}
}

// notifyAudit mirrors an entry to the guild's log channel. Repeats of the same
// entry inside the aggregation window bump a counter on the earlier message.
func (b *Bot) notifyAudit(ctx context.Context, entry storage.AuditLog) {
	if entry.GuildID == "" {
		return
	}
	settings := b.guildSettings(ctx, entry.GuildID)
	channelID := settings.LogChannel
	if channelID == "" {
		return
	}
	lang := settings.Language

	key := entry.GuildID + "|" + entry.Level + "|" + entry.Event + "|" + entry.Details + "|" + entry.UserID

	b.auditAggMu.Lock()
	agg := b.auditAgg[key]
	if agg != nil && agg.channelID == channelID && time.Since(agg.lastAt) <= auditAggWindow {
		agg.count++
		agg.lastAt = time.Now()
		count := agg.count
		messageID := agg.messageID
		b.auditAggMu.Unlock()
		embed := b.buildAuditEmbed(lang, entry, count)
		if _, err := b.session.ChannelMessageEditEmbed(channelID, messageID, embed); err == nil {
			return
		}
		b.auditAggMu.Lock()
		delete(b.auditAgg, key)
	}
	b.auditAggMu.Unlock()

	embed := b.buildAuditEmbed(lang, entry, 1)
	msg, err := b.session.ChannelMessageSendEmbed(channelID, embed)
	if err != nil || msg == nil {
		b.logger.Debug("audit mirror failed", zap.String("guild_id", entry.GuildID), zap.Error(err))
		return
	}
	b.auditAggMu.Lock()
	b.auditAgg[key] = &auditAggregate{channelID: channelID, messageID: msg.ID, count: 1, lastAt: time.Now()}
	b.auditAggMu.Unlock()
}

func (b *Bot) guildSettings(ctx context.Context, guildID string) storage.GuildSettings {
	defaults := storage.GuildSettings{
		GuildID:        guildID,
		LogChannel:     b.cfg.DefaultLogChannel,
		Language:       b.cfg.DefaultLanguage,
		AutomodEnabled: b.cfg.Automod.Enabled,
		MaxMentions:    b.cfg.Automod.MaxMentions,
		RetentionDays:  b.cfg.RetentionDays,
	}

	settings, err := b.store.GetGuildSettings(ctx, guildID, defaults)
	if err != nil {
		b.logger.Warn("guild settings fallback", zap.String("guild_id", guildID), zap.Error(err))
		return defaults
	}
	if settings.Language == "" {
		settings.Language = b.cfg.DefaultLanguage
	}
	if settings.LogChannel == "" {
		settings.LogChannel = b.cfg.DefaultLogChannel
	}
	return settings
}

func (b *Bot) language(ctx context.Context, guildID string) string {
	if guildID == "" {
		return b.cfg.DefaultLanguage
	}
	return b.guildSettings(ctx, guildID).Language
}

func (b *Bot) respond(session *discordgo.Session, interaction *discordgo.InteractionCreate, content string, ephemeral bool) {
	flags := discordgo.MessageFlags(0)
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	if err := session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:         content,
			Flags:           flags,
			AllowedMentions: &discordgo.MessageAllowedMentions{},
		},
	}); err != nil {
		b.logger.Debug("interaction respond failed", zap.Error(err))
	}
}

func (b *Bot) respondEmbed(session *discordgo.Session, interaction *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, ephemeral bool) {
	if embed == nil {
		b.respond(session, interaction, "No response available.", ephemeral)
		return
	}
	flags := discordgo.MessageFlags(0)
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	if err := session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  flags,
		},
	}); err != nil {
		b.logger.Debug("interaction respond failed", zap.Error(err))
	}
}

func formatReport(lang string, report analytics.Report) []*discordgo.MessageEmbedField {
	levels := fmt.Sprintf("INFO: %d | WARN: %d | CRIT: %d", report.ByLevel[audit.LevelInfo], report.ByLevel[audit.LevelWarn], report.ByLevel[audit.LevelCrit])
	top := "-"
	if len(report.TopEvents) > 0 {
		lines := make([]string, 0, len(report.TopEvents))
		for _, ev := range report.TopEvents {
			lines = append(lines, fmt.Sprintf("%s: %d", ev.Event, ev.Count))
		}
		top = strings.Join(lines, "\n")
	}
	g := report.Giveaways
	return []*discordgo.MessageEmbedField{
		{Name: translate(lang, "field_total"), Value: fmt.Sprintf("%d", report.Total), Inline: true},
		{Name: translate(lang, "field_levels"), Value: levels, Inline: true},
		{Name: translate(lang, "field_top_events"), Value: top, Inline: false},
		{Name: translate(lang, "field_giveaways"), Value: translate(lang, "report_giveaways", g.Created, g.Ended, g.Rerolled, g.Expelled), Inline: false},
	}
}

// roleAdder narrows the session to what autorole needs.
type roleAdder struct {
	session *discordgo.Session
}

func (r roleAdder) GuildMemberRoleAdd(guildID, userID, roleID string) error {
	return r.session.GuildMemberRoleAdd(guildID, userID, roleID)
}
