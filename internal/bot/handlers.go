package bot

import (
	"context"
	"strings"
	"time"

	"community-assistant/internal/config"
	"community-assistant/internal/modules/audit"
	"community-assistant/internal/modules/automod"
	"community-assistant/internal/storage"
	"community-assistant/internal/utils"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const interactionTimeout = 10 * time.Second

type optionMap map[string]*discordgo.ApplicationCommandInteractionDataOption

func options(list []*discordgo.ApplicationCommandInteractionDataOption) optionMap {
	out := make(optionMap, len(list))
	for _, opt := range list {
		out[opt.Name] = opt
	}
	return out
}

func (o optionMap) str(name string) string {
	if opt, ok := o[name]; ok {
		return strings.TrimSpace(opt.StringValue())
	}
	return ""
}

func (o optionMap) integer(name string) (int, bool) {
	if opt, ok := o[name]; ok {
		return int(opt.IntValue()), true
	}
	return 0, false
}

// id returns the snowflake of a user, role or channel option.
func (o optionMap) id(name string) string {
	opt, ok := o[name]
	if !ok {
		return ""
	}
	if value, ok := opt.Value.(string); ok {
		return value
	}
	return ""
}

func interactionUserID(interaction *discordgo.InteractionCreate) string {
	if interaction.Member != nil && interaction.Member.User != nil {
		return interaction.Member.User.ID
	}
	if interaction.User != nil {
		return interaction.User.ID
	}
	return ""
}

func canManage(interaction *discordgo.InteractionCreate) bool {
	if interaction.Member == nil {
		return false
	}
	return interaction.Member.Permissions&(adminPermission|manageGuild) != 0
}

func (b *Bot) onInteractionCreate(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()

	switch interaction.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleCommand(ctx, session, interaction)
	case discordgo.InteractionMessageComponent:
		b.handleComponent(ctx, session, interaction)
	}
}

func (b *Bot) handleCommand(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	data := interaction.ApplicationCommandData()
	if interaction.GuildID == "" {
		lang := b.cfg.DefaultLanguage
		b.respondEmbed(session, interaction, b.commandEmbed(b.t(lang, "error_title"), b.t(lang, "error_only_guild"), b.cfg.Notifications.EmbedColors.Error, nil), true)
		return
	}

	settings := b.guildSettings(ctx, interaction.GuildID)
	lang := settings.Language
	opts := options(data.Options)

	switch data.Name {
	case "ping":
		b.respond(session, interaction, b.t(lang, "ping", session.HeartbeatLatency().Milliseconds()), true)
		return
	case "giveaways":
		b.handleGiveawayList(ctx, session, interaction, lang)
		return
	}

	if !canManage(interaction) {
		b.respondEmbed(session, interaction, b.commandEmbed(b.t(lang, "error_title"), b.t(lang, "error_no_permission"), b.cfg.Notifications.EmbedColors.Error, nil), true)
		return
	}

	switch data.Name {
	case "sorteo":
		b.handleGiveawayCreate(ctx, session, interaction, lang, opts)
	case "rerroll":
		b.handleGiveawayReroll(ctx, session, interaction, lang, opts)
	case "sorteoexp":
		b.handleGiveawayExpel(ctx, session, interaction, lang, opts)
	case "automod":
		b.handleAutomodCommand(ctx, session, interaction, settings, data.Options)
	case "autorole":
		b.handleAutoroleCommand(ctx, session, interaction, lang, data.Options)
	case "logs":
		settings.LogChannel = opts.id("canal")
		if err := b.store.UpsertGuildSettings(ctx, settings); err != nil {
			b.commandFailed(session, interaction, lang, "logs_title", err)
			return
		}
		b.audit.Log(ctx, audit.LevelInfo, interaction.GuildID, interactionUserID(interaction), "log_channel_set", "<#"+settings.LogChannel+">")
		b.respondEmbed(session, interaction, b.commandEmbed(b.t(lang, "logs_title"), b.t(lang, "logs_set", settings.LogChannel), b.cfg.Notifications.EmbedColors.Action, nil), true)
	case "language":
		settings.Language = config.NormalizeLanguage(opts.str("value"))
		if err := b.store.UpsertGuildSettings(ctx, settings); err != nil {
			b.commandFailed(session, interaction, lang, "language_title", err)
			return
		}
		lang = settings.Language
		b.respondEmbed(session, interaction, b.commandEmbed(b.t(lang, "language_title"), b.t(lang, "language_set", lang), b.cfg.Notifications.EmbedColors.Action, nil), true)
	case "report":
		period := opts.str("periodo")
		since := time.Now().Add(-24 * time.Hour)
		label := b.t(lang, "report_day")
		if period == "week" {
			since = time.Now().AddDate(0, 0, -7)
			label = b.t(lang, "report_week")
		}
		report, err := b.analytics.Report(ctx, interaction.GuildID, since)
		if err != nil {
			b.commandFailed(session, interaction, lang, "report_title", err)
			return
		}
		b.respondEmbed(session, interaction, b.commandEmbed(b.t(lang, "report_title"), b.t(lang, "report_desc", label), b.cfg.Notifications.EmbedColors.Action, formatReport(lang, report)), true)
	default:
		b.respondEmbed(session, interaction, b.commandEmbed(b.t(lang, "error_title"), b.t(lang, "error_unknown"), b.cfg.Notifications.EmbedColors.Error, nil), true)
	}
}

func (b *Bot) handleAutomodCommand(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, settings storage.GuildSettings, list []*discordgo.ApplicationCommandInteractionDataOption) {
	lang := settings.Language
	if len(list) == 0 {
		b.commandFailed(session, interaction, lang, "automod_title", nil)
		return
	}
	sub := list[0]
	opts := options(sub.Options)
	guildID := interaction.GuildID
	actor := interactionUserID(interaction)
	reply := func(text string) {
		b.respondEmbed(session, interaction, b.commandEmbed(b.t(lang, "automod_title"), text, b.cfg.Notifications.EmbedColors.Action, nil), true)
	}

	switch sub.Name {
	case "toggle":
		settings.AutomodEnabled = !settings.AutomodEnabled
		if err := b.store.UpsertGuildSettings(ctx, settings); err != nil {
			b.commandFailed(session, interaction, lang, "automod_title", err)
			return
		}
		key := "automod_toggled_off"
		if settings.AutomodEnabled {
			key = "automod_toggled_on"
		}
		b.audit.Log(ctx, audit.LevelInfo, guildID, actor, "automod_toggle", key)
		reply(b.t(lang, key))
	case "maxmentions":
		count, _ := opts.integer("cantidad")
		settings.MaxMentions = count
		if err := b.store.UpsertGuildSettings(ctx, settings); err != nil {
			b.commandFailed(session, interaction, lang, "automod_title", err)
			return
		}
		reply(b.t(lang, "automod_maxmentions", count))
	case "addword":
		words := automod.SplitWords(opts.str("palabra"))
		if len(words) == 0 {
			b.respondEmbed(session, interaction, b.commandEmbed(b.t(lang, "automod_title"), b.t(lang, "automod_word_required"), b.cfg.Notifications.EmbedColors.Warning, nil), true)
			return
		}
		for _, word := range words {
			if err := b.store.AddAutomodWord(ctx, guildID, word); err != nil {
				b.commandFailed(session, interaction, lang, "automod_title", err)
				return
			}
		}
		b.automod.Invalidate(guildID)
		reply(b.t(lang, "automod_word_added", strings.Join(words, ", ")))
	case "removeword":
		word := strings.ToLower(opts.str("palabra"))
		removed, err := b.store.RemoveAutomodWord(ctx, guildID, word)
		if err != nil {
			b.commandFailed(session, interaction, lang, "automod_title", err)
			return
		}
		b.automod.Invalidate(guildID)
		if !removed {
			reply(b.t(lang, "automod_word_missing"))
			return
		}
		reply(b.t(lang, "automod_word_removed", word))
	case "ignorerole", "ignoreuser":
		kind, target, mention := storage.IgnoreRole, opts.id("rol"), "<@&"+opts.id("rol")+">"
		if sub.Name == "ignoreuser" {
			kind, target, mention = storage.IgnoreUser, opts.id("usuario"), "<@"+opts.id("usuario")+">"
		}
		ignored, err := b.store.ToggleAutomodIgnore(ctx, guildID, kind, target)
		if err != nil {
			b.commandFailed(session, interaction, lang, "automod_title", err)
			return
		}
		b.automod.Invalidate(guildID)
		if ignored {
			reply(b.t(lang, "automod_ignored_on", mention))
			return
		}
		reply(b.t(lang, "automod_ignored_off", mention))
	case "blockdomain", "unblockdomain":
		domain, err := utils.NormalizeDomain(opts.str("dominio"))
		if err != nil {
			b.respondEmbed(session, interaction, b.commandEmbed(b.t(lang, "automod_title"), b.t(lang, "automod_domain_invalid"), b.cfg.Notifications.EmbedColors.Warning, nil), true)
			return
		}
		key := "automod_domain_added"
		if sub.Name == "blockdomain" {
			err = b.store.AddDomainBlock(ctx, guildID, domain)
		} else {
			key = "automod_domain_removed"
			err = b.store.RemoveDomainBlock(ctx, guildID, domain)
		}
		if err != nil {
			b.commandFailed(session, interaction, lang, "automod_title", err)
			return
		}
		b.automod.Invalidate(guildID)
		b.audit.Log(ctx, audit.LevelInfo, guildID, actor, "automod_"+sub.Name, domain)
		reply(b.t(lang, key, domain))
	default:
		b.commandFailed(session, interaction, lang, "automod_title", nil)
	}
}

func (b *Bot) handleAutoroleCommand(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, lang string, list []*discordgo.ApplicationCommandInteractionDataOption) {
	if len(list) == 0 {
		b.commandFailed(session, interaction, lang, "autorole_title", nil)
		return
	}
	sub := list[0]
	roleID := options(sub.Options).id("rol")
	reply := func(text string) {
		b.respondEmbed(session, interaction, b.commandEmbed(b.t(lang, "autorole_title"), text, b.cfg.Notifications.EmbedColors.Action, nil), true)
	}

	switch sub.Name {
	case "add":
		if err := b.store.AddAutorole(ctx, interaction.GuildID, roleID); err != nil {
			b.commandFailed(session, interaction, lang, "autorole_title", err)
			return
		}
		reply(b.t(lang, "autorole_added", roleID))
	case "remove":
		removed, err := b.store.RemoveAutorole(ctx, interaction.GuildID, roleID)
		if err != nil {
			b.commandFailed(session, interaction, lang, "autorole_title", err)
			return
		}
		if !removed {
			reply(b.t(lang, "autorole_missing"))
			return
		}
		reply(b.t(lang, "autorole_removed", roleID))
	case "list":
		roles, err := b.store.ListAutoroles(ctx, interaction.GuildID)
		if err != nil {
			b.commandFailed(session, interaction, lang, "autorole_title", err)
			return
		}
		if len(roles) == 0 {
			reply(b.t(lang, "autorole_empty"))
			return
		}
		lines := make([]string, len(roles))
		for i, id := range roles {
			lines[i] = "<@&" + id + ">"
		}
		reply(strings.Join(lines, "\n"))
	default:
		b.commandFailed(session, interaction, lang, "autorole_title", nil)
	}
}

func (b *Bot) commandFailed(session *discordgo.Session, interaction *discordgo.InteractionCreate, lang, titleKey string, err error) {
	if err != nil {
		b.logger.Warn("command failed", zap.String("guild_id", interaction.GuildID), zap.String("command", titleKey), zap.Error(err))
	}
	b.respondEmbed(session, interaction, b.commandEmbed(b.t(lang, titleKey), b.t(lang, "error_unknown"), b.cfg.Notifications.EmbedColors.Error, nil), true)
}

func (b *Bot) commandEmbed(title, description string, color int, fields []*discordgo.MessageEmbedField) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
		Timestamp:   time.Now().Format(time.RFC3339),
		Fields:      fields,
	}
}
