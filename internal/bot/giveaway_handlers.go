package bot

import (
	"context"
	"fmt"
	"strings"

	"community-assistant/internal/giveaway"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const listLimit = 25

func (b *Bot) handleGiveawayCreate(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, lang string, opts optionMap) {
	winners, _ := opts.integer("ganadores")
	minMessages, _ := opts.integer("mensajes_minimos")
	requiredInvites, _ := opts.integer("invites_requeridos")
	host := opts.id("host")
	if host == "" {
		host = interactionUserID(interaction)
	}
	terms := giveaway.Terms{
		Prize:           opts.str("premio"),
		WinnerCount:     winners,
		HostID:          host,
		MinMessages:     minMessages,
		RequiredRoleID:  opts.id("rol_requerido"),
		ExcludedRoleID:  opts.id("rol_excluido"),
		RequiredInvites: requiredInvites,
	}

	record, err := b.engine.Create(ctx, giveaway.CreateRequest{
		GuildID:   interaction.GuildID,
		ChannelID: opts.id("canal"),
		Duration:  opts.str("duracion"),
		Terms:     terms,
	})
	if err != nil {
		b.giveawayFailed(session, interaction, lang, "error_create", err, errorContext{terms: terms})
		return
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: b.t(lang, "field_giveaway_id"), Value: "`" + record.ID + "`", Inline: true},
		{Name: b.t(lang, "field_channel"), Value: "<#" + record.ChannelID + ">", Inline: true},
		{Name: b.t(lang, "field_ends"), Value: fmt.Sprintf("<t:%d:R>", record.EndTime.Unix()), Inline: true},
	}
	b.respondEmbed(session, interaction, b.commandEmbed(b.t(lang, "created_title"), b.t(lang, "created_desc", record.Terms.Prize, record.ChannelID), b.cfg.Notifications.EmbedColors.Giveaway, fields), true)
}

func (b *Bot) handleGiveawayReroll(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, lang string, opts optionMap) {
	id, err := b.scopeGiveaway(interaction.GuildID, opts.str("sorteo_id"), true)
	if err != nil {
		b.giveawayFailed(session, interaction, lang, "error_reroll", err, errorContext{})
		return
	}
	var override *int
	if count, ok := opts.integer("cantidad"); ok {
		override = &count
	}

	result, err := b.engine.Reroll(ctx, id, interactionUserID(interaction), override)
	if err != nil {
		b.giveawayFailed(session, interaction, lang, "error_reroll", err, errorContext{})
		return
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: b.t(lang, "field_giveaway_id"), Value: "`" + result.Giveaway.ID + "`", Inline: true},
		{Name: b.t(lang, "field_channel"), Value: "<#" + result.Giveaway.ChannelID + ">", Inline: true},
		{Name: b.t(lang, "field_winners"), Value: mentions(result.Winners), Inline: false},
	}
	b.respondEmbed(session, interaction, b.commandEmbed(b.t(lang, "reroll_title"), b.t(lang, "reroll_desc", len(result.Winners), result.Giveaway.Terms.Prize), b.cfg.Notifications.EmbedColors.Action, fields), true)
}

func (b *Bot) handleGiveawayExpel(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, lang string, opts optionMap) {
	id, err := b.scopeGiveaway(interaction.GuildID, opts.str("sorteo_id"), false)
	if err != nil {
		b.giveawayFailed(session, interaction, lang, "error_expel", err, errorContext{})
		return
	}
	target := opts.id("usuario")
	actor := interactionUserID(interaction)

	result, err := b.engine.Expel(ctx, id, target, actor)
	if err != nil {
		b.giveawayFailed(session, interaction, lang, "error_expel", err, errorContext{})
		return
	}

	channelID := result.Announcement.ChannelID
	if channelID == "" {
		channelID = result.Giveaway.ChannelID
	}
	notice := giveaway.Announcement{Kind: giveaway.KindExpelled, Giveaway: result.Giveaway, Actor: actor, Target: target}
	if _, err := b.gateway.SendAnnouncement(ctx, channelID, notice); err != nil {
		b.logger.Warn("giveaway expel notice failed", zap.String("giveaway_id", result.Giveaway.ID), zap.Error(err))
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: b.t(lang, "field_giveaway_id"), Value: "`" + result.Giveaway.ID + "`", Inline: true},
		{Name: b.t(lang, "field_participants"), Value: fmt.Sprintf("%d", result.Giveaway.ParticipantCount()), Inline: true},
	}
	b.respondEmbed(session, interaction, b.commandEmbed(b.t(lang, "expel_title"), b.t(lang, "expel_desc", target, result.Giveaway.Terms.Prize), b.cfg.Notifications.EmbedColors.Action, fields), true)
}

func (b *Bot) handleGiveawayList(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, lang string) {
	records := b.engine.List(interaction.GuildID, true)
	if len(records) == 0 {
		b.respondEmbed(session, interaction, b.commandEmbed(b.t(lang, "list_title"), b.t(lang, "list_empty"), b.cfg.Notifications.EmbedColors.Giveaway, nil), true)
		return
	}
	if len(records) > listLimit {
		records = records[:listLimit]
	}
	fields := make([]*discordgo.MessageEmbedField, 0, len(records))
	for _, record := range records {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  record.Terms.Prize,
			Value: fmt.Sprintf("`%s` | <#%s> | %d | <t:%d:R>", record.ID, record.ChannelID, record.ParticipantCount(), record.EndTime.Unix()),
		})
	}
	b.respondEmbed(session, interaction, b.commandEmbed(b.t(lang, "list_title"), "", b.cfg.Notifications.EmbedColors.Giveaway, fields), true)
}

// scopeGiveaway keeps commands inside the invoking guild. An empty id picks
// the guild's latest ended (or open) drawing.
func (b *Bot) scopeGiveaway(guildID, id string, ended bool) (string, error) {
	if id != "" {
		record, ok := b.engine.Get(id)
		if !ok || record.GuildID != guildID {
			return "", &giveaway.Error{Code: giveaway.CodeNotFound, GiveawayID: id}
		}
		return id, nil
	}
	records := b.engine.List(guildID, false)
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].Ended == ended {
			return records[i].ID, nil
		}
	}
	return "", &giveaway.Error{Code: giveaway.CodeNotFound}
}

func (b *Bot) giveawayFailed(session *discordgo.Session, interaction *discordgo.InteractionCreate, lang, titleKey string, err error, ec errorContext) {
	if giveaway.CodeOf(err) == "" || giveaway.CodeOf(err) == giveaway.CodeChannelUnavailable {
		b.logger.Warn("giveaway command failed", zap.String("guild_id", interaction.GuildID), zap.Error(err))
	}
	ec.maxWinners = b.cfg.Giveaway.MaxWinners
	b.respondEmbed(session, interaction, b.commandEmbed(b.t(lang, titleKey), errorText(lang, err, ec), b.cfg.Notifications.EmbedColors.Error, nil), true)
}

func (b *Bot) handleComponent(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	customID := interaction.MessageComponentData().CustomID
	lang := b.language(ctx, interaction.GuildID)
	userID := interactionUserID(interaction)

	switch {
	case customID == joinButtonID:
		b.handleJoinButton(ctx, session, interaction, lang, userID)
	case customID == participantsButtonID:
		if interaction.Message == nil {
			b.respond(session, interaction, b.t(lang, "bad_request"), true)
			return
		}
		roster, err := b.engine.ParticipantsSnapshot(interaction.Message.ID)
		if err != nil {
			b.respond(session, interaction, errorText(lang, err, errorContext{}), true)
			return
		}
		b.respondEmbed(session, interaction, participantsEmbed(lang, roster), true)
	case strings.HasPrefix(customID, leaveButtonPrefix):
		id, ok := parseLeaveID(customID)
		if !ok {
			b.respondUpdate(session, interaction, b.t(lang, "bad_request"))
			return
		}
		result, err := b.engine.LeaveConfirm(ctx, id, userID, giveaway.OnCommit(func() {
			b.respondUpdate(session, interaction, b.t(lang, "leave_ok"))
		}))
		switch {
		case err != nil:
			b.respondUpdate(session, interaction, b.t(lang, "leave_unavailable"))
		case !result.Removed:
			b.respondUpdate(session, interaction, b.t(lang, "leave_not_member"))
		}
	}
}

func (b *Bot) handleJoinButton(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, lang, userID string) {
	if interaction.Message == nil {
		b.respond(session, interaction, b.t(lang, "bad_request"), true)
		return
	}
	// the reply goes out on commit so a queued announcement edit cannot push it
	// past the interaction deadline
	result, err := b.engine.Join(ctx, interaction.Message.ID, userID, giveaway.OnCommit(func() {
		b.respond(session, interaction, b.t(lang, "join_ok"), true)
	}))
	if err != nil {
		b.respond(session, interaction, errorText(lang, err, errorContext{terms: result.Giveaway.Terms, activity: result.Activity}), true)
		return
	}
	if result.Outcome == giveaway.LeavePending {
		b.respondComponents(session, interaction, b.t(lang, "leave_confirm"), leaveComponents(lang, result.Giveaway.ID))
	}
}

func (b *Bot) respondComponents(session *discordgo.Session, interaction *discordgo.InteractionCreate, content string, components []discordgo.MessageComponent) {
	if err := session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Components: components,
			Flags:      discordgo.MessageFlagsEphemeral,
		},
	}); err != nil {
		b.logger.Debug("interaction respond failed", zap.Error(err))
	}
}

// respondUpdate replaces the ephemeral leave prompt and drops its button.
func (b *Bot) respondUpdate(session *discordgo.Session, interaction *discordgo.InteractionCreate, content string) {
	if err := session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Components: []discordgo.MessageComponent{},
		},
	}); err != nil {
		b.logger.Debug("interaction update failed", zap.Error(err))
	}
}
