package bot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"community-assistant/internal/giveaway"

	"github.com/bwmarrin/discordgo"
)

const (
	joinButtonID         = "giveaway-join"
	participantsButtonID = "giveaway-participants"
	leaveButtonPrefix    = "giveaway-leave:"
	participantsLimit    = 4000
)

// rendered is a platform message built from an engine announcement.
type rendered struct {
	content    string
	embed      *discordgo.MessageEmbed
	components []discordgo.MessageComponent
	mentions   *discordgo.MessageAllowedMentions
}

func renderAnnouncement(lang string, color int, a giveaway.Announcement) rendered {
	record := a.Giveaway
	switch a.Kind {
	case giveaway.KindOpen:
		return rendered{
			embed:      openEmbed(lang, color, record),
			components: openComponents(lang),
			mentions:   &discordgo.MessageAllowedMentions{},
		}
	case giveaway.KindEnded:
		return rendered{
			embed:      endedEmbed(lang, color, record, a.Winners),
			components: []discordgo.MessageComponent{},
			mentions:   &discordgo.MessageAllowedMentions{},
		}
	case giveaway.KindWinners:
		return rendered{
			content:  translate(lang, "winners_notice", mentions(a.Winners), record.Terms.Prize),
			mentions: &discordgo.MessageAllowedMentions{Users: a.Winners},
		}
	case giveaway.KindReroll:
		return rendered{
			content:  translate(lang, "reroll_notice", a.Actor, mentions(a.Winners), record.Terms.Prize),
			mentions: &discordgo.MessageAllowedMentions{Users: a.Winners},
		}
	case giveaway.KindExpelled:
		return rendered{
			content:  translate(lang, "expel_notice", a.Target, a.Actor),
			mentions: &discordgo.MessageAllowedMentions{},
		}
	default:
		return rendered{}
	}
}

func openEmbed(lang string, color int, record giveaway.Record) *discordgo.MessageEmbed {
	fields := requirementFields(lang, record.Terms)
	fields = append(fields, &discordgo.MessageEmbedField{
		Name:   translate(lang, "field_participants"),
		Value:  strconv.Itoa(record.ParticipantCount()),
		Inline: false,
	})
	return &discordgo.MessageEmbed{
		Title:       translate(lang, "giveaway_title"),
		Description: translate(lang, "giveaway_desc", record.Terms.Prize, record.Terms.WinnerCount, userMention(record.Terms.HostID), record.EndTime.Unix()),
		Color:       color,
		Fields:      fields,
		Footer:      &discordgo.MessageEmbedFooter{Text: translate(lang, "giveaway_footer")},
		Timestamp:   record.EndTime.UTC().Format(time.RFC3339),
	}
}

func endedEmbed(lang string, color int, record giveaway.Record, winners []string) *discordgo.MessageEmbed {
	winnerText := translate(lang, "nobody")
	if len(winners) > 0 {
		winnerText = mentions(winners)
	}
	return &discordgo.MessageEmbed{
		Title:       translate(lang, "giveaway_ended_title"),
		Description: translate(lang, "giveaway_ended_desc", record.Terms.Prize, winnerText, userMention(record.Terms.HostID)),
		Color:       color,
		Fields:      requirementFields(lang, record.Terms),
		Footer:      &discordgo.MessageEmbedFooter{Text: translate(lang, "giveaway_ended_footer")},
	}
}

func requirementFields(lang string, terms giveaway.Terms) []*discordgo.MessageEmbedField {
	var lines []string
	if terms.MinMessages > 0 {
		lines = append(lines, translate(lang, "req_messages", terms.MinMessages))
	}
	if terms.RequiredRoleID != "" {
		lines = append(lines, translate(lang, "req_role", terms.RequiredRoleID))
	}
	if terms.ExcludedRoleID != "" {
		lines = append(lines, translate(lang, "req_excluded", terms.ExcludedRoleID))
	}
	if len(lines) == 0 {
		lines = append(lines, translate(lang, "req_none"))
	}
	fields := []*discordgo.MessageEmbedField{
		{Name: translate(lang, "field_requirements"), Value: strings.Join(lines, "\n")},
	}
	if terms.RequiredInvites > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  translate(lang, "field_invites"),
			Value: translate(lang, "req_invites", terms.RequiredInvites),
		})
	}
	return fields
}

func openComponents(lang string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    translate(lang, "button_join"),
					Style:    discordgo.PrimaryButton,
					CustomID: joinButtonID,
					Emoji:    &discordgo.ComponentEmoji{Name: "🎉"},
				},
				discordgo.Button{
					Label:    translate(lang, "button_participants"),
					Style:    discordgo.SecondaryButton,
					CustomID: participantsButtonID,
				},
			},
		},
	}
}

func leaveComponents(lang, giveawayID string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    translate(lang, "button_leave"),
					Style:    discordgo.DangerButton,
					CustomID: leaveButtonPrefix + giveawayID,
				},
			},
		},
	}
}

// parseLeaveID extracts the giveaway id from a leave button custom id.
func parseLeaveID(customID string) (string, bool) {
	if !strings.HasPrefix(customID, leaveButtonPrefix) {
		return "", false
	}
	id := strings.TrimPrefix(customID, leaveButtonPrefix)
	return id, id != ""
}

func participantsEmbed(lang string, roster giveaway.Roster) *discordgo.MessageEmbed {
	description := translate(lang, "participants_empty")
	if roster.Count > 0 {
		var b strings.Builder
		for i, id := range roster.Participants {
			line := fmt.Sprintf("%d.- <@%s>\n", i+1, id)
			if b.Len()+len(line) > participantsLimit {
				b.WriteString("…")
				break
			}
			b.WriteString(line)
		}
		description = strings.TrimRight(b.String(), "\n")
	}
	return &discordgo.MessageEmbed{
		Title:       translate(lang, "participants_title"),
		Description: description,
		Color:       0x5865F2,
		Fields: []*discordgo.MessageEmbedField{
			{Name: translate(lang, "participants_total"), Value: strconv.Itoa(roster.Count)},
		},
	}
}

func mentions(ids []string) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = "<@" + id + ">"
	}
	return strings.Join(parts, ", ")
}

func userMention(id string) string {
	if id == "" {
		return "-"
	}
	return "<@" + id + ">"
}
