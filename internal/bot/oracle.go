package bot

import (
	"context"

	"community-assistant/internal/invites"

	"github.com/bwmarrin/discordgo"
)

// Oracle answers role and invite questions from the session state, falling
// back to the REST API.
type Oracle struct {
	session *discordgo.Session
	invites *invites.Tracker
}

func NewOracle(session *discordgo.Session, tracker *invites.Tracker) *Oracle {
	return &Oracle{session: session, invites: tracker}
}

func (o *Oracle) HasRole(ctx context.Context, guildID, userID, roleID string) (bool, error) {
	member, err := o.member(guildID, userID)
	if err != nil {
		return false, err
	}
	return memberHasRole(member, roleID), nil
}

func (o *Oracle) InviteUsageCount(ctx context.Context, guildID, userID string) (int, error) {
	return o.invites.Uses(ctx, guildID, userID)
}

func (o *Oracle) member(guildID, userID string) (*discordgo.Member, error) {
	if o.session.State != nil {
		if member, err := o.session.State.Member(guildID, userID); err == nil && member != nil {
			return member, nil
		}
	}
	return o.session.GuildMember(guildID, userID)
}

func memberHasRole(member *discordgo.Member, roleID string) bool {
	if member == nil {
		return false
	}
	for _, id := range member.Roles {
		if id == roleID {
			return true
		}
	}
	return false
}

// inviteFetcher sums invite uses per inviter for the tracker.
func inviteFetcher(session *discordgo.Session) invites.FetchFunc {
	return func(ctx context.Context, guildID string) (map[string]int, error) {
		list, err := session.GuildInvites(guildID)
		if err != nil {
			return nil, err
		}
		return invites.Sum(inviteUsage(list)), nil
	}
}

func inviteUsage(list []*discordgo.Invite) []invites.Usage {
	usage := make([]invites.Usage, 0, len(list))
	for _, invite := range list {
		if invite == nil || invite.Inviter == nil {
			continue
		}
		usage = append(usage, invites.Usage{InviterID: invite.Inviter.ID, Uses: invite.Uses})
	}
	return usage
}
