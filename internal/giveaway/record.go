package giveaway

import (
	"sort"
	"time"
)

// Terms are the creator-supplied conditions of a drawing. Zero values disable
// the optional gates.
type Terms struct {
	Prize           string
	WinnerCount     int
	HostID          string
	MinMessages     int
	RequiredRoleID  string
	ExcludedRoleID  string
	RequiredInvites int
}

func (t Terms) HasRequirements() bool {
	return t.MinMessages > 0 || t.RequiredRoleID != "" || t.ExcludedRoleID != "" || t.RequiredInvites > 0
}

// MessageRef points at a rendered announcement. A record only borrows it; when
// an edit fails the engine refetches it through the gateway.
type MessageRef struct {
	ChannelID string
	MessageID string
}

func (r MessageRef) IsZero() bool { return r.MessageID == "" }

// Record is one prize drawing. The store owns live records; everything handed
// out of the store is a copy.
type Record struct {
	ID           string
	GuildID      string
	ChannelID    string
	Terms        Terms
	EndTime      time.Time
	Ended        bool
	LastWinners  []string
	Announcement MessageRef

	participants map[string]uint64
	joinSeq      uint64
}

// NewRecord builds a record, seeding participants in the order given. Hosts use
// it to hand resident state back to the engine on startup.
func NewRecord(id, guildID, channelID string, terms Terms, endTime time.Time, participants ...string) *Record {
	r := &Record{
		ID:           id,
		GuildID:      guildID,
		ChannelID:    channelID,
		Terms:        terms,
		EndTime:      endTime,
		Announcement: MessageRef{ChannelID: channelID, MessageID: id},
		participants: make(map[string]uint64, len(participants)),
	}
	for _, userID := range participants {
		r.addParticipant(userID)
	}
	return r
}

func (r *Record) HasParticipant(userID string) bool {
	_, ok := r.participants[userID]
	return ok
}

func (r *Record) ParticipantCount() int { return len(r.participants) }

// Participants lists user ids in join order.
func (r *Record) Participants() []string {
	ids := make([]string, 0, len(r.participants))
	for id := range r.participants {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return r.participants[ids[i]] < r.participants[ids[j]]
	})
	return ids
}

func (r *Record) addParticipant(userID string) bool {
	if r.participants == nil {
		r.participants = make(map[string]uint64)
	}
	if _, ok := r.participants[userID]; ok {
		return false
	}
	r.joinSeq++
	r.participants[userID] = r.joinSeq
	return true
}

func (r *Record) removeParticipant(userID string) bool {
	if _, ok := r.participants[userID]; !ok {
		return false
	}
	delete(r.participants, userID)
	return true
}

func (r *Record) clone() Record {
	out := *r
	out.participants = make(map[string]uint64, len(r.participants))
	for id, seq := range r.participants {
		out.participants[id] = seq
	}
	if r.LastWinners != nil {
		out.LastWinners = append([]string(nil), r.LastWinners...)
	}
	return out
}
