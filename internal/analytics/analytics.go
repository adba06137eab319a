package analytics

import (
	"context"
	"sort"
	"time"

	"community-assistant/internal/storage"
)

type Service struct {
	store *storage.Store
}

func New(store *storage.Store) *Service {
	return &Service{store: store}
}

type EventCount struct {
	Event string
	Count int
}

type Report struct {
	Total     int
	ByLevel   map[string]int
	TopEvents []EventCount
	Giveaways GiveawayStats
}

type GiveawayStats struct {
	Created  int
	Ended    int
	Rerolled int
	Expelled int
}

const topEvents = 5

// Report summarizes the guild's audit log since the given time.
func (s *Service) Report(ctx context.Context, guildID string, since time.Time) (Report, error) {
	logs, err := s.store.ListAuditLogs(ctx, guildID, since)
	if err != nil {
		return Report{}, err
	}

	report := Report{ByLevel: make(map[string]int)}
	byEvent := make(map[string]int)
	for _, log := range logs {
		report.Total++
		report.ByLevel[log.Level]++
		byEvent[log.Event]++
		switch log.Event {
		case "giveaway_created":
			report.Giveaways.Created++
		case "giveaway_ended":
			report.Giveaways.Ended++
		case "giveaway_rerolled":
			report.Giveaways.Rerolled++
		case "giveaway_expelled":
			report.Giveaways.Expelled++
		}
	}

	for event, count := range byEvent {
		report.TopEvents = append(report.TopEvents, EventCount{Event: event, Count: count})
	}
	sort.Slice(report.TopEvents, func(i, j int) bool {
		if report.TopEvents[i].Count == report.TopEvents[j].Count {
			return report.TopEvents[i].Event < report.TopEvents[j].Event
		}
		return report.TopEvents[i].Count > report.TopEvents[j].Count
	})
	if len(report.TopEvents) > topEvents {
		report.TopEvents = report.TopEvents[:topEvents]
	}
	return report, nil
}
