package giveaway

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

const DefaultMaxWinners = 100

type Kind int

const (
	KindOpen Kind = iota
	KindEnded
	KindWinners
	KindReroll
	KindExpelled
)

func (k Kind) String() string {
	switch k {
	case KindOpen:
		return "open"
	case KindEnded:
		return "ended"
	case KindWinners:
		return "winners"
	case KindReroll:
		return "reroll"
	case KindExpelled:
		return "expelled"
	default:
		return "unknown"
	}
}

// Announcement is what the engine asks the gateway to render. Actor is the
// user who triggered a reroll or an expulsion; Target is the expelled user.
type Announcement struct {
	Kind     Kind
	Giveaway Record
	Winners  []string
	Actor    string
	Target   string
}

// Gateway renders announcements on the chat platform.
type Gateway interface {
	SendAnnouncement(ctx context.Context, channelID string, a Announcement) (MessageRef, error)
	EditAnnouncement(ctx context.Context, ref MessageRef, a Announcement) error
	FetchAnnouncement(ctx context.Context, channelID, messageID string) (MessageRef, bool, error)
}

// Oracle answers membership questions the engine cannot see on its own. An
// error means the fact is unknown, and the gate that needed it fails.
type Oracle interface {
	HasRole(ctx context.Context, guildID, userID, roleID string) (bool, error)
	InviteUsageCount(ctx context.Context, guildID, userID string) (int, error)
}

type EventType string

const (
	EventCreated  EventType = "giveaway_created"
	EventEnded    EventType = "giveaway_ended"
	EventRerolled EventType = "giveaway_rerolled"
	EventExpelled EventType = "giveaway_expelled"
)

type Event struct {
	Type     EventType
	Giveaway Record
	Winners  []string
	Actor    string
	Target   string
}

type Notifier func(ctx context.Context, event Event)

type Config struct {
	SweepInterval time.Duration
	MaxWinners    int
}

type CreateRequest struct {
	GuildID   string
	ChannelID string
	Duration  string
	Terms     Terms
}

type JoinOutcome int

const (
	Joined JoinOutcome = iota + 1
	LeavePending
)

type JoinResult struct {
	Outcome  JoinOutcome
	Giveaway Record
	Decision Decision
	Activity int
}

type LeaveResult struct {
	Removed  bool
	Giveaway Record
}

type ExpelResult struct {
	Giveaway     Record
	Announcement MessageRef
}

type RerollResult struct {
	Giveaway Record
	Winners  []string
}

type Roster struct {
	GiveawayID   string
	Count        int
	Participants []string
}

// MutateOption tunes a single Join or LeaveConfirm call.
type MutateOption func(*mutateOptions)

type mutateOptions struct {
	onCommit func()
}

// OnCommit registers fn to run once the membership change is stored and
// before the announcement is refreshed. It runs for every successful Join and
// for a LeaveConfirm that removed the user.
func OnCommit(fn func()) MutateOption {
	return func(o *mutateOptions) { o.onCommit = fn }
}

func applyMutateOptions(opts []MutateOption) mutateOptions {
	var o mutateOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o mutateOptions) commit() {
	if o.onCommit != nil {
		o.onCommit()
	}
}

type Engine struct {
	cfg      Config
	mu       sync.RWMutex
	clock    Clock
	store    *Store
	ledger   *Ledger
	sched    *Scheduler
	gateway  Gateway
	oracle   Oracle
	logger   *zap.Logger
	notifier Notifier
}

func NewEngine(cfg Config, ledger *Ledger, gateway Gateway, oracle Oracle, logger *zap.Logger) *Engine {
	if cfg.MaxWinners <= 0 {
		cfg.MaxWinners = DefaultMaxWinners
	}
	if ledger == nil {
		ledger = NewLedger(DefaultLedgerCapacity)
	}
	store := NewStore()
	e := &Engine{
		cfg:     cfg,
		clock:   realClock{},
		store:   store,
		ledger:  ledger,
		sched:   NewScheduler(store, cfg.SweepInterval, logger),
		gateway: gateway,
		oracle:  oracle,
		logger:  logger,
	}
	e.sched.bind(e.end)
	return e
}

func (e *Engine) WithClock(clock Clock) {
	e.mu.Lock()
	e.clock = clock
	e.mu.Unlock()
	e.sched.WithClock(clock)
}

func (e *Engine) SetNotifier(notifier Notifier) {
	e.mu.Lock()
	e.notifier = notifier
	e.mu.Unlock()
}

func (e *Engine) now() time.Time {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.clock.Now()
}

func (e *Engine) Scheduler() *Scheduler { return e.sched }

// RecordActivity counts one qualifying message for userID.
func (e *Engine) RecordActivity(userID string) int {
	if userID == "" {
		return 0
	}
	return e.ledger.Increment(userID)
}

func (e *Engine) Create(ctx context.Context, req CreateRequest) (Record, error) {
	terms := req.Terms
	if terms.WinnerCount < 1 || terms.WinnerCount > e.cfg.MaxWinners {
		return Record{}, newError(CodeInvalidWinnerCount, "")
	}
	duration, err := ParseDuration(req.Duration)
	if err != nil {
		return Record{}, &Error{Code: CodeInvalidDuration, Err: err}
	}
	if terms.MinMessages < 0 {
		terms.MinMessages = 0
	}
	if terms.RequiredInvites < 0 {
		terms.RequiredInvites = 0
	}
	if e.sched.Stopped() {
		return Record{}, newError(CodeStopped, "")
	}

	endTime := e.now().Add(duration)
	draft := NewRecord("", req.GuildID, req.ChannelID, terms, endTime)
	ref, err := e.gateway.SendAnnouncement(ctx, req.ChannelID, Announcement{Kind: KindOpen, Giveaway: draft.clone()})
	if err != nil {
		return Record{}, &Error{Code: CodeChannelUnavailable, Err: err}
	}

	record := NewRecord(ref.MessageID, req.GuildID, req.ChannelID, terms, endTime)
	record.Announcement = ref
	e.store.Put(record)
	if err := e.sched.Arm(record.ID, endTime); err != nil {
		// shutdown raced the create; an unarmed record would never end
		e.store.Delete(record.ID)
		e.logger.Warn("giveaway create aborted",
			zap.String("giveaway_id", record.ID),
			zap.String("guild_id", record.GuildID),
			zap.Error(err),
		)
		return Record{}, &Error{Code: CodeStopped, GiveawayID: record.ID, Err: err}
	}
	e.sched.EnsureSweep()

	e.logger.Info("giveaway created",
		zap.String("giveaway_id", record.ID),
		zap.String("guild_id", record.GuildID),
		zap.String("channel_id", record.ChannelID),
		zap.Int("winners", terms.WinnerCount),
		zap.Bool("gated", terms.HasRequirements()),
		zap.Time("end_time", endTime),
	)
	out := record.clone()
	e.notify(ctx, Event{Type: EventCreated, Giveaway: out, Actor: terms.HostID})
	return out, nil
}

// Join enters userID into the drawing. A user who is already entered gets
// LeavePending back and is not changed; leaving needs LeaveConfirm.
func (e *Engine) Join(ctx context.Context, id, userID string, opts ...MutateOption) (JoinResult, error) {
	if userID == "" {
		return JoinResult{}, newError(CodeUserRequired, id)
	}
	record, ok := e.store.Get(id)
	if !ok {
		return JoinResult{}, newError(CodeNotFound, id)
	}
	if record.Ended {
		return JoinResult{Giveaway: record}, newError(CodeEnded, id)
	}
	if record.HasParticipant(userID) {
		return JoinResult{Outcome: LeavePending, Giveaway: record}, nil
	}

	facts := e.gatherFacts(ctx, &record, userID)
	activity := 0
	if facts.Activity != nil {
		activity = *facts.Activity
	}
	decision, err := Evaluate(record.Terms, facts)
	result := JoinResult{Giveaway: record, Decision: decision, Activity: activity}
	if err != nil {
		e.logger.Warn("giveaway eligibility unknown",
			zap.String("giveaway_id", id),
			zap.String("user_id", userID),
			zap.String("gate", string(decision.Reason)),
			zap.Error(err),
		)
		return result, &Error{Code: CodeEligibilityUnknown, GiveawayID: id, Err: err}
	}
	if !decision.Allowed {
		return result, newError(decision.Reason, id)
	}

	updated, err := e.store.Update(id, func(r *Record) error {
		if r.Ended {
			return newError(CodeEnded, id)
		}
		r.addParticipant(userID)
		return nil
	})
	result.Giveaway = updated
	if err != nil {
		return result, err
	}
	result.Outcome = Joined
	applyMutateOptions(opts).commit()
	e.refresh(ctx, updated)
	return result, nil
}

// LeaveConfirm removes userID. Confirming for someone no longer entered is a
// no-op that still succeeds.
func (e *Engine) LeaveConfirm(ctx context.Context, id, userID string, opts ...MutateOption) (LeaveResult, error) {
	if userID == "" {
		return LeaveResult{}, newError(CodeUserRequired, id)
	}
	removed := false
	updated, err := e.store.Update(id, func(r *Record) error {
		if r.Ended {
			return newError(CodeEnded, id)
		}
		removed = r.removeParticipant(userID)
		return nil
	})
	if err != nil {
		return LeaveResult{Giveaway: updated}, err
	}
	if removed {
		applyMutateOptions(opts).commit()
		e.refresh(ctx, updated)
	}
	return LeaveResult{Removed: removed, Giveaway: updated}, nil
}

// Expel removes userID on a moderator's behalf. An empty id targets the open
// drawing with the latest end time.
func (e *Engine) Expel(ctx context.Context, id, userID, actorID string) (ExpelResult, error) {
	if userID == "" {
		return ExpelResult{}, newError(CodeUserRequired, id)
	}
	if id == "" {
		latest, ok := e.store.MostRecent(isOpen)
		if !ok {
			return ExpelResult{}, newError(CodeNotFound, "")
		}
		id = latest.ID
	}

	updated, err := e.store.Update(id, func(r *Record) error {
		if r.Ended {
			return newError(CodeEnded, id)
		}
		if !r.removeParticipant(userID) {
			return newError(CodeUserNotInGiveaway, id)
		}
		return nil
	})
	if err != nil {
		return ExpelResult{Giveaway: updated}, err
	}

	e.refresh(ctx, updated)
	ref := e.resolveAnnouncement(ctx, updated)
	e.logger.Info("giveaway participant expelled",
		zap.String("giveaway_id", id),
		zap.String("user_id", userID),
		zap.String("actor_id", actorID),
	)
	e.notify(ctx, Event{Type: EventExpelled, Giveaway: updated, Actor: actorID, Target: userID})
	return ExpelResult{Giveaway: updated, Announcement: ref}, nil
}

// End runs the end transition now. Ending an ended record does nothing.
func (e *Engine) End(ctx context.Context, id string) error {
	return e.end(ctx, id)
}

func (e *Engine) end(ctx context.Context, id string) error {
	var winners []string
	claimed := false
	record, err := e.store.Update(id, func(r *Record) error {
		if r.Ended {
			return nil
		}
		r.Ended = true
		claimed = true
		winners = Pick(r.Participants(), r.Terms.WinnerCount)
		r.LastWinners = winners
		return nil
	})
	if err != nil {
		return err
	}
	if !claimed {
		return nil
	}
	e.sched.Cancel(id)

	e.logger.Info("giveaway ended",
		zap.String("giveaway_id", id),
		zap.Int("participants", record.ParticipantCount()),
		zap.Strings("winners", winners),
	)
	_ = e.editAnnouncement(ctx, record, Announcement{Kind: KindEnded, Giveaway: record, Winners: winners})
	if len(winners) > 0 {
		if _, err := e.gateway.SendAnnouncement(ctx, record.ChannelID, Announcement{Kind: KindWinners, Giveaway: record, Winners: winners}); err != nil {
			e.logger.Warn("giveaway winners notice failed", zap.String("giveaway_id", id), zap.Error(err))
		}
	}
	e.notify(ctx, Event{Type: EventEnded, Giveaway: record, Winners: winners})
	return nil
}

// Reroll draws a fresh set of winners for an ended drawing. An empty id
// targets the ended drawing with the latest end time. override replaces the
// record's winner count for this draw only.
func (e *Engine) Reroll(ctx context.Context, id, requestedBy string, override *int) (RerollResult, error) {
	if id == "" {
		latest, ok := e.store.MostRecent(isEnded)
		if !ok {
			return RerollResult{}, newError(CodeNotFound, "")
		}
		id = latest.ID
	}

	var winners []string
	updated, err := e.store.Update(id, func(r *Record) error {
		if !r.Ended {
			return newError(CodeNotEnded, id)
		}
		if r.ParticipantCount() == 0 {
			return newError(CodeNoParticipants, id)
		}
		count := r.Terms.WinnerCount
		if override != nil {
			if *override < 1 || *override > e.cfg.MaxWinners {
				return newError(CodeInvalidWinnerCount, id)
			}
			count = *override
		}
		if r.ParticipantCount() < count {
			return newError(CodeInsufficientEntrants, id)
		}
		winners = Pick(r.Participants(), count)
		r.LastWinners = winners
		return nil
	})
	if err != nil {
		return RerollResult{Giveaway: updated}, err
	}

	e.logger.Info("giveaway rerolled",
		zap.String("giveaway_id", id),
		zap.String("requested_by", requestedBy),
		zap.Strings("winners", winners),
	)
	_ = e.editAnnouncement(ctx, updated, Announcement{Kind: KindEnded, Giveaway: updated, Winners: winners})
	if _, err := e.gateway.SendAnnouncement(ctx, updated.ChannelID, Announcement{Kind: KindReroll, Giveaway: updated, Winners: winners, Actor: requestedBy}); err != nil {
		e.logger.Warn("giveaway reroll notice failed", zap.String("giveaway_id", id), zap.Error(err))
	}
	e.notify(ctx, Event{Type: EventRerolled, Giveaway: updated, Winners: winners, Actor: requestedBy})
	return RerollResult{Giveaway: updated, Winners: winners}, nil
}

func (e *Engine) ParticipantsSnapshot(id string) (Roster, error) {
	record, ok := e.store.Get(id)
	if !ok {
		return Roster{}, newError(CodeNotFound, id)
	}
	ids := record.Participants()
	return Roster{GiveawayID: id, Count: len(ids), Participants: ids}, nil
}

func (e *Engine) Get(id string) (Record, bool) {
	return e.store.Get(id)
}

// List returns the guild's drawings ordered by end time.
func (e *Engine) List(guildID string, openOnly bool) []Record {
	records := e.store.Filter(func(r *Record) bool {
		if guildID != "" && r.GuildID != guildID {
			return false
		}
		return !openOnly || !r.Ended
	})
	sort.Slice(records, func(i, j int) bool {
		if records[i].EndTime.Equal(records[j].EndTime) {
			return records[i].ID < records[j].ID
		}
		return records[i].EndTime.Before(records[j].EndTime)
	})
	return records
}

// Restore loads records a host kept from an earlier run. Open ones are armed
// like freshly created drawings, so anything already past its end time ends on
// the next timer or sweep.
func (e *Engine) Restore(records ...*Record) {
	for _, record := range records {
		if record == nil || record.ID == "" {
			continue
		}
		if record.Announcement.IsZero() {
			record.Announcement = MessageRef{ChannelID: record.ChannelID, MessageID: record.ID}
		}
		e.store.Put(record)
	}
	e.Start()
}

// Start arms every open record and the sweep.
func (e *Engine) Start() {
	open := e.store.Filter(isOpen)
	for _, record := range open {
		if err := e.sched.Arm(record.ID, record.EndTime); err != nil {
			e.logger.Warn("giveaway not armed", zap.String("giveaway_id", record.ID), zap.Error(err))
			return
		}
	}
	if len(open) > 0 {
		e.sched.EnsureSweep()
	}
}

func (e *Engine) Stop() {
	e.sched.Stop()
}

func (e *Engine) gatherFacts(ctx context.Context, record *Record, userID string) Facts {
	terms := record.Terms
	activity := e.ledger.Get(userID)
	facts := Facts{Activity: &activity}
	if e.oracle == nil {
		return facts
	}

	if terms.RequiredRoleID != "" || terms.ExcludedRoleID != "" {
		facts.Roles = make(map[string]bool, 2)
		for _, roleID := range []string{terms.RequiredRoleID, terms.ExcludedRoleID} {
			if roleID == "" {
				continue
			}
			has, err := e.oracle.HasRole(ctx, record.GuildID, userID, roleID)
			if err != nil {
				e.logger.Warn("role lookup failed",
					zap.String("guild_id", record.GuildID),
					zap.String("user_id", userID),
					zap.String("role_id", roleID),
					zap.Error(err),
				)
				continue
			}
			facts.Roles[roleID] = has
		}
	}

	if terms.RequiredInvites > 0 {
		count, err := e.oracle.InviteUsageCount(ctx, record.GuildID, userID)
		if err != nil {
			e.logger.Warn("invite lookup failed",
				zap.String("guild_id", record.GuildID),
				zap.String("user_id", userID),
				zap.Error(err),
			)
		} else {
			facts.Invites = &count
		}
	}
	return facts
}

func (e *Engine) refresh(ctx context.Context, record Record) {
	if record.Ended {
		return
	}
	_ = e.editAnnouncement(ctx, record, Announcement{Kind: KindOpen, Giveaway: record})
}

// editAnnouncement edits the rendered message, refetching the reference once
// when the stored one no longer works. Failures are logged and returned.
func (e *Engine) editAnnouncement(ctx context.Context, record Record, a Announcement) error {
	ref := record.Announcement
	if ref.IsZero() {
		ref = MessageRef{ChannelID: record.ChannelID, MessageID: record.ID}
	}
	err := e.gateway.EditAnnouncement(ctx, ref, a)
	if err == nil {
		return nil
	}

	fresh, ok, fetchErr := e.gateway.FetchAnnouncement(ctx, record.ChannelID, record.ID)
	if fetchErr != nil || !ok {
		e.logger.Warn("giveaway announcement edit failed",
			zap.String("giveaway_id", record.ID),
			zap.String("kind", a.Kind.String()),
			zap.Error(err),
		)
		return err
	}
	if err := e.gateway.EditAnnouncement(ctx, fresh, a); err != nil {
		e.logger.Warn("giveaway announcement edit failed after refetch",
			zap.String("giveaway_id", record.ID),
			zap.String("kind", a.Kind.String()),
			zap.Error(err),
		)
		return err
	}
	_, _ = e.store.Update(record.ID, func(r *Record) error {
		r.Announcement = fresh
		return nil
	})
	return nil
}

func (e *Engine) resolveAnnouncement(ctx context.Context, record Record) MessageRef {
	if !record.Announcement.IsZero() {
		return record.Announcement
	}
	ref, ok, err := e.gateway.FetchAnnouncement(ctx, record.ChannelID, record.ID)
	if err != nil || !ok {
		return MessageRef{ChannelID: record.ChannelID, MessageID: record.ID}
	}
	return ref
}

func (e *Engine) notify(ctx context.Context, event Event) {
	e.mu.RLock()
	notifier := e.notifier
	e.mu.RUnlock()
	if notifier == nil {
		return
	}
	notifier(ctx, event)
}
