package giveaway

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

type fakeTimer struct {
	deadline time.Time
	stopped  bool
	fn       func()
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_700_000_000, 0)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) AfterFunc(d time.Duration, fn func()) Timer {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTimer{deadline: f.now.Add(d), fn: fn}
	f.timers = append(f.timers, t)
	return t
}

// Advance moves time forward and fires every live timer whose deadline has
// passed. Timers scheduled by those callbacks wait for the next Advance.
func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	var due, rest []*fakeTimer
	for _, t := range f.timers {
		switch {
		case t.stopped:
		case !t.deadline.After(f.now):
			due = append(due, t)
		default:
			rest = append(rest, t)
		}
	}
	f.timers = rest
	f.mu.Unlock()
	for _, t := range due {
		if !t.stopped {
			t.fn()
		}
	}
}

func (f *fakeClock) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

type sentAnnouncement struct {
	ChannelID    string
	Announcement Announcement
}

type editedAnnouncement struct {
	Ref          MessageRef
	Announcement Announcement
}

type fakeGateway struct {
	mu       sync.Mutex
	next     int
	sent     []sentAnnouncement
	edits    []editedAnnouncement
	sendErr  error
	editErr  func(ref MessageRef) error
	fetchRef *MessageRef
	// editGate, when set, holds every edit until it is closed.
	editGate chan struct{}
}

func (g *fakeGateway) SendAnnouncement(_ context.Context, channelID string, a Announcement) (MessageRef, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sendErr != nil {
		return MessageRef{}, g.sendErr
	}
	g.next++
	g.sent = append(g.sent, sentAnnouncement{ChannelID: channelID, Announcement: a})
	return MessageRef{ChannelID: channelID, MessageID: fmt.Sprintf("m%d", g.next)}, nil
}

func (g *fakeGateway) EditAnnouncement(_ context.Context, ref MessageRef, a Announcement) error {
	if g.editGate != nil {
		<-g.editGate
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.editErr != nil {
		if err := g.editErr(ref); err != nil {
			return err
		}
	}
	g.edits = append(g.edits, editedAnnouncement{Ref: ref, Announcement: a})
	return nil
}

func (g *fakeGateway) FetchAnnouncement(_ context.Context, channelID, messageID string) (MessageRef, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fetchRef == nil {
		return MessageRef{}, false, nil
	}
	return *g.fetchRef, true, nil
}

func (g *fakeGateway) sentOfKind(kind Kind) []sentAnnouncement {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []sentAnnouncement
	for _, s := range g.sent {
		if s.Announcement.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}

func (g *fakeGateway) editsOfKind(kind Kind) []editedAnnouncement {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []editedAnnouncement
	for _, e := range g.edits {
		if e.Announcement.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

var errOracleDown = errors.New("oracle down")

type fakeOracle struct {
	mu      sync.Mutex
	roles   map[string]map[string]bool
	invites map[string]int
	roleErr error
	invErr  error
	calls   int
}

func (o *fakeOracle) HasRole(_ context.Context, _, userID, roleID string) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls++
	if o.roleErr != nil {
		return false, o.roleErr
	}
	return o.roles[userID][roleID], nil
}

func (o *fakeOracle) InviteUsageCount(_ context.Context, _, userID string) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls++
	if o.invErr != nil {
		return 0, o.invErr
	}
	return o.invites[userID], nil
}

// parkedOracle holds every HasRole call until release is closed, reporting
// each arrival on entered.
type parkedOracle struct {
	mu      sync.Mutex
	calls   int
	entered chan struct{}
	release chan struct{}
}

func newParkedOracle(buffer int) *parkedOracle {
	return &parkedOracle{entered: make(chan struct{}, buffer), release: make(chan struct{})}
}

func (o *parkedOracle) HasRole(context.Context, string, string, string) (bool, error) {
	o.mu.Lock()
	o.calls++
	o.mu.Unlock()
	o.entered <- struct{}{}
	<-o.release
	return true, nil
}

func (o *parkedOracle) InviteUsageCount(context.Context, string, string) (int, error) {
	return 0, nil
}

func (o *parkedOracle) Calls() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.calls
}

func waitFor(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}
