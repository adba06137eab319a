package automod

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"community-assistant/internal/config"
	"community-assistant/internal/modules/audit"
	"community-assistant/internal/storage"
	"community-assistant/internal/utils"

	"github.com/bwmarrin/discordgo"
	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"
)

type Rule string

const (
	RuleMentions Rule = "mentions"
	RuleWords    Rule = "words"
	RuleLinks    Rule = "links"
	RuleFlood    Rule = "flood"
)

const (
	listCacheSize = 1024
	windowCap     = 50_000
	maxQuoted     = 500
)

type Verdict struct {
	Rule    Rule
	Detail  string
	Matched []string
	Strikes int
}

// Message is the part of a chat message the filter inspects.
type Message struct {
	GuildID     string
	ChannelID   string
	MessageID   string
	AuthorID    string
	Content     string
	Mentions    int
	MemberRoles []string
}

func FromDiscord(msg *discordgo.Message) Message {
	out := Message{
		GuildID:   msg.GuildID,
		ChannelID: msg.ChannelID,
		MessageID: msg.ID,
		Content:   msg.Content,
		Mentions:  len(msg.Mentions) + len(msg.MentionRoles),
	}
	if msg.Author != nil {
		out.AuthorID = msg.Author.ID
	}
	if msg.Member != nil {
		out.MemberRoles = msg.Member.Roles
	}
	return out
}

type Module struct {
	mu      sync.Mutex
	windows *lru.Cache
	lists   *lru.Cache
	cfg     config.AutomodConfig
	store   *storage.Store
	audit   *audit.Logger
	logger  *zap.Logger
	now     func() time.Time
}

func New(cfg config.AutomodConfig, store *storage.Store, auditLogger *audit.Logger, logger *zap.Logger) *Module {
	windows, _ := lru.New(windowCap)
	lists, _ := lru.New(listCacheSize)
	return &Module{
		windows: windows,
		lists:   lists,
		cfg:     cfg,
		store:   store,
		audit:   auditLogger,
		logger:  logger,
		now:     time.Now,
	}
}

// Invalidate drops the cached word and ignore lists for a guild after a
// command changed them.
func (m *Module) Invalidate(guildID string) {
	m.lists.Remove(guildID)
}

// HandleMessage runs the filter and, on a hit, records a strike, writes the
// audit entry and deletes the message when session is set.
func (m *Module) HandleMessage(ctx context.Context, session *discordgo.Session, msg Message, settings storage.GuildSettings) (Verdict, bool) {
	if !settings.AutomodEnabled || msg.AuthorID == "" {
		return Verdict{}, false
	}
	lists, err := m.loadLists(ctx, msg.GuildID)
	if err != nil {
		m.logger.Warn("automod lists unavailable", zap.String("guild_id", msg.GuildID), zap.Error(err))
		return Verdict{}, false
	}

	maxMentions := settings.MaxMentions
	if maxMentions <= 0 {
		maxMentions = m.cfg.MaxMentions
	}
	verdict, flagged := m.Check(msg, lists, maxMentions)
	if !flagged {
		return Verdict{}, false
	}

	if m.store != nil {
		forgive := time.Duration(m.cfg.StrikeForgiveMinutes) * time.Minute
		count, err := m.store.AddStrike(ctx, msg.GuildID, msg.AuthorID, string(verdict.Rule), "delete", forgive)
		if err != nil {
			m.logger.Warn("automod strike failed", zap.String("guild_id", msg.GuildID), zap.String("user_id", msg.AuthorID), zap.Error(err))
		}
		verdict.Strikes = count
	}

	level := audit.LevelWarn
	if verdict.Strikes >= 3 {
		level = audit.LevelCrit
	}
	details := fmt.Sprintf("rule=%s strikes=%d channel=<#%s> %s", verdict.Rule, verdict.Strikes, msg.ChannelID, verdict.Detail)
	if verdict.Rule == RuleWords {
		details += "\n" + truncate(Highlight(msg.Content, verdict.Matched), maxQuoted)
	}
	m.audit.Log(ctx, level, msg.GuildID, msg.AuthorID, "automod_"+string(verdict.Rule), details)

	if session != nil {
		if err := session.ChannelMessageDelete(msg.ChannelID, msg.MessageID); err != nil {
			m.logger.Warn("automod delete failed", zap.String("channel_id", msg.ChannelID), zap.String("message_id", msg.MessageID), zap.Error(err))
		}
	}
	return verdict, true
}

// Check applies the rules in order: mentions, banned words, blocked links,
// then flood. Ignored users and roles bypass everything.
func (m *Module) Check(msg Message, lists storage.AutomodLists, maxMentions int) (Verdict, bool) {
	if contains(lists.IgnoredUsers, msg.AuthorID) {
		return Verdict{}, false
	}
	for _, role := range msg.MemberRoles {
		if contains(lists.IgnoredRoles, role) {
			return Verdict{}, false
		}
	}

	if maxMentions > 0 && msg.Mentions > maxMentions {
		return Verdict{Rule: RuleMentions, Detail: fmt.Sprintf("mentions=%d max=%d", msg.Mentions, maxMentions)}, true
	}

	if matched := MatchWords(msg.Content, lists.Words); len(matched) > 0 {
		return Verdict{Rule: RuleWords, Detail: "words=" + strings.Join(matched, ","), Matched: matched}, true
	}

	if len(lists.BlockedDomains) > 0 {
		blocklist := make(map[string]struct{}, len(lists.BlockedDomains))
		for _, domain := range lists.BlockedDomains {
			blocklist[domain] = struct{}{}
		}
		for _, raw := range utils.ExtractURLs(msg.Content) {
			normalized, domain, err := utils.NormalizeURL(raw)
			if err != nil {
				continue
			}
			if utils.DomainBlocked(domain, blocklist) {
				return Verdict{Rule: RuleLinks, Detail: "url=" + normalized, Matched: []string{domain}}, true
			}
		}
	}

	if m.cfg.FloodMessages > 0 {
		count := m.window(msg.GuildID + ":" + msg.AuthorID).Add(m.now())
		if count > m.cfg.FloodMessages {
			return Verdict{Rule: RuleFlood, Detail: fmt.Sprintf("messages=%d window=%ds", count, m.cfg.FloodWindowSeconds)}, true
		}
	}
	return Verdict{}, false
}

// MatchWords returns the banned words found in content, ignoring case and
// common accents.
func MatchWords(content string, words []string) []string {
	if content == "" || len(words) == 0 {
		return nil
	}
	normalized := normalizeText(content)
	var matched []string
	for _, word := range words {
		needle := normalizeText(strings.TrimSpace(word))
		if needle == "" || contains(matched, needle) {
			continue
		}
		if strings.Contains(normalized, needle) {
			matched = append(matched, needle)
		}
	}
	return matched
}

// Highlight bolds every occurrence of the matched words for the log channel.
func Highlight(content string, matched []string) string {
	if content == "" {
		return content
	}
	lower := strings.ToLower(content)
	if len(lower) != len(content) {
		return content
	}
	var b strings.Builder
	for i := 0; i < len(content); {
		hit := ""
		for _, word := range matched {
			if word != "" && strings.HasPrefix(lower[i:], word) && len(word) > len(hit) {
				hit = word
			}
		}
		if hit == "" {
			b.WriteByte(content[i])
			i++
			continue
		}
		b.WriteString("**" + content[i:i+len(hit)] + "**")
		i += len(hit)
	}
	return b.String()
}

// SplitWords accepts "a, b ,c" style input from the addword command.
func SplitWords(input string) []string {
	var out []string
	for _, part := range strings.Split(input, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" && !contains(out, part) {
			out = append(out, part)
		}
	}
	return out
}

func (m *Module) loadLists(ctx context.Context, guildID string) (storage.AutomodLists, error) {
	if cached, ok := m.lists.Get(guildID); ok {
		return cached.(storage.AutomodLists), nil
	}
	if m.store == nil {
		return storage.AutomodLists{}, nil
	}
	lists, err := m.store.LoadAutomodLists(ctx, guildID)
	if err != nil {
		return storage.AutomodLists{}, err
	}
	m.lists.Add(guildID, lists)
	return lists, nil
}

func (m *Module) window(key string) *utils.SlidingWindow {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cached, ok := m.windows.Get(key); ok {
		return cached.(*utils.SlidingWindow)
	}
	seconds := m.cfg.FloodWindowSeconds
	if seconds <= 0 {
		seconds = 8
	}
	window := utils.NewSlidingWindow(time.Duration(seconds) * time.Second)
	m.windows.Add(key, window)
	return window
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

var accentReplacer = strings.NewReplacer(
	"à", "a", "á", "a", "â", "a", "ä", "a",
	"è", "e", "é", "e", "ê", "e", "ë", "e",
	"ì", "i", "í", "i", "î", "i", "ï", "i",
	"ò", "o", "ó", "o", "ô", "o", "ö", "o",
	"ù", "u", "ú", "u", "û", "u", "ü", "u",
	"ç", "c", "ñ", "n",
)

func normalizeText(input string) string {
	return accentReplacer.Replace(strings.ToLower(input))
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "…"
}
