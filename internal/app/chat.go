package app

import (
	"context"
	"strings"

	"github.com/scoutline/scout-client/internal/domain/chat"
	"github.com/scoutline/scout-client/internal/domain/players"
	"github.com/scoutline/scout-client/internal/domain/profile"
	"github.com/scoutline/scout-client/internal/i18n"
	"github.com/scoutline/scout-client/internal/intent"
	"github.com/scoutline/scout-client/internal/logging"
	"github.com/scoutline/scout-client/internal/reconcile"
	"github.com/scoutline/scout-client/internal/storage"
)

// History returns the chat sessions, most recent first.
func (c *Controller) History() []chat.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]chat.Session{}, c.state.History...)
}

// SubmitQuery appends the user's message, runs the search and appends the
// bot's reply. A failed search still produces a reply.
func (c *Controller) SubmitQuery(ctx context.Context, text string) (chat.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return chat.Message{}, invalid("query", "message is required")
	}
	now := c.deps.Now()

	c.mu.Lock()
	lang := c.state.Language
	followUp := c.state.ActiveSessionID != ""
	var hint *bool
	if followUp && len(c.state.Messages) > 0 {
		prev := c.state.Messages[len(c.state.Messages)-1]
		hint = intent.SatisfactionHint(&prev, lang, text, c.deps.Classifier)
	}

	var created *chat.Session
	if !followUp {
		s := chat.NewSession(c.deps.NewID(), text, now)
		c.state.History = reconcile.PrependSession(c.state.History, s)
		c.state.ActiveSessionID = s.ID
		c.state.Messages = nil
		c.persistLocked(ctx, storage.KeyChatHistory, c.state.History)
		c.persistLocked(ctx, storage.KeyChatSessionID, s.ID)
		created = &s
	}
	sessionID := c.state.ActiveSessionID
	session, _ := reconcile.FindSession(c.state.History, sessionID)

	userMsg := chat.Message{ID: c.deps.NewID(), Sender: chat.SenderUser, Text: text, CreatedAt: now}
	c.state.Messages = append(c.state.Messages, userMsg)
	c.state.IsLoading = true

	req := chat.SearchRequest{
		SessionID:       sessionID,
		Query:           text,
		IsFollowUp:      followUp,
		Satisfaction:    hint,
		Language:        lang,
		UserID:          c.userIDLocked(),
		RemoteSessionID: session.RemoteID,
	}
	token, userID, authed := c.remoteIdentityLocked()
	c.mu.Unlock()

	if created != nil && authed {
		c.submit(ctx, kindSessionCreate, sessionPayload{Token: token, UserID: userID, Session: *created})
		if remoteID := c.remoteSessionID(sessionID); remoteID != "" {
			req.RemoteSessionID = remoteID
		}
	}
	c.recordMessage(ctx, sessionID, userMsg)

	bot, remoteID := c.search(ctx, req)

	c.mu.Lock()
	if c.state.ActiveSessionID == sessionID {
		c.state.Messages = append(c.state.Messages, bot)
	}
	c.state.IsLoading = false
	c.mu.Unlock()

	c.resolveSession(ctx, sessionID, remoteID)
	c.recordMessage(ctx, sessionID, bot)
	return bot, nil
}

// search runs req and turns the outcome into the bot's reply. It also returns
// the remote session id the search service reported, if any.
func (c *Controller) search(ctx context.Context, req chat.SearchRequest) (chat.Message, string) {
	apology := chat.Message{
		ID:     c.deps.NewID(),
		Sender: chat.SenderBot,
		Text:   i18n.Text(i18n.MsgSearchFailed, req.Language),
	}
	if c.deps.Search == nil {
		apology.CreatedAt = c.deps.Now()
		return apology, ""
	}

	res, err := c.deps.Search.Search(ctx, req)
	apology.CreatedAt = c.deps.Now()
	if err != nil {
		logging.Warn(c.log(ctx), "search failed",
			logging.FieldUpstream, "search",
			logging.FieldSessionID, req.SessionID,
			"error", err,
		)
		return apology, ""
	}
	if !res.Success {
		logging.Warn(c.log(ctx), "search rejected",
			logging.FieldUpstream, "search",
			logging.FieldSessionID, req.SessionID,
			"message", res.Message,
		)
		return apology, res.RemoteSessionID
	}

	bot := apology
	bot.Players = players.NormalizeAll(res.Players, c.opts.PlayerDefaults)
	bot.Text = strings.TrimSpace(res.Response)
	if bot.Text == "" && len(bot.Players) == 0 {
		bot.Text = i18n.Text(i18n.MsgNoResults, req.Language)
	}
	if q := strings.TrimSpace(res.SatisfactionQuestion); q != "" {
		bot.IsSatisfactionQuestion = true
		if bot.Text == "" {
			bot.Text = q
		} else {
			bot.Text += "\n\n" + q
		}
	}
	return bot, res.RemoteSessionID
}

// recordMessage persists m remotely. Until the session's remote id is known
// the message waits in the session's queue.
func (c *Controller) recordMessage(ctx context.Context, sessionID string, m chat.Message) {
	c.mu.Lock()
	token, _, ok := c.remoteIdentityLocked()
	if !ok {
		c.mu.Unlock()
		return
	}
	s, found := reconcile.FindSession(c.state.History, sessionID)
	if !found {
		c.mu.Unlock()
		return
	}
	if s.RemoteID == "" {
		c.pending[sessionID] = append(c.pending[sessionID], m)
		c.persistPendingLocked(ctx)
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	c.submit(ctx, kindMessageAppend, messagePayload{Token: token, RemoteSessionID: s.RemoteID, Message: m})
}

// resolveSession records the remote id of a local session and releases the
// messages queued for it.
func (c *Controller) resolveSession(ctx context.Context, sessionID, remoteID string) {
	if remoteID == "" {
		return
	}
	c.mu.Lock()
	if history, changed := reconcile.PatchRemoteID(c.state.History, sessionID, remoteID); changed {
		c.state.History = history
		c.persistLocked(ctx, storage.KeyChatHistory, c.state.History)
	}
	queued := c.pending[sessionID]
	if len(queued) > 0 {
		delete(c.pending, sessionID)
		c.persistPendingLocked(ctx)
	}
	token, _, ok := c.remoteIdentityLocked()
	c.mu.Unlock()

	if !ok {
		return
	}
	for _, m := range queued {
		c.submit(ctx, kindMessageAppend, messagePayload{Token: token, RemoteSessionID: remoteID, Message: m})
	}
}

func (c *Controller) remoteSessionID(sessionID string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, _ := reconcile.FindSession(c.state.History, sessionID)
	return s.RemoteID
}

func (c *Controller) userIDLocked() string {
	if c.state.Profile != nil {
		return c.state.Profile.ID
	}
	return ""
}

// persistPendingLocked writes the message queues so they survive a restart
// while the session create is still waiting in the outbox.
func (c *Controller) persistPendingLocked(ctx context.Context) {
	if len(c.pending) == 0 {
		c.removeLocked(ctx, storage.KeyPendingMessages)
		return
	}
	c.persistLocked(ctx, storage.KeyPendingMessages, c.pending)
}

// PendingMessages reports how many messages wait for a session's remote id.
func (c *Controller) PendingMessages(sessionID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending[sessionID])
}

// NewChat starts a fresh conversation. Earlier sessions stay in history.
func (c *Controller) NewChat(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Messages = nil
	c.state.ActiveSessionID = ""
	c.state.IsLoading = false
	if c.state.Auth == profile.StateAuthenticated {
		c.state.View = profile.ViewChat
	}
	c.removeLocked(ctx, storage.KeyChatSessionID)
}

// ClearHistory drops every session locally and asks the remote store to do
// the same.
func (c *Controller) ClearHistory(ctx context.Context) {
	c.mu.Lock()
	c.state.History = nil
	c.state.Messages = nil
	c.state.ActiveSessionID = ""
	c.pending = make(map[string][]chat.Message)
	c.removeLocked(ctx, storage.KeyChatHistory)
	c.removeLocked(ctx, storage.KeyPendingMessages)
	c.removeLocked(ctx, storage.KeyChatSessionID)
	token, userID, ok := c.remoteIdentityLocked()
	c.mu.Unlock()

	if ok {
		c.submit(ctx, kindHistoryDelete, historyPayload{Token: token, UserID: userID})
	}
}
