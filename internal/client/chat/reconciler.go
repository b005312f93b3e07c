// Package chat keeps the conversation list and the aggregate unread counter
// in sync with the server by periodic polling. Both are read-only views
// backing passive UI: refresh failures degrade to empty and zero rather than
// surfacing errors, and the next poll self-corrects.
package chat

import (
	"context"
	"sync"
	"time"

	"github.com/gophmart/gophmart/internal/client/models"
	"github.com/gophmart/gophmart/internal/logging"
)

const (
	defaultPollInterval = 30 * time.Second
	defaultRetryDelay   = time.Second

	// The conversation list is worth fighting for; the unread counter is
	// cheap to just pick up on the next poll, so it gets fewer retries.
	conversationRetries = 3
	unreadRetries       = 2
)

// ChatRemote is the slice of the remote boundary the reconciler needs.
type ChatRemote interface {
	ListConversations(ctx context.Context) ([]models.Conversation, error)
	UnreadCount(ctx context.Context) (int, error)
	MarkConversationRead(ctx context.Context, conversationID string) error
}

// sessionGate is the local role check the reconciler runs before any network
// call. Chat is available to both roles.
type sessionGate interface {
	RequireAny(roles ...models.Role) error
}

// Reconciler polls chat metadata while a session is authenticated. The
// conversation list and the unread counter are refreshed independently, each
// guarded by its own monotonic sequence number so a stale in-flight response
// can never overwrite a newer one or resurrect state after Deactivate.
type Reconciler struct {
	remote ChatRemote
	gate   sessionGate
	log    logging.Logger

	mu            sync.Mutex
	conversations []models.Conversation
	unread        int
	convSeq       uint64
	unreadSeq     uint64
	cancel        context.CancelFunc

	wake chan struct{}

	// poll cadence and retry pacing, fixed at construction
	interval   time.Duration
	retryDelay time.Duration
}

func NewReconciler(remote ChatRemote, gate sessionGate, log logging.Logger, opts ...Option) *Reconciler {
	r := &Reconciler{
		remote:     remote,
		gate:       gate,
		log:        log.With("component", "chat"),
		wake:       make(chan struct{}, 1),
		interval:   defaultPollInterval,
		retryDelay: defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type Option func(*Reconciler)

// WithPollInterval overrides the poll cadence.
func WithPollInterval(d time.Duration) Option {
	return func(r *Reconciler) {
		if d > 0 {
			r.interval = d
		}
	}
}

// Conversations returns a copy of the current conversation list.
func (r *Reconciler) Conversations() []models.Conversation {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Conversation, len(r.conversations))
	copy(out, r.conversations)
	return out
}

// Unread returns the aggregate unread counter. It is maintained separately
// from the per-conversation counts because it refreshes on its own cadence.
func (r *Reconciler) Unread() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.unread
}

// Start arms the polling loop: both refreshes fire immediately, then repeat
// every poll interval until Stop or ctx cancellation. Calling Start while
// already running is a no-op, so the timer is never double-armed.
func (r *Reconciler) Start(ctx context.Context) {
	r.mu.Lock()
	if r.cancel != nil {
		r.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.mu.Unlock()

	go r.loop(ctx)
}

// Stop tears the polling loop down. Idempotent.
func (r *Reconciler) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Wake triggers an immediate out-of-band refresh, used when the process
// regains foreground and may have slept through polls. No-op when the loop
// is not running.
func (r *Reconciler) Wake() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Deactivate stops polling and drops all local state; called when the
// session ends.
func (r *Reconciler) Deactivate() {
	r.Stop()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.convSeq++
	r.unreadSeq++
	r.conversations = nil
	r.unread = 0
}

func (r *Reconciler) loop(ctx context.Context) {
	r.refresh(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.refresh(ctx)
		case <-r.wake:
			r.refresh(ctx)
		}
	}
}

func (r *Reconciler) refresh(ctx context.Context) {
	r.RefreshConversations(ctx)
	r.RefreshUnreadCount(ctx)
}

// RefreshConversations fetches the conversation list with bounded retry and
// replaces local state wholesale. It never returns an error: a non-retryable
// failure or exhausted retries empty the list, and the next poll recovers.
func (r *Reconciler) RefreshConversations(ctx context.Context) {
	if err := r.gate.RequireAny(models.RoleCustomer, models.RoleVendor); err != nil {
		r.log.Debug(ctx, "conversation refresh skipped", "error", err)
		return
	}

	r.mu.Lock()
	r.convSeq++
	seq := r.convSeq
	r.mu.Unlock()

	var items []models.Conversation
	err := retry(ctx, conversationRetries, r.retryDelay, func(ctx context.Context) error {
		var err error
		items, err = r.remote.ListConversations(ctx)
		return err
	})
	if err != nil {
		r.log.Warn(ctx, "conversation refresh failed", "error", err)
		items = nil
	}
	if ctx.Err() != nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if seq != r.convSeq {
		r.log.Debug(ctx, "stale conversation refresh dropped")
		return
	}
	r.conversations = sanitizeConversations(items)
}

// RefreshUnreadCount fetches the aggregate unread counter with bounded
// retry. Like RefreshConversations it never returns an error; failures
// degrade to zero and the counter is clamped non-negative.
func (r *Reconciler) RefreshUnreadCount(ctx context.Context) {
	if err := r.gate.RequireAny(models.RoleCustomer, models.RoleVendor); err != nil {
		r.log.Debug(ctx, "unread refresh skipped", "error", err)
		return
	}

	r.mu.Lock()
	r.unreadSeq++
	seq := r.unreadSeq
	r.mu.Unlock()

	var count int
	err := retry(ctx, unreadRetries, r.retryDelay, func(ctx context.Context) error {
		var err error
		count, err = r.remote.UnreadCount(ctx)
		return err
	})
	if err != nil {
		r.log.Warn(ctx, "unread refresh failed", "error", err)
		count = 0
	}
	if count < 0 {
		count = 0
	}
	if ctx.Err() != nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if seq != r.unreadSeq {
		r.log.Debug(ctx, "stale unread refresh dropped")
		return
	}
	r.unread = count
}

// MarkConversationRead optimistically zeroes the conversation's local unread
// count, issues the remote mark-read call and then reconciles the aggregate
// counter once, regardless of the call's outcome. A failed mark-read is not
// rolled back individually; the next scheduled poll self-corrects.
func (r *Reconciler) MarkConversationRead(ctx context.Context, conversationID string) {
	if conversationID == "" {
		r.log.Warn(ctx, "mark read skipped, empty conversation id")
		return
	}
	if err := r.gate.RequireAny(models.RoleCustomer, models.RoleVendor); err != nil {
		r.log.Debug(ctx, "mark read skipped", "error", err)
		return
	}

	r.mu.Lock()
	for i := range r.conversations {
		if r.conversations[i].ID == conversationID {
			r.conversations[i].UnreadCount = 0
			break
		}
	}
	r.mu.Unlock()

	if err := r.remote.MarkConversationRead(ctx, conversationID); err != nil {
		r.log.Warn(ctx, "mark read failed", "conversation_id", conversationID, "error", err)
	}
	r.RefreshUnreadCount(ctx)
}

func sanitizeConversations(items []models.Conversation) []models.Conversation {
	out := make([]models.Conversation, 0, len(items))
	for _, c := range items {
		if !c.Valid() {
			continue
		}
		if c.UnreadCount < 0 {
			c.UnreadCount = 0
		}
		out = append(out, c)
	}
	return out
}
