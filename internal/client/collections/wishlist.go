package collections

import (
	"context"
	"fmt"

	"github.com/gophmart/gophmart/internal/client/api"
	"github.com/gophmart/gophmart/internal/client/models"
	"github.com/gophmart/gophmart/internal/logging"
)

// WishlistRemote is the slice of the remote boundary the wishlist needs.
type WishlistRemote interface {
	ListWishlist(ctx context.Context) ([]models.WishlistItem, error)
	AddWishlistItem(ctx context.Context, productID string) (api.Membership, error)
	RemoveWishlistItem(ctx context.Context, productID string) error
}

// Wishlist mirrors the remote wishlist for a customer session. Unlike the
// cart, a successful add does not refetch: the new item is synthesized from
// the server-assigned membership plus the caller-supplied display fields,
// saving a round trip.
type Wishlist struct {
	collection[models.WishlistItem]

	remote WishlistRemote
	gate   sessionGate
	log    logging.Logger
}

func NewWishlist(remote WishlistRemote, gate sessionGate, log logging.Logger) *Wishlist {
	return &Wishlist{remote: remote, gate: gate, log: log.With("component", "wishlist")}
}

// Items returns a copy of the current local wishlist.
func (w *Wishlist) Items() []models.WishlistItem {
	return w.snapshot()
}

// IsWishlisted reports whether the product is currently in the local
// wishlist.
func (w *Wishlist) IsWishlisted(productID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.indexOfLocked(productID) >= 0
}

// Refresh fetches the authoritative wishlist and replaces local state
// wholesale, dropping rows whose backing product is gone.
func (w *Wishlist) Refresh(ctx context.Context) error {
	if err := w.gate.Require(models.RoleCustomer); err != nil {
		return err
	}

	seq := w.beginRefresh()
	items, err := w.remote.ListWishlist(ctx)
	if err != nil {
		return fmt.Errorf("refresh wishlist: %w", err)
	}
	if !w.applyRefresh(seq, sanitizeWishlist(items)) {
		w.log.Debug(ctx, "stale wishlist refresh dropped")
	}
	return nil
}

// Add puts a product on the wishlist. A duplicate add is a no-op decided
// locally, before any network call. The remote add goes first since the
// server assigns the membership id; the local item is then synthesized from
// the response and the display fields the caller already has.
func (w *Wishlist) Add(ctx context.Context, item models.WishlistItem) error {
	if err := w.gate.Require(models.RoleCustomer); err != nil {
		return err
	}
	if w.IsWishlisted(item.ProductID) {
		return nil
	}

	membership, err := w.remote.AddWishlistItem(ctx, item.ProductID)
	if err != nil {
		return fmt.Errorf("add wishlist item: %w", err)
	}

	item.ID = membership.ID
	item.CreatedAt = membership.CreatedAt

	w.mu.Lock()
	// an interleaved refresh may have landed the item already
	if w.indexOfLocked(item.ProductID) < 0 {
		w.items = append(w.items, item)
	}
	w.mu.Unlock()
	return nil
}

// Remove deletes a product optimistically; a failed remote delete restores
// server truth and the error is returned.
func (w *Wishlist) Remove(ctx context.Context, productID string) error {
	if err := w.gate.Require(models.RoleCustomer); err != nil {
		return err
	}

	w.mu.Lock()
	kept := w.items[:0:0]
	for _, item := range w.items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	w.items = kept
	w.mu.Unlock()

	if err := w.remote.RemoveWishlistItem(ctx, productID); err != nil {
		w.rollback(ctx)
		return fmt.Errorf("remove wishlist item: %w", err)
	}
	return nil
}

// Deactivate drops all local state; called when the session ends or changes
// role.
func (w *Wishlist) Deactivate() {
	w.reset()
}

func (w *Wishlist) rollback(ctx context.Context) {
	if err := w.Refresh(ctx); err != nil {
		w.log.Warn(ctx, "rollback refresh failed", "error", err)
	}
}

func (w *Wishlist) indexOfLocked(productID string) int {
	for i := range w.items {
		if w.items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func sanitizeWishlist(items []models.WishlistItem) []models.WishlistItem {
	out := make([]models.WishlistItem, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if !item.HasProduct() {
			continue
		}
		if _, dup := seen[item.ProductID]; dup {
			continue
		}
		seen[item.ProductID] = struct{}{}
		out = append(out, item)
	}
	return out
}
