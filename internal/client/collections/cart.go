package collections

import (
	"context"
	"fmt"

	"github.com/gophmart/gophmart/internal/client/models"
	"github.com/gophmart/gophmart/internal/logging"
)

// CartRemote is the slice of the remote boundary the cart needs.
type CartRemote interface {
	ListCart(ctx context.Context) ([]models.CartItem, error)
	AddCartItem(ctx context.Context, productID string, quantity int) error
	UpdateCartItem(ctx context.Context, itemID string, quantity int) error
	RemoveCartItem(ctx context.Context, itemID string) error
	ClearCart(ctx context.Context) error
}

// Cart mirrors the remote cart for a customer session. Invariants: every
// item has quantity >= 1 and productID values are unique. All mutating
// operations require an authenticated customer session and roll back to
// server truth (via Refresh) when the remote call fails, re-throwing the
// error so callers can report it.
type Cart struct {
	collection[models.CartItem]

	remote CartRemote
	gate   sessionGate
	log    logging.Logger
}

func NewCart(remote CartRemote, gate sessionGate, log logging.Logger) *Cart {
	return &Cart{remote: remote, gate: gate, log: log.With("component", "cart")}
}

// Items returns a copy of the current local cart.
func (c *Cart) Items() []models.CartItem {
	return c.snapshot()
}

// TotalItems is the sum of all quantities, recomputed from local state on
// every call.
func (c *Cart) TotalItems() int {
	var n int
	for _, item := range c.snapshot() {
		n += item.Quantity
	}
	return n
}

// TotalPrice is the cart total in minor currency units, recomputed from
// local state on every call.
func (c *Cart) TotalPrice() int64 {
	var total int64
	for _, item := range c.snapshot() {
		total += item.Price * int64(item.Quantity)
	}
	return total
}

// Refresh fetches the authoritative cart and replaces local state wholesale.
// Rows whose backing product no longer exists are dropped; quantities below
// one are clamped up to preserve the cart invariant.
func (c *Cart) Refresh(ctx context.Context) error {
	if err := c.gate.Require(models.RoleCustomer); err != nil {
		return err
	}

	seq := c.beginRefresh()
	items, err := c.remote.ListCart(ctx)
	if err != nil {
		return fmt.Errorf("refresh cart: %w", err)
	}
	if !c.applyRefresh(seq, sanitizeCart(items)) {
		c.log.Debug(ctx, "stale cart refresh dropped")
	}
	return nil
}

// Add puts a product in the cart. If the product is already present the
// local quantity is optimistically incremented and an update is issued;
// otherwise the remote add goes first (the server assigns the row identity)
// and a refresh pulls the joined product data.
func (c *Cart) Add(ctx context.Context, item models.CartItem) error {
	if err := c.gate.Require(models.RoleCustomer); err != nil {
		return err
	}

	c.mu.Lock()
	idx := c.indexOfLocked(item.ProductID)
	if idx >= 0 {
		c.items[idx].Quantity++
		itemID := c.items[idx].ID
		quantity := c.items[idx].Quantity
		c.mu.Unlock()

		if err := c.remote.UpdateCartItem(ctx, itemID, quantity); err != nil {
			c.rollback(ctx)
			return fmt.Errorf("increment cart item: %w", err)
		}
		return nil
	}
	c.mu.Unlock()

	quantity := item.Quantity
	if quantity < 1 {
		quantity = 1
	}
	if err := c.remote.AddCartItem(ctx, item.ProductID, quantity); err != nil {
		return fmt.Errorf("add cart item: %w", err)
	}
	return c.Refresh(ctx)
}

// Remove deletes an item optimistically; a failed remote delete restores
// server truth and the error is returned.
func (c *Cart) Remove(ctx context.Context, itemID string) error {
	if err := c.gate.Require(models.RoleCustomer); err != nil {
		return err
	}

	c.mu.Lock()
	kept := c.items[:0:0]
	for _, item := range c.items {
		if item.ID != itemID {
			kept = append(kept, item)
		}
	}
	c.items = kept
	c.mu.Unlock()

	if err := c.remote.RemoveCartItem(ctx, itemID); err != nil {
		c.rollback(ctx)
		return fmt.Errorf("remove cart item: %w", err)
	}
	return nil
}

// UpdateQuantity sets an item's quantity. A quantity of zero or less is a
// removal, not an invalid state.
func (c *Cart) UpdateQuantity(ctx context.Context, itemID string, quantity int) error {
	if quantity <= 0 {
		return c.Remove(ctx, itemID)
	}
	if err := c.gate.Require(models.RoleCustomer); err != nil {
		return err
	}

	c.mu.Lock()
	for i := range c.items {
		if c.items[i].ID == itemID {
			c.items[i].Quantity = quantity
			break
		}
	}
	c.mu.Unlock()

	if err := c.remote.UpdateCartItem(ctx, itemID, quantity); err != nil {
		c.rollback(ctx)
		return fmt.Errorf("update cart quantity: %w", err)
	}
	return nil
}

// Clear empties the cart. Unlike the other mutations there is no optimistic
// pre-clear: local state is emptied only once the server confirms, so a
// failed clear cannot hide items that may be mid-checkout.
func (c *Cart) Clear(ctx context.Context) error {
	if err := c.gate.Require(models.RoleCustomer); err != nil {
		return err
	}
	if err := c.remote.ClearCart(ctx); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	c.reset()
	return nil
}

// Deactivate drops all local state; called when the session ends or changes
// role.
func (c *Cart) Deactivate() {
	c.reset()
}

// rollback restores server truth after a failed optimistic mutation. Its
// own failure is only logged: the next successful refresh self-corrects.
func (c *Cart) rollback(ctx context.Context) {
	if err := c.Refresh(ctx); err != nil {
		c.log.Warn(ctx, "rollback refresh failed", "error", err)
	}
}

func (c *Cart) indexOfLocked(productID string) int {
	for i := range c.items {
		if c.items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func sanitizeCart(items []models.CartItem) []models.CartItem {
	out := make([]models.CartItem, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if !item.HasProduct() {
			continue
		}
		if _, dup := seen[item.ProductID]; dup {
			continue
		}
		seen[item.ProductID] = struct{}{}
		if item.Quantity < 1 {
			item.Quantity = 1
		}
		out = append(out, item)
	}
	return out
}
