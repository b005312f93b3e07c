package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gophmart/gophmart/internal/client/models"
)

// formatPrice renders a minor-unit amount as a decimal string.
func formatPrice(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}

func (a *App) getQuantity(prompt string) (int, error) {
	answer, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return 0, err
	}
	quantity, err := strconv.Atoi(answer)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", answer)
	}
	return quantity, nil
}

// ShowCart lists the locally mirrored cart with its totals.
func (a *App) ShowCart(ctx context.Context) error {
	items := a.cart.Items()
	if len(items) == 0 {
		printlnFn("Cart is empty.")
		return nil
	}
	for _, item := range items {
		fmt.Fprintf(a.out, "%s  %s x%d  %s  (%s)\n",
			item.ID, item.Name, item.Quantity, formatPrice(item.Price*int64(item.Quantity)), item.VendorName)
	}
	fmt.Fprintf(a.out, "Total: %d items, %s\n", a.cart.TotalItems(), formatPrice(a.cart.TotalPrice()))
	return nil
}

// AddToCart prompts for a product and adds it. Adding a product that is
// already in the cart bumps its quantity instead.
func (a *App) AddToCart(ctx context.Context) error {
	productID, err := getSimpleText(a.reader, "Enter product id", a.out)
	if err != nil {
		return err
	}
	quantity, err := a.getQuantity("Enter quantity")
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	if err := a.cart.Add(ctx, models.CartItem{ProductID: productID, Quantity: quantity}); err != nil {
		printlnFn("Add failed:", err.Error())
		return err
	}
	printlnFn("Added.")
	return nil
}

// UpdateCartQuantity sets a cart item's quantity; zero removes the item.
func (a *App) UpdateCartQuantity(ctx context.Context) error {
	itemID, err := getSimpleText(a.reader, "Enter cart item id", a.out)
	if err != nil {
		return err
	}
	quantity, err := a.getQuantity("Enter new quantity (0 removes)")
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	if err := a.cart.UpdateQuantity(ctx, itemID, quantity); err != nil {
		printlnFn("Update failed:", err.Error())
		return err
	}
	printlnFn("Done.")
	return nil
}

// RemoveFromCart prompts for a cart item id and removes it.
func (a *App) RemoveFromCart(ctx context.Context) error {
	itemID, err := getSimpleText(a.reader, "Enter cart item id", a.out)
	if err != nil {
		return err
	}

	if err := a.cart.Remove(ctx, itemID); err != nil {
		printlnFn("Remove failed:", err.Error())
		return err
	}
	printlnFn("Removed.")
	return nil
}

// ClearCart empties the cart after server confirmation.
func (a *App) ClearCart(ctx context.Context) error {
	if err := a.cart.Clear(ctx); err != nil {
		printlnFn("Clear failed:", err.Error())
		return err
	}
	printlnFn("Cart cleared.")
	return nil
}
