package cli

import (
	"context"
	"fmt"

	"github.com/gophmart/gophmart/internal/client/models"
)

// ShowWishlist lists the locally mirrored wishlist.
func (a *App) ShowWishlist(ctx context.Context) error {
	items := a.wishlist.Items()
	if len(items) == 0 {
		printlnFn("Wishlist is empty.")
		return nil
	}
	for _, item := range items {
		fmt.Fprintf(a.out, "%s  %s  %s  (%s)\n",
			item.ProductID, item.Name, formatPrice(item.Price), item.VendorName)
	}
	return nil
}

// AddToWishlist prompts for a product and wishlists it. Wishlisting a
// product twice is a no-op.
func (a *App) AddToWishlist(ctx context.Context) error {
	productID, err := getSimpleText(a.reader, "Enter product id", a.out)
	if err != nil {
		return err
	}
	name, err := getSimpleText(a.reader, "Enter product name", a.out)
	if err != nil {
		return err
	}

	if err := a.wishlist.Add(ctx, models.WishlistItem{ProductID: productID, Name: name}); err != nil {
		printlnFn("Add failed:", err.Error())
		return err
	}
	printlnFn("Wishlisted.")
	return nil
}

// RemoveFromWishlist prompts for a product id and removes it.
func (a *App) RemoveFromWishlist(ctx context.Context) error {
	productID, err := getSimpleText(a.reader, "Enter product id", a.out)
	if err != nil {
		return err
	}

	if err := a.wishlist.Remove(ctx, productID); err != nil {
		printlnFn("Remove failed:", err.Error())
		return err
	}
	printlnFn("Removed.")
	return nil
}
