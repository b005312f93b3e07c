package models

import "time"

// WishlistItem mirrors one remote wishlist membership. ID is the
// server-assigned membership identity, distinct from ProductID.
type WishlistItem struct {
	ID         string    `json:"id"`
	ProductID  string    `json:"product_id"`
	Name       string    `json:"name"`
	Price      int64     `json:"price"` // minor currency units
	Image      string    `json:"image,omitempty"`
	VendorName string    `json:"vendor_name,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// HasProduct reports whether the item's backing product still exists.
func (i WishlistItem) HasProduct() bool {
	return i.ProductID != "" && i.Name != ""
}
