package models

// CartItem is one row of the remote cart mirrored locally. ID is the
// server-assigned identity of the membership row and is distinct from
// ProductID. Name, Price, Image and VendorName are denormalized product
// fields joined in by the server; a deleted product leaves them empty.
type CartItem struct {
	ID         string `json:"id"`
	ProductID  string `json:"product_id"`
	Quantity   int    `json:"quantity"`
	Name       string `json:"name"`
	Price      int64  `json:"price"` // minor currency units
	Image      string `json:"image,omitempty"`
	VendorName string `json:"vendor_name,omitempty"`
}

// HasProduct reports whether the item's backing product still exists.
// The server joins product data into each row; a product deleted after
// being added to the cart yields a row without it.
func (i CartItem) HasProduct() bool {
	return i.ProductID != "" && i.Name != ""
}
