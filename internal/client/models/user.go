// Package models defines the client-side data model: the authenticated user
// profile and the locally cached storefront collections (cart, wishlist,
// chat metadata).
package models

// Role discriminates the two account types a session can carry. The role is
// immutable for the lifetime of a session.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleVendor   Role = "vendor"
)

// UserProfile is the identity attached to an authenticated session.
type UserProfile struct {
	ID       string `json:"id"`
	Role     Role   `json:"role"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Photo    string `json:"photo,omitempty"`
	ShopName string `json:"shop_name,omitempty"`
}

// ProfilePatch is a partial profile update. Nil fields are left untouched;
// the role and id are never patchable.
type ProfilePatch struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Photo    *string `json:"photo,omitempty"`
	ShopName *string `json:"shop_name,omitempty"`
}

// Apply merges the patch into a copy of the profile and returns it.
func (p ProfilePatch) Apply(u UserProfile) UserProfile {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Photo != nil {
		u.Photo = *p.Photo
	}
	if p.ShopName != nil {
		u.ShopName = *p.ShopName
	}
	return u
}
