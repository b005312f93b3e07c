package api

import (
	"context"
	"time"

	"github.com/gophmart/gophmart/internal/client/models"
)

// Credentials is the result of a successful login: the bearer token and the
// authoritative user profile, always together.
type Credentials struct {
	Token string              `json:"token"`
	User  *models.UserProfile `json:"user"`
}

// SignupRequest carries the fields of a new account application. ShopName is
// only meaningful for vendor signups.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
	ShopName string `json:"shop_name,omitempty"`
}

// Membership is the server-assigned identity of a new wishlist row.
type Membership struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// Client is the full remote capability set the storefront client consumes.
// All calls attach the current bearer token and may fail with a transport
// error or an application-level rejection; see Error for the taxonomy.
type Client interface {
	// Session.
	Login(ctx context.Context, email, password string, role models.Role) (Credentials, error)
	Signup(ctx context.Context, req SignupRequest, role models.Role) error
	VerifyOTP(ctx context.Context, email, otp string, role models.Role) error
	ResendOTP(ctx context.Context, email string, role models.Role) error
	WhoAmI(ctx context.Context) (*models.UserProfile, error)

	// Cart.
	ListCart(ctx context.Context) ([]models.CartItem, error)
	AddCartItem(ctx context.Context, productID string, quantity int) error
	UpdateCartItem(ctx context.Context, itemID string, quantity int) error
	RemoveCartItem(ctx context.Context, itemID string) error
	ClearCart(ctx context.Context) error

	// Wishlist.
	ListWishlist(ctx context.Context) ([]models.WishlistItem, error)
	AddWishlistItem(ctx context.Context, productID string) (Membership, error)
	RemoveWishlistItem(ctx context.Context, productID string) error

	// Chat.
	ListConversations(ctx context.Context) ([]models.Conversation, error)
	UnreadCount(ctx context.Context) (int, error)
	MarkConversationRead(ctx context.Context, conversationID string) error
}
