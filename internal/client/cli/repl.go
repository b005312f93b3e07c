package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	VerifyOTP(ctx context.Context) error
	ResendOTP(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Profile(ctx context.Context) error
	UpdateProfile(ctx context.Context) error
	ShowCart(ctx context.Context) error
	AddToCart(ctx context.Context) error
	UpdateCartQuantity(ctx context.Context) error
	RemoveFromCart(ctx context.Context) error
	ClearCart(ctx context.Context) error
	ShowWishlist(ctx context.Context) error
	AddToWishlist(ctx context.Context) error
	RemoveFromWishlist(ctx context.Context) error
	ShowConversations(ctx context.Context) error
	ShowUnread(ctx context.Context) error
	MarkRead(ctx context.Context) error
	Refresh(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the GophMart client.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help           — show available commands
//	  - register       — create an account (customer or vendor)
//	  - verify         — confirm the signup OTP code
//	  - resend         — request a fresh OTP code
//	  - login          — authenticate
//	  - exit | quit    — leave the program
//
//	Logged in:
//	  - help           — show available commands
//	  - profile | whoami — show the current profile
//	  - update         — edit profile fields
//	  - cart           — list cart items and totals
//	  - cartadd        — add a product to the cart
//	  - cartqty        — change a cart item's quantity
//	  - cartrm         — remove a cart item
//	  - cartclear      — empty the cart
//	  - wish | w       — list the wishlist
//	  - wishadd        — add a product to the wishlist
//	  - wishrm         — remove a product from the wishlist
//	  - chats          — list chat conversations
//	  - unread         — show the unread message counter
//	  - read           — mark a conversation as read
//	  - refresh        — force a chat refresh
//	  - logout         — log out
//	  - exit | quit    — leave the program
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("gm> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: profile, update, cart, cartadd, cartqty, cartrm, cartclear, (w)ish, wishadd, wishrm, chats, unread, read, refresh, logout, exit")
			} else {
				printlnFn("Available commands: register, verify, resend, login, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "verify":
			_ = a.VerifyOTP(ctx)

		case "resend":
			_ = a.ResendOTP(ctx)

		case "login":
			_ = a.Login(ctx)

		case "profile", "whoami":
			_ = a.Profile(ctx)

		case "update":
			_ = a.UpdateProfile(ctx)

		case "cart":
			_ = a.ShowCart(ctx)

		case "cartadd":
			_ = a.AddToCart(ctx)

		case "cartqty":
			_ = a.UpdateCartQuantity(ctx)

		case "cartrm":
			_ = a.RemoveFromCart(ctx)

		case "cartclear":
			_ = a.ClearCart(ctx)

		case "w", "wish":
			_ = a.ShowWishlist(ctx)

		case "wishadd":
			_ = a.AddToWishlist(ctx)

		case "wishrm":
			_ = a.RemoveFromWishlist(ctx)

		case "chats":
			_ = a.ShowConversations(ctx)

		case "unread":
			_ = a.ShowUnread(ctx)

		case "read":
			_ = a.MarkRead(ctx)

		case "refresh":
			_ = a.Refresh(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
