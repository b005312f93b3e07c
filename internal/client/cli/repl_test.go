package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"
)

type fakeExec struct {
	loggedIn bool

	calls []string
}

func (f *fakeExec) record(name string) error {
	f.calls = append(f.calls, name)
	return nil
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Register(ctx context.Context) error {
	return f.record("register")
}
func (f *fakeExec) VerifyOTP(ctx context.Context) error {
	return f.record("verify")
}
func (f *fakeExec) ResendOTP(ctx context.Context) error {
	return f.record("resend")
}
func (f *fakeExec) Login(ctx context.Context) error {
	f.loggedIn = true
	return f.record("login")
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}
func (f *fakeExec) Profile(ctx context.Context) error {
	return f.record("profile")
}
func (f *fakeExec) UpdateProfile(ctx context.Context) error {
	return f.record("update")
}
func (f *fakeExec) ShowCart(ctx context.Context) error {
	return f.record("cart")
}
func (f *fakeExec) AddToCart(ctx context.Context) error {
	return f.record("cartadd")
}
func (f *fakeExec) UpdateCartQuantity(ctx context.Context) error {
	return f.record("cartqty")
}
func (f *fakeExec) RemoveFromCart(ctx context.Context) error {
	return f.record("cartrm")
}
func (f *fakeExec) ClearCart(ctx context.Context) error {
	return f.record("cartclear")
}
func (f *fakeExec) ShowWishlist(ctx context.Context) error {
	return f.record("wish")
}
func (f *fakeExec) AddToWishlist(ctx context.Context) error {
	return f.record("wishadd")
}
func (f *fakeExec) RemoveFromWishlist(ctx context.Context) error {
	return f.record("wishrm")
}
func (f *fakeExec) ShowConversations(ctx context.Context) error {
	return f.record("chats")
}
func (f *fakeExec) ShowUnread(ctx context.Context) error {
	return f.record("unread")
}
func (f *fakeExec) MarkRead(ctx context.Context) error {
	return f.record("read")
}
func (f *fakeExec) Refresh(ctx context.Context) error {
	return f.record("refresh")
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	input := strings.NewReader(strings.Join([]string{
		"help",
		"login",
		"help",
		"cart",
		"cartadd",
		"w",
		"chats",
		"unread",
		"foobar",
		"exit",
	}, "\n"))

	exec := &fakeExec{loggedIn: false}
	sc := bufio.NewScanner(input)

	runREPL(context.Background(), exec, func() string { return "status" }, sc)

	wantOrder := []string{"login", "cart", "cartadd", "wish", "chats", "unread"}
	if len(exec.calls) < len(wantOrder) {
		t.Fatalf("few calls: %+v", exec.calls)
	}
	idx := 0
	for _, c := range exec.calls {
		if idx < len(wantOrder) && c == wantOrder[idx] {
			idx++
		}
	}
	if idx != len(wantOrder) {
		t.Fatalf("commands order mismatch: got %v, want subseq %v", exec.calls, wantOrder)
	}
}

func TestRunREPL_UnknownAndQuit(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	input := strings.NewReader("bogus\nquit\n")
	exec := &fakeExec{loggedIn: true}
	sc := bufio.NewScanner(input)

	runREPL(context.Background(), exec, func() string { return "s" }, sc)

	if len(exec.calls) != 0 {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
}
