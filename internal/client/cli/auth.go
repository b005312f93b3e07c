package cli

import (
	"context"
	"fmt"

	"github.com/gophmart/gophmart/internal/client/api"
	"github.com/gophmart/gophmart/internal/client/models"
	"github.com/gophmart/gophmart/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// getRole prompts for the account role. An empty answer defaults to
// customer.
func (a *App) getRole() (models.Role, error) {
	answer, err := getSimpleText(a.reader, "Role (customer/vendor, default customer)", a.out)
	if err != nil {
		return "", err
	}
	switch answer {
	case "", string(models.RoleCustomer):
		return models.RoleCustomer, nil
	case string(models.RoleVendor):
		return models.RoleVendor, nil
	default:
		return "", fmt.Errorf("unknown role %q", answer)
	}
}

// Register prompts for account details and submits a signup application.
// The account is not usable until the emailed OTP code is verified. The
// password byte slice is securely wiped before returning.
func (a *App) Register(ctx context.Context) error {
	role, err := a.getRole()
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	phone, err := getSimpleText(a.reader, "Enter phone (optional)", a.out)
	if err != nil {
		return err
	}

	var shopName string
	if role == models.RoleVendor {
		shopName, err = getSimpleText(a.reader, "Enter shop name", a.out)
		if err != nil {
			return err
		}
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	req := api.SignupRequest{
		Name:     name,
		Email:    email,
		Password: string(password),
		Phone:    phone,
		ShopName: shopName,
	}
	if err := a.session.Signup(ctx, req, role); err != nil {
		printlnFn("Signup failed:", err.Error())
		return err
	}

	printlnFn("Success! Check your email for the verification code, then run 'verify'.")
	return nil
}

// VerifyOTP prompts for the emailed code and confirms the signup. A verified
// account still has to 'login' to establish a session.
func (a *App) VerifyOTP(ctx context.Context) error {
	role, err := a.getRole()
	if err != nil {
		printlnFn(err.Error())
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	otp, err := getSimpleText(a.reader, "Enter verification code", a.out)
	if err != nil {
		return err
	}

	if err := a.session.VerifyOTP(ctx, email, otp, role); err != nil {
		printlnFn("Verification failed:", err.Error())
		return err
	}

	printlnFn("Verified! You can now login.")
	return nil
}

// ResendOTP requests a fresh verification code for a pending signup.
func (a *App) ResendOTP(ctx context.Context) error {
	role, err := a.getRole()
	if err != nil {
		printlnFn(err.Error())
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	if err := a.session.ResendOTP(ctx, email, role); err != nil {
		printlnFn("Resend failed:", err.Error())
		return err
	}

	printlnFn("A new code is on its way.")
	return nil
}

// Login prompts for credentials and establishes a session. On success the
// session is persisted and the subscribed mirrors load their state. The
// password is securely wiped before returning.
func (a *App) Login(ctx context.Context) error {
	role, err := a.getRole()
	if err != nil {
		printlnFn(err.Error())
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.session.Login(ctx, email, string(password), role); err != nil {
		printlnFn("Login failed:", err.Error())
		return err
	}

	printlnFn("Welcome back,", a.session.Snapshot().User.Name)
	return nil
}

// Logout ends the session: the token and profile are removed from durable
// storage and every mirror drops its cached state.
func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	printlnFn("Logged out.")
	return nil
}

// Profile prints the current user profile.
func (a *App) Profile(ctx context.Context) error {
	s := a.session.Snapshot()
	if !s.Authenticated() {
		printlnFn("Not logged in.")
		return nil
	}
	u := s.User
	fmt.Fprintf(a.out, "Name:  %s\nEmail: %s\nRole:  %s\n", u.Name, u.Email, u.Role)
	if u.Phone != "" {
		fmt.Fprintf(a.out, "Phone: %s\n", u.Phone)
	}
	if u.ShopName != "" {
		fmt.Fprintf(a.out, "Shop:  %s\n", u.ShopName)
	}
	return nil
}

// UpdateProfile edits profile fields; empty answers leave fields untouched.
func (a *App) UpdateProfile(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "New name (empty to keep)", a.out)
	if err != nil {
		return err
	}
	phone, err := getSimpleText(a.reader, "New phone (empty to keep)", a.out)
	if err != nil {
		return err
	}

	var patch models.ProfilePatch
	if name != "" {
		patch.Name = &name
	}
	if phone != "" {
		patch.Phone = &phone
	}

	if err := a.session.UpdateUser(ctx, patch); err != nil {
		printlnFn("Update failed:", err.Error())
		return err
	}

	printlnFn("Profile updated.")
	return nil
}
