package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for credentials and signs in. The visible user state updates
// a moment later, once the sign-in event settles through the synchronizer.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	if err := a.auth.SignIn(ctx, email, password); err != nil {
		return err
	}

	fmt.Println("Signed in.")
	return nil
}

// Register prompts for an email and password and creates a new account.
// The account still needs confirmation via the emailed link.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	if err := a.auth.SignUp(ctx, email, password); err != nil {
		return err
	}

	fmt.Println("Account created. Check your email to confirm it.")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.auth.SignOut(ctx)
	fmt.Println("Signed out.")
	return nil
}

// WhoAmI prints the current user view, including whether it is still the
// provisional guess or already settled.
func (a *App) WhoAmI(ctx context.Context) error {
	u := a.sync.CurrentUser()
	if u == nil {
		fmt.Println("Not signed in.")
		return nil
	}
	fmt.Printf("%s <%s> role=%s state=%s\n", u.ID, u.Email, strings.Join(u.Roles, ","), a.sync.State())
	if u.OrganizationID != "" {
		fmt.Printf("organization: %s\n", u.OrganizationID)
	}
	return nil
}

// Google starts the OAuth flow and prints the URL to open in a browser.
func (a *App) Google(ctx context.Context) error {
	redirectURL, err := a.auth.SignInWithGoogle(ctx)
	if err != nil {
		return err
	}
	fmt.Println("Open this URL in your browser to continue:")
	fmt.Println(redirectURL)
	return nil
}

func (a *App) ResetPassword(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.auth.ResetPassword(ctx, email); err != nil {
		return err
	}

	fmt.Println("Password reset email sent.")
	return nil
}
