// Copyright (c) 2025 ByChat Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// authcmd.go - Account commands for the sync gateway.
//
// Commands: login, signup, logout, whoami
//
// Examples:
//   bychat login you@example.com      Sign in (password prompted)
//   bychat signup you@example.com     Create an account
//   bychat logout                     Sign out, drop the local token
//   bychat whoami                     Show the signed-in account

package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/bychat/bychat/internal/auth"
)

// errAuthNotConfigured is returned when auth commands run without a
// gateway in the config.
var errAuthNotConfigured = fmt.Errorf("no auth gateway configured; set auth.url and auth.anon_key in ~/.bychat/config.toml")

func (a *App) handleLogin(args Args) error {
	if !a.Auth.Configured() {
		return errAuthNotConfigured
	}

	email, password, err := promptCredentials(NewArgParser(args.Raw).Positional(0))
	if err != nil {
		return err
	}

	session, err := a.Auth.SignIn(context.Background(), email, password)
	if err != nil {
		return err
	}

	fmt.Printf("%s Signed in as %s\n", commandStyle.Render("[OK]"), session.User.Email)
	return nil
}

func (a *App) handleSignup(args Args) error {
	if !a.Auth.Configured() {
		return errAuthNotConfigured
	}

	email, password, err := promptCredentials(NewArgParser(args.Raw).Positional(0))
	if err != nil {
		return err
	}

	session, err := a.Auth.SignUp(context.Background(), email, password)
	if err != nil {
		return err
	}

	if session.AccessToken == "" {
		// Email confirmation flows return a user without a token.
		fmt.Printf("%s Account created for %s. Check your inbox to confirm, then run: bychat login\n",
			commandStyle.Render("[OK]"), email)
		return nil
	}
	fmt.Printf("%s Account created, signed in as %s\n", commandStyle.Render("[OK]"), session.User.Email)
	return nil
}

func (a *App) handleLogout(args Args) error {
	err := a.Auth.SignOut(context.Background())
	if err != nil && !auth.IsNotSignedIn(err) {
		// The local token is already gone; revocation failure is
		// worth a warning, not a non-zero exit.
		fmt.Fprintf(os.Stderr, "%s token revocation failed: %v\n", warningStyle.Render("[Warning]"), err)
	}
	fmt.Println(commandStyle.Render("[OK] Signed out"))
	return nil
}

func (a *App) handleWhoami(args Args) error {
	session, err := a.Auth.CurrentSession()
	if err != nil {
		if auth.IsNotSignedIn(err) {
			fmt.Println("Not signed in.")
			return nil
		}
		return err
	}

	fmt.Printf("%s %s\n", infoStyle.Render("Email:"), session.User.Email)
	fmt.Printf("%s %s\n", infoStyle.Render("User ID:"), session.User.ID)
	fmt.Printf("%s %s\n", infoStyle.Render("Expires:"), session.ExpiresAt.Format("2006-01-02 15:04"))
	return nil
}

// promptCredentials collects an email (unless given as an argument)
// and a password without echo.
func promptCredentials(email string) (string, string, error) {
	if email == "" {
		if !IsTTY() {
			return "", "", fmt.Errorf("email required: bychat login <email>")
		}
		fmt.Print("Email: ")
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", "", fmt.Errorf("failed to read email: %w", err)
		}
		email = strings.TrimSpace(line)
	}
	if email == "" {
		return "", "", fmt.Errorf("email required")
	}

	password, err := promptPassword("Password: ")
	if err != nil {
		return "", "", err
	}
	if password == "" {
		return "", "", fmt.Errorf("password required")
	}
	return email, password, nil
}

// promptPassword prompts for a password without echoing it.
func promptPassword(prompt string) (string, error) {
	if !IsTTY() {
		return "", fmt.Errorf("password prompt requires a terminal")
	}
	fmt.Print(prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(password), nil
}
