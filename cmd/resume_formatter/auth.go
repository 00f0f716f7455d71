package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-formatter/internal/auth"
	"github.com/jonathan/resume-formatter/internal/types"
	"github.com/spf13/cobra"
)

var (
	authUsername      string
	authPassword      string
	authPasswordStdin bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the access token",
	RunE:  runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account on the backend",
	RunE:  runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored access token",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the user the stored token belongs to",
	RunE:  runWhoami,
}

func init() {
	for _, cmd := range []*cobra.Command{loginCmd, registerCmd} {
		cmd.Flags().StringVarP(&authUsername, "username", "u", "", "Username (required)")
		cmd.Flags().StringVarP(&authPassword, "password", "p", "", "Password")
		cmd.Flags().BoolVar(&authPasswordStdin, "password-stdin", false, "Read the password from stdin")
		_ = cmd.MarkFlagRequired("username")
		cmd.MarkFlagsMutuallyExclusive("password", "password-stdin")
	}
	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd)
}

func credentials(cmd *cobra.Command) (types.Credentials, error) {
	password := authPassword
	if authPasswordStdin {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return types.Credentials{}, fmt.Errorf("failed to read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}
	creds := types.Credentials{Username: strings.TrimSpace(authUsername), Password: password}
	if err := creds.Validate(); err != nil {
		return types.Credentials{}, fmt.Errorf("username and password are required")
	}
	return creds, nil
}

func runLogin(cmd *cobra.Command, _ []string) error {
	creds, err := credentials(cmd)
	if err != nil {
		return err
	}

	resp, err := current.client.Login(cmd.Context(), creds)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	if err := current.tokens.Save(resp.AccessToken); err != nil {
		return err
	}

	name := auth.Username(resp.AccessToken)
	if name == "" {
		name = creds.Username
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Logged in as %s\n", name)
	return nil
}

func runRegister(cmd *cobra.Command, _ []string) error {
	creds, err := credentials(cmd)
	if err != nil {
		return err
	}

	resp, err := current.client.Register(cmd.Context(), creds)
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}
	msg := resp.Message
	if msg == "" {
		msg = "Registration successful"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ %s. Log in with 'resume_formatter login -u %s'\n", msg, creds.Username)
	return nil
}

func runLogout(cmd *cobra.Command, _ []string) error {
	if err := current.tokens.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "✓ Logged out")
	return nil
}

func runWhoami(cmd *cobra.Command, _ []string) error {
	token, err := current.tokens.Load()
	if err != nil {
		return err
	}
	name := auth.Username(token)
	if name == "" {
		name = "(token carries no username)"
	}
	fmt.Fprintln(cmd.OutOrStdout(), name)
	return nil
}
