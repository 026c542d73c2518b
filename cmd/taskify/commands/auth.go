package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewRegisterCmd creates the register command.
func NewRegisterCmd() *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			ctx := context.Background()
			session, err := e.ids.Register(ctx, name, email, password)
			if err != nil {
				return err
			}
			if err := e.ids.SetCurrentSession(ctx, session); err != nil {
				return err
			}
			fmt.Printf("Registered and signed in as %s <%s>\n", session.Name, session.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

// NewLoginCmd creates the login command.
func NewLoginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with an existing account",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			ctx := context.Background()
			session, err := e.ids.Login(ctx, email, password)
			if err != nil {
				return err
			}
			if err := e.ids.SetCurrentSession(ctx, session); err != nil {
				return err
			}
			fmt.Printf("Signed in as %s <%s>\n", session.Name, session.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

// NewLogoutCmd creates the logout command.
func NewLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			if err := e.ids.Logout(context.Background()); err != nil {
				return err
			}
			fmt.Println("Signed out.")
			return nil
		},
	}
}

// NewWhoamiCmd creates the whoami command.
func NewWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			session, err := e.ids.CurrentSession(context.Background())
			if err != nil {
				return err
			}
			if session == nil {
				fmt.Println("Not signed in.")
				return nil
			}
			fmt.Printf("%s <%s> (id %s)\n", session.Name, session.Email, session.ID)
			return nil
		},
	}
}
