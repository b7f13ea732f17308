package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scoutline/scout-client/internal/app"
	"github.com/scoutline/scout-client/internal/domain/profile"
)

func newLoginCmd(s *session) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := s.ctrl.SignIn(ctx(cmd), email, password)
			if err != nil {
				return err
			}
			printAuth(s, st)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	return cmd
}

func newLogoutCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear local data except the language",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printAuth(s, s.ctrl.SignOut(ctx(cmd)))
			return nil
		},
	}
}

func newSignupCmd(s *session) *cobra.Command {
	var form app.SignUpForm
	var userType string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			form.UserType = profile.UserType(userType)
			st, err := s.ctrl.SignUp(ctx(cmd), form)
			if err != nil {
				return err
			}
			printAuth(s, st)
			return nil
		},
	}
	cmd.Flags().StringVar(&form.Email, "email", "", "account email")
	cmd.Flags().StringVar(&form.Password, "password", "", "account password")
	cmd.Flags().StringVar(&form.Name, "name", "", "display name")
	cmd.Flags().StringVar(&userType, "type", string(profile.UserTypeClub), "account type: club or player")
	return cmd
}

func newVerifyCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <code>",
		Short: "Confirm the email with the emailed code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := s.ctrl.Verify(ctx(cmd), args[0])
			if err != nil {
				return err
			}
			printAuth(s, st)
			return nil
		},
	}
}

func newOnboardCmd(s *session) *cobra.Command {
	var form app.OnboardingForm
	cmd := &cobra.Command{
		Use:   "onboard",
		Short: "Complete the profile after verification",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := s.ctrl.CompleteOnboarding(ctx(cmd), form)
			if err != nil {
				return err
			}
			printAuth(s, st)
			return nil
		},
	}
	cmd.Flags().StringVar(&form.Name, "name", "", "display name")
	cmd.Flags().StringVar(&form.Language, "language", "", "preferred language code")
	cmd.Flags().StringVar(&form.Team, "team", "", "club name (club accounts)")
	cmd.Flags().StringVar(&form.Position, "position", "", "playing position (player accounts)")
	return cmd
}

func printAuth(s *session, st app.State) {
	switch st.Auth {
	case profile.StateAuthenticated:
		name := ""
		if st.Profile != nil {
			name = st.Profile.Name
		}
		fmt.Fprintf(s.out, "signed in as %s\n", name)
	case profile.StateVerifying:
		fmt.Fprintf(s.out, "check %s for a verification code\n", st.PendingEmail)
	case profile.StateOnboarding:
		fmt.Fprintln(s.out, "verified; run onboard to finish your profile")
	default:
		fmt.Fprintln(s.out, "signed out")
	}
}
