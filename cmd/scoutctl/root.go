package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/scoutline/scout-client/internal/app"
	"github.com/scoutline/scout-client/internal/config"
	"github.com/scoutline/scout-client/internal/logging"
	"github.com/scoutline/scout-client/internal/server"
)

const appVersion = "dev"

// session holds what every subcommand needs: the wired components and this
// device's controller.
type session struct {
	clientID    string
	storagePath string
	driver      string
	logLevel    string

	in     io.Reader
	out    io.Writer
	errOut io.Writer

	comps *server.Components
	ctrl  *app.Controller
}

// run executes args and releases the session whether or not the command failed.
func run(args []string, in io.Reader, out, errOut io.Writer) error {
	s := &session{in: in, out: out, errOut: errOut}
	root := newRootCmd(s)
	root.SetArgs(args)
	err := root.Execute()
	return errors.Join(err, s.close(context.Background()))
}

func newRootCmd(s *session) *cobra.Command {
	root := &cobra.Command{
		Use:   "scoutctl",
		Short: "Football scouting assistant",
		Long: `scoutctl drives a scouting client from the terminal.

Sign in, chat with the search assistant, and manage favorites. State is kept
per device id under the storage path, so each invocation resumes where the
last one stopped.`,
		Version:           appVersion,
		SilenceUsage:      true,
		PersistentPreRunE: s.open,
	}
	root.SetIn(s.in)
	root.SetOut(s.out)
	root.SetErr(s.errOut)

	root.PersistentFlags().StringVar(&s.clientID, "device", "local", "device id whose state to use")
	root.PersistentFlags().StringVar(&s.storagePath, "storage", "", "storage path (defaults to STORAGE_PATH)")
	root.PersistentFlags().StringVar(&s.driver, "driver", "", "storage driver: memory, fs or sqlite (defaults to STORAGE_DRIVER)")
	root.PersistentFlags().StringVar(&s.logLevel, "log-level", "warn", "log level written to stderr")

	root.AddCommand(
		newLoginCmd(s),
		newLogoutCmd(s),
		newSignupCmd(s),
		newVerifyCmd(s),
		newOnboardCmd(s),
		newStateCmd(s),
		newChatCmd(s),
		newAskCmd(s),
		newHistoryCmd(s),
		newFavoritesCmd(s),
		newLanguagesCmd(s),
	)
	return root
}

func (s *session) open(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "help" {
		return nil
	}
	if err := config.LoadDotEnv(); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	cfg := config.Load()
	if s.storagePath != "" {
		cfg.Storage.Path = s.storagePath
	}
	if s.driver != "" {
		cfg.Storage.Driver = s.driver
	}

	logger := logging.NewLogger(logging.Config{
		Level:   s.logLevel,
		Format:  cfg.Log.Format,
		Service: "scoutctl",
		Version: appVersion,
		Output:  s.errOut,
	})

	comps, err := server.BuildComponents(cfg, logger, nil)
	if err != nil {
		return err
	}
	ctrl, err := comps.Registry.Get(ctx(cmd), s.clientID)
	if err != nil {
		_ = comps.Close()
		return err
	}
	s.comps = comps
	s.ctrl = ctrl
	return nil
}

// close lets pending deliveries finish, gives queued writes one more try
// and releases storage.
func (s *session) close(c context.Context) error {
	if s.comps == nil {
		return nil
	}
	drainErr := s.comps.Registry.Drain(c)
	if s.comps.Outbox {
		if err := s.comps.Registry.Flush(c); err != nil {
			fmt.Fprintf(s.errOut, "some changes are still queued: %v\n", err)
		}
	}
	err := errors.Join(drainErr, s.comps.Close())
	s.comps = nil
	return err
}

func ctx(cmd *cobra.Command) context.Context {
	if c := cmd.Context(); c != nil {
		return c
	}
	return context.Background()
}
