package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLanguagesCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "languages",
		Short: "List languages, marking the current one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			current := s.ctrl.State().Language
			for _, l := range s.ctrl.Languages(ctx(cmd)) {
				mark := " "
				if l.Code == current {
					mark = "*"
				}
				fmt.Fprintf(s.out, "%s %s  %s\n", mark, l.Code, l.Name)
			}
			return nil
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set <code>",
		Short: "Change the interface language",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.ctrl.SetLanguage(ctx(cmd), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(s.out, "language set to %s\n", args[0])
			return nil
		},
	})
	return cmd
}
