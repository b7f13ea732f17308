package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scoutline/scout-client/internal/domain/chat"
)

func newAskCmd(s *session) *cobra.Command {
	var fresh bool
	cmd := &cobra.Command{
		Use:     "ask <query>",
		Aliases: []string{"search"},
		Short:   "Send one message to the scouting assistant",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if fresh {
				s.ctrl.NewChat(ctx(cmd))
			}
			reply, err := s.ctrl.SubmitQuery(ctx(cmd), strings.Join(args, " "))
			if err != nil {
				return err
			}
			printReply(s, reply)
			return nil
		},
	}
	cmd.Flags().BoolVar(&fresh, "new", false, "start a new conversation first")
	return cmd
}

func newChatCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat interactively (/new starts over, /fav <n> toggles a listed player, /quit exits)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scanner := bufio.NewScanner(s.in)
			fmt.Fprint(s.out, "> ")
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				switch line {
				case "":
				case "/quit", "/exit":
					return nil
				case "/new":
					s.ctrl.NewChat(ctx(cmd))
					fmt.Fprintln(s.out, "started a new conversation")
				default:
					if n, ok := strings.CutPrefix(line, "/fav "); ok {
						if err := toggleFromReply(ctx(cmd), s, strings.TrimSpace(n)); err != nil {
							fmt.Fprintln(s.errOut, err)
						}
						break
					}
					reply, err := s.ctrl.SubmitQuery(ctx(cmd), line)
					if err != nil {
						fmt.Fprintln(s.errOut, err)
					} else {
						printReply(s, reply)
					}
				}
				fmt.Fprint(s.out, "> ")
			}
			return scanner.Err()
		},
	}
}

func newHistoryCmd(s *session) *cobra.Command {
	var clearAll bool
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past conversations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if clearAll {
				s.ctrl.ClearHistory(ctx(cmd))
				fmt.Fprintln(s.out, "history cleared")
				return nil
			}
			history := s.ctrl.History()
			if len(history) == 0 {
				fmt.Fprintln(s.out, "no conversations yet")
				return nil
			}
			for _, h := range history {
				fmt.Fprintf(s.out, "%s  %s  %s\n", h.Date.Format("2006-01-02"), h.ID, h.Title)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&clearAll, "clear", false, "delete all conversations")
	return cmd
}

func newStateCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Print the client state as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := json.NewEncoder(s.out)
			enc.SetIndent("", "  ")
			return enc.Encode(s.ctrl.State())
		},
	}
}

func printReply(s *session, m chat.Message) {
	fmt.Fprintln(s.out, m.Text)
	for i, p := range m.Players {
		fmt.Fprintf(s.out, "  %d. %s (%s) score %.0f\n", i+1, p.Name, p.Club, p.Score)
	}
}
