package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/scoutline/scout-client/internal/domain/players"
)

func newFavoritesCmd(s *session) *cobra.Command {
	list := func(cmd *cobra.Command, args []string) error {
		favs := s.ctrl.Favorites()
		if len(favs) == 0 {
			fmt.Fprintln(s.out, "no favorites yet")
			return nil
		}
		for _, p := range favs {
			fmt.Fprintf(s.out, "%s  %s (%s)\n", p.Identity(), p.Name, p.Club)
		}
		return nil
	}
	cmd := &cobra.Command{
		Use:   "favorites",
		Short: "List favorite players",
		Args:  cobra.NoArgs,
		RunE:  list,
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List favorite players",
		Args:  cobra.NoArgs,
		RunE:  list,
	})
	return cmd
}

// toggleFromReply toggles the 1-based nth player of the newest reply that
// listed players. Replies live only for the running conversation.
func toggleFromReply(c context.Context, s *session, arg string) error {
	p, err := lastReplyPlayer(s, arg)
	if err != nil {
		return err
	}
	added, err := s.ctrl.ToggleFavorite(c, p)
	if err != nil {
		return err
	}
	if added {
		fmt.Fprintf(s.out, "added %s\n", p.Name)
	} else {
		fmt.Fprintf(s.out, "removed %s\n", p.Name)
	}
	return nil
}

func lastReplyPlayer(s *session, arg string) (players.Player, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return players.Player{}, fmt.Errorf("expected a positive number, got %q", arg)
	}
	msgs := s.ctrl.State().Messages
	for i := len(msgs) - 1; i >= 0; i-- {
		if len(msgs[i].Players) == 0 {
			continue
		}
		if n > len(msgs[i].Players) {
			return players.Player{}, fmt.Errorf("the last reply listed %d players", len(msgs[i].Players))
		}
		return msgs[i].Players[n-1], nil
	}
	return players.Player{}, errors.New("no players in this conversation yet")
}
