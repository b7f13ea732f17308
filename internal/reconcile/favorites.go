// Package reconcile merges locally cached collections with their remote
// copies. Remote entries win on identity conflicts; local entries the remote
// has not seen yet are kept after them.
package reconcile

import "github.com/scoutline/scout-client/internal/domain/players"

// MergeFavorites returns remote followed by the local entries whose identity
// the remote set does not contain.
func MergeFavorites(local, remote []players.Player) []players.Player {
	seen := make(map[string]struct{}, len(remote)+len(local))
	merged := make([]players.Player, 0, len(remote)+len(local))
	for _, p := range remote {
		id := p.Identity()
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		merged = append(merged, p)
	}
	for _, p := range local {
		id := p.Identity()
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		merged = append(merged, p)
	}
	return merged
}

// ContainsFavorite reports whether p is already in list.
func ContainsFavorite(list []players.Player, p players.Player) bool {
	for _, f := range list {
		if players.SameIdentity(f, p) {
			return true
		}
	}
	return false
}

// WithFavorite appends p unless an entry with the same identity exists.
func WithFavorite(list []players.Player, p players.Player) []players.Player {
	out := append([]players.Player(nil), list...)
	if ContainsFavorite(out, p) {
		return out
	}
	return append(out, p)
}

// WithoutFavorite drops every entry matching p by id or by name and positions.
func WithoutFavorite(list []players.Player, p players.Player) []players.Player {
	out := make([]players.Player, 0, len(list))
	for _, f := range list {
		if players.SameIdentity(f, p) {
			continue
		}
		out = append(out, f)
	}
	return out
}
