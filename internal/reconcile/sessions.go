package reconcile

import "github.com/scoutline/scout-client/internal/domain/chat"

// MergeChatSessions lets remotely known sessions supersede their local
// placeholders. A remote record matches a local one when its ID (the external
// correlation id) equals the local ID, or when both carry the same RemoteID.
// Unmatched local sessions follow the remote list in their original order.
func MergeChatSessions(local, remote []chat.Session) []chat.Session {
	byLocalID := make(map[string]struct{}, len(remote))
	byRemoteID := make(map[string]struct{}, len(remote))
	merged := make([]chat.Session, 0, len(remote)+len(local))

	for _, s := range remote {
		if _, dup := byLocalID[s.ID]; dup && s.ID != "" {
			continue
		}
		if s.ID != "" {
			byLocalID[s.ID] = struct{}{}
		}
		if s.RemoteID != "" {
			byRemoteID[s.RemoteID] = struct{}{}
		}
		merged = append(merged, s)
	}

	for _, s := range local {
		if _, ok := byLocalID[s.ID]; ok {
			continue
		}
		if s.RemoteID != "" {
			if _, ok := byRemoteID[s.RemoteID]; ok {
				continue
			}
		}
		byLocalID[s.ID] = struct{}{}
		merged = append(merged, s)
	}
	return merged
}

// PrependSession places s at the front of history, replacing any record with the same ID.
func PrependSession(history []chat.Session, s chat.Session) []chat.Session {
	out := make([]chat.Session, 0, len(history)+1)
	out = append(out, s)
	for _, h := range history {
		if h.ID == s.ID {
			continue
		}
		out = append(out, h)
	}
	return out
}

// PatchRemoteID sets the remote id on the session with localID. It reports
// whether a record was updated.
func PatchRemoteID(history []chat.Session, localID, remoteID string) ([]chat.Session, bool) {
	out := append([]chat.Session(nil), history...)
	for i := range out {
		if out[i].ID == localID {
			if out[i].RemoteID == remoteID {
				return out, false
			}
			out[i].RemoteID = remoteID
			return out, true
		}
	}
	return out, false
}

// FindSession returns the session with the given local id.
func FindSession(history []chat.Session, id string) (chat.Session, bool) {
	for _, s := range history {
		if s.ID == id {
			return s, true
		}
	}
	return chat.Session{}, false
}
