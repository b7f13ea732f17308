package app

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/scoutline/scout-client/internal/domain/profile"
)

func TestStateJSONUsesCamelCaseProfile(t *testing.T) {
	st := State{
		Auth:     profile.StateAuthenticated,
		View:     profile.ViewChat,
		Language: "pt",
		Profile: &profile.Profile{
			ID:                 "u-1",
			Email:              "scout@club.com",
			UserType:           profile.UserTypeClub,
			Name:               "Scout",
			Team:               "Porto",
			OnboardingComplete: true,
		},
	}
	raw, err := json.Marshal(st)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var wire struct {
		Profile map[string]any `json:"profile"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if wire.Profile["userType"] != "club" || wire.Profile["onboardingCompleted"] != true {
		t.Fatalf("expected camelCase profile, got %v", wire.Profile)
	}
	for _, key := range []string{"user_type", "onboarding_completed"} {
		if _, ok := wire.Profile[key]; ok {
			t.Fatalf("unexpected snake_case key %s in %s", key, raw)
		}
	}

	var back State
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(st.Profile, back.Profile); diff != "" {
		t.Fatalf("profile lost on decode (-want +got):\n%s", diff)
	}
	if back.Language != "pt" || back.View != profile.ViewChat {
		t.Fatalf("unexpected decoded state %+v", back)
	}
}
