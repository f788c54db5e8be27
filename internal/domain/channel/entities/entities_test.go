package entities

import (
	"testing"

	"github.com/Conte777/NewsFlow/services/music-service/internal/domain"
)

func TestChatType(t *testing.T) {
	tests := []struct {
		chat domain.RemoteChat
		want string
	}{
		{domain.RemoteChat{Kind: domain.ChatKindPrivate}, ChatTypePrivate},
		{domain.RemoteChat{Kind: domain.ChatKindSecret}, ChatTypeSecret},
		{domain.RemoteChat{Kind: domain.ChatKindBasicGroup}, ChatTypeBasicGroup},
		{domain.RemoteChat{Kind: domain.ChatKindSupergroup}, ChatTypeSupergroup},
		{domain.RemoteChat{Kind: domain.ChatKindSupergroup, IsChannel: true}, ChatTypeChannel},
		{domain.RemoteChat{Kind: "channelForbidden"}, "channelForbidden"},
	}

	for _, tt := range tests {
		if got := ChatType(tt.chat); got != tt.want {
			t.Errorf("Expected %s for %+v, got %s", tt.want, tt.chat, got)
		}
	}
}

func TestChannel_SameAs(t *testing.T) {
	a := FromRemote(domain.RemoteChat{ID: 1, Title: "A", Kind: domain.ChatKindSupergroup, IsChannel: true}, "Music")
	b := a

	if !a.SameAs(b) {
		t.Error("Expected identical channels to match")
	}

	b.FolderName = "Other"
	if a.SameAs(b) {
		t.Error("Expected folder change to be detected")
	}
}
