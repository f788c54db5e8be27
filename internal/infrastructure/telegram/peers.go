package telegram

import (
	"context"
	"sync"

	"github.com/gotd/td/telegram/updates"
	"github.com/gotd/td/tg"
)

// Chat ids are exposed in the marked form used by Bot API and TDLib:
// users keep their id, basic groups are negated, channels are shifted below -10^12.
const channelIDShift = 1000000000000

// Peer kinds decoded from a marked chat id
const (
	peerUser = iota
	peerChat
	peerChannel
)

// MarkUser returns the marked chat id of a user
func MarkUser(id int64) int64 { return id }

// MarkChat returns the marked chat id of a basic group
func MarkChat(id int64) int64 { return -id }

// MarkChannel returns the marked chat id of a channel or supergroup
func MarkChannel(id int64) int64 { return -channelIDShift - id }

// UnmarkChatID splits a marked chat id into its peer kind and raw id
func UnmarkChatID(chatID int64) (kind int, id int64) {
	switch {
	case chatID > 0:
		return peerUser, chatID
	case chatID < -channelIDShift:
		return peerChannel, -chatID - channelIDShift
	default:
		return peerChat, -chatID
	}
}

// MarkedPeerID returns the marked chat id of a peer
func MarkedPeerID(peer tg.PeerClass) int64 {
	switch p := peer.(type) {
	case *tg.PeerUser:
		return MarkUser(p.UserID)
	case *tg.PeerChat:
		return MarkChat(p.ChatID)
	case *tg.PeerChannel:
		return MarkChannel(p.ChannelID)
	default:
		return 0
	}
}

// peerStore caches access hashes of every user and channel seen in responses
// and updates. Channels fall back to the persisted updates state.
type peerStore struct {
	mu       sync.RWMutex
	users    map[int64]int64
	channels map[int64]int64

	hasher updates.ChannelAccessHasher
	selfID func() int64
}

func newPeerStore(hasher updates.ChannelAccessHasher, selfID func() int64) *peerStore {
	return &peerStore{
		users:    make(map[int64]int64),
		channels: make(map[int64]int64),
		hasher:   hasher,
		selfID:   selfID,
	}
}

// learnInputPeer records the access hash carried by an input peer
// and returns its marked chat id, or 0 when the peer kind is not supported.
func (s *peerStore) learnInputPeer(peer tg.InputPeerClass) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch p := peer.(type) {
	case *tg.InputPeerUser:
		s.users[p.UserID] = p.AccessHash
		return MarkUser(p.UserID)
	case *tg.InputPeerChat:
		return MarkChat(p.ChatID)
	case *tg.InputPeerChannel:
		s.channels[p.ChannelID] = p.AccessHash
		return MarkChannel(p.ChannelID)
	default:
		return 0
	}
}

func (s *peerStore) learnUsers(users []tg.UserClass) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range users {
		if user, ok := u.(*tg.User); ok && !user.Min {
			s.users[user.ID] = user.AccessHash
		}
	}
}

func (s *peerStore) learnChats(chats []tg.ChatClass) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range chats {
		switch chat := c.(type) {
		case *tg.Channel:
			if !chat.Min {
				s.channels[chat.ID] = chat.AccessHash
			}
		case *tg.ChannelForbidden:
			s.channels[chat.ID] = chat.AccessHash
		}
	}
}

func (s *peerStore) learnEntities(e tg.Entities) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, user := range e.Users {
		if !user.Min {
			s.users[id] = user.AccessHash
		}
	}
	for id, channel := range e.Channels {
		if !channel.Min {
			s.channels[id] = channel.AccessHash
		}
	}
}

func (s *peerStore) userHash(id int64) (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hash, ok := s.users[id]
	return hash, ok
}

func (s *peerStore) channelHash(ctx context.Context, id int64) (int64, bool) {
	s.mu.RLock()
	hash, ok := s.channels[id]
	s.mu.RUnlock()
	if ok {
		return hash, true
	}

	if s.hasher == nil || s.selfID == nil {
		return 0, false
	}

	hash, found, err := s.hasher.GetChannelAccessHash(ctx, s.selfID(), id)
	if err != nil || !found {
		return 0, false
	}

	s.mu.Lock()
	s.channels[id] = hash
	s.mu.Unlock()
	return hash, true
}

// inputPeer resolves a marked chat id into an input peer
func (s *peerStore) inputPeer(ctx context.Context, chatID int64) (tg.InputPeerClass, bool) {
	kind, id := UnmarkChatID(chatID)

	switch kind {
	case peerChat:
		return &tg.InputPeerChat{ChatID: id}, true
	case peerChannel:
		hash, ok := s.channelHash(ctx, id)
		if !ok {
			return nil, false
		}
		return &tg.InputPeerChannel{ChannelID: id, AccessHash: hash}, true
	default:
		hash, ok := s.userHash(id)
		if !ok {
			return nil, false
		}
		return &tg.InputPeerUser{UserID: id, AccessHash: hash}, true
	}
}

func (s *peerStore) inputChannel(ctx context.Context, id int64) (*tg.InputChannel, bool) {
	hash, ok := s.channelHash(ctx, id)
	if !ok {
		return nil, false
	}
	return &tg.InputChannel{ChannelID: id, AccessHash: hash}, true
}
