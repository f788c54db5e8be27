package telegram

import (
	"context"
	"errors"
	"fmt"

	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"

	"github.com/Conte777/NewsFlow/services/music-service/internal/domain"
)

// Telegram errors meaning the peer does not exist or is not accessible
var unknownPeerErrors = []string{
	"CHANNEL_INVALID",
	"CHANNEL_PRIVATE",
	"CHAT_ID_INVALID",
	"PEER_ID_INVALID",
	"USER_ID_INVALID",
	"MSG_ID_INVALID",
}

func (c *MTProtoClient) dialogFilters(ctx context.Context) ([]tg.DialogFilterClass, error) {
	var filters []tg.DialogFilterClass
	err := c.invoke(ctx, func(api *tg.Client) error {
		res, err := api.MessagesGetDialogFilters(ctx)
		if err != nil {
			return err
		}
		filters = res.Filters
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get dialog filters: %w", err)
	}

	for _, filter := range filters {
		_, _, peers, _ := filterMembers(filter)
		for _, peer := range peers {
			c.peers.learnInputPeer(peer)
		}
	}

	return filters, nil
}

// refreshFolders replaces the folder snapshot with the current filter list
func (c *MTProtoClient) refreshFolders(ctx context.Context) error {
	filters, err := c.dialogFilters(ctx)
	if err != nil {
		return err
	}

	folders := convertFilters(filters)
	c.snapshot.Replace(folders)

	c.logger.Debug().Int("folders", len(folders)).Msg("chat folders refreshed")
	return nil
}

// GetChatFolder fetches the pinned and included chats of a folder
func (c *MTProtoClient) GetChatFolder(ctx context.Context, folderID int) (*domain.FolderDetail, error) {
	filters, err := c.dialogFilters(ctx)
	if err != nil {
		return nil, err
	}

	for _, filter := range filters {
		id, title, peers, ok := filterMembers(filter)
		if !ok || id != folderID {
			continue
		}

		detail := &domain.FolderDetail{ID: id, Name: title}
		seen := make(map[int64]struct{}, len(peers))
		for _, peer := range peers {
			chatID := c.peers.learnInputPeer(peer)
			if chatID == 0 {
				continue
			}
			if _, dup := seen[chatID]; dup {
				continue
			}
			seen[chatID] = struct{}{}
			detail.ChatIDs = append(detail.ChatIDs, chatID)
		}
		return detail, nil
	}

	return nil, domain.ErrFolderNotFound
}

// GetChat fetches a chat summary by marked chat id
func (c *MTProtoClient) GetChat(ctx context.Context, chatID int64) (*domain.RemoteChat, error) {
	kind, id := UnmarkChatID(chatID)

	var (
		chats []tg.ChatClass
		users []tg.UserClass
	)

	err := c.invoke(ctx, func(api *tg.Client) error {
		switch kind {
		case peerChannel:
			input, ok := c.peers.inputChannel(ctx, id)
			if !ok {
				return domain.ErrChatNotFound
			}
			res, err := api.ChannelsGetChannels(ctx, []tg.InputChannelClass{input})
			if err != nil {
				return err
			}
			chats = chatsOf(res)
		case peerChat:
			res, err := api.MessagesGetChats(ctx, []int64{id})
			if err != nil {
				return err
			}
			chats = chatsOf(res)
		default:
			hash, ok := c.peers.userHash(id)
			if !ok {
				return domain.ErrChatNotFound
			}
			res, err := api.UsersGetUsers(ctx, []tg.InputUserClass{&tg.InputUser{UserID: id, AccessHash: hash}})
			if err != nil {
				return err
			}
			users = res
		}
		return nil
	})
	if err != nil {
		return nil, c.mapPeerError(err, chatID, "failed to get chat")
	}

	c.peers.learnChats(chats)
	c.peers.learnUsers(users)

	for _, chat := range chats {
		if converted := convertChat(chat); converted.ID == chatID {
			return &converted, nil
		}
	}
	for _, u := range users {
		if user, ok := u.(*tg.User); ok && MarkUser(user.ID) == chatID {
			converted := convertUser(user)
			return &converted, nil
		}
	}

	return nil, domain.ErrChatNotFound
}

// GetChatHistory fetches one page of history older than fromMessageID
func (c *MTProtoClient) GetChatHistory(ctx context.Context, chatID, fromMessageID int64, limit int) (*domain.MessagePage, error) {
	peer, ok := c.peers.inputPeer(ctx, chatID)
	if !ok {
		return nil, domain.ErrChatNotFound
	}

	var res tg.MessagesMessagesClass
	err := c.invoke(ctx, func(api *tg.Client) error {
		var err error
		res, err = api.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
			Peer:     peer,
			OffsetID: int(fromMessageID),
			Limit:    limit,
		})
		return err
	})
	if err != nil {
		return nil, c.mapPeerError(err, chatID, "failed to get chat history")
	}

	return c.messagesPage(res), nil
}

// GetMessage re-fetches a single message
func (c *MTProtoClient) GetMessage(ctx context.Context, chatID, messageID int64) (*domain.RemoteMessage, error) {
	ids := []tg.InputMessageClass{&tg.InputMessageID{ID: int(messageID)}}
	kind, id := UnmarkChatID(chatID)

	var res tg.MessagesMessagesClass
	err := c.invoke(ctx, func(api *tg.Client) error {
		var err error
		if kind == peerChannel {
			input, ok := c.peers.inputChannel(ctx, id)
			if !ok {
				return domain.ErrChatNotFound
			}
			res, err = api.ChannelsGetMessages(ctx, &tg.ChannelsGetMessagesRequest{Channel: input, ID: ids})
			return err
		}
		res, err = api.MessagesGetMessages(ctx, ids)
		return err
	})
	if err != nil {
		return nil, c.mapPeerError(err, chatID, "failed to get message")
	}

	for _, msg := range c.messagesPage(res).Messages {
		if msg.ID == messageID {
			return &msg, nil
		}
	}
	return nil, domain.ErrMessageNotFound
}

// ListChannels returns the broadcast channels among the first dialogs
func (c *MTProtoClient) ListChannels(ctx context.Context, limit int) ([]domain.RemoteChat, error) {
	var res tg.MessagesDialogsClass
	err := c.invoke(ctx, func(api *tg.Client) error {
		var err error
		res, err = api.MessagesGetDialogs(ctx, &tg.MessagesGetDialogsRequest{
			OffsetPeer: &tg.InputPeerEmpty{},
			Limit:      limit,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get dialogs: %w", err)
	}

	var chats []tg.ChatClass
	switch r := res.(type) {
	case *tg.MessagesDialogs:
		chats = r.Chats
	case *tg.MessagesDialogsSlice:
		chats = r.Chats
	}
	c.peers.learnChats(chats)

	channels := make([]domain.RemoteChat, 0, len(chats))
	for _, chat := range chats {
		if ch, ok := chat.(*tg.Channel); ok && ch.Broadcast {
			channels = append(channels, convertChat(ch))
		}
	}
	return channels, nil
}

// messagesPage converts a history or lookup response, learning its peers
// and the declared sizes of attached files.
func (c *MTProtoClient) messagesPage(res tg.MessagesMessagesClass) *domain.MessagePage {
	var (
		msgs  []tg.MessageClass
		total int
	)

	switch r := res.(type) {
	case *tg.MessagesMessages:
		c.peers.learnUsers(r.Users)
		c.peers.learnChats(r.Chats)
		msgs, total = r.Messages, len(r.Messages)
	case *tg.MessagesMessagesSlice:
		c.peers.learnUsers(r.Users)
		c.peers.learnChats(r.Chats)
		msgs, total = r.Messages, r.Count
	case *tg.MessagesChannelMessages:
		c.peers.learnUsers(r.Users)
		c.peers.learnChats(r.Chats)
		msgs, total = r.Messages, r.Count
	case *tg.MessagesMessagesNotModified:
		total = r.Count
	}

	page := &domain.MessagePage{
		TotalCount: total,
		Messages:   convertMessages(msgs),
	}
	for _, msg := range page.Messages {
		c.files.remember(contentFiles(msg.Content)...)
	}
	return page
}

func (c *MTProtoClient) mapPeerError(err error, chatID int64, msg string) error {
	if tgerr.Is(err, unknownPeerErrors...) {
		c.logger.Debug().Err(err).Int64("chat_id", chatID).Msg("peer is not accessible")
		return domain.ErrChatNotFound
	}
	if errors.Is(err, domain.ErrChatNotFound) || errors.Is(err, domain.ErrNotConnected) {
		return err
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func chatsOf(res tg.MessagesChatsClass) []tg.ChatClass {
	switch r := res.(type) {
	case *tg.MessagesChats:
		return r.Chats
	case *tg.MessagesChatsSlice:
		return r.Chats
	default:
		return nil
	}
}
