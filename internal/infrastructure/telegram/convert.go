package telegram

import (
	"strings"

	"github.com/gotd/td/tg"

	"github.com/Conte777/NewsFlow/services/music-service/internal/domain"
	"github.com/Conte777/NewsFlow/services/music-service/internal/infrastructure/telegram/fileid"
)

// Content kinds for messages without an interesting attachment
const (
	kindText      = "text"
	kindService   = "service"
	kindPhoto     = "photo"
	kindVideo     = "video"
	kindVideoNote = "video_note"
	kindAnimation = "animation"
	kindSticker   = "sticker"
	kindVoiceNote = "voice_note"
	kindEmpty     = "document_empty"
)

// convertMessage converts a raw message, skipping empty placeholders
func convertMessage(msg tg.MessageClass) (domain.RemoteMessage, bool) {
	switch m := msg.(type) {
	case *tg.Message:
		return domain.RemoteMessage{
			ChatID:  MarkedPeerID(m.PeerID),
			ID:      int64(m.ID),
			Date:    int64(m.Date),
			Content: convertMedia(m.Media),
		}, true
	case *tg.MessageService:
		return domain.RemoteMessage{
			ChatID:  MarkedPeerID(m.PeerID),
			ID:      int64(m.ID),
			Date:    int64(m.Date),
			Content: domain.OtherContent{Kind: kindService},
		}, true
	default:
		return domain.RemoteMessage{}, false
	}
}

func convertMessages(msgs []tg.MessageClass) []domain.RemoteMessage {
	result := make([]domain.RemoteMessage, 0, len(msgs))
	for _, msg := range msgs {
		if converted, ok := convertMessage(msg); ok {
			result = append(result, converted)
		}
	}
	return result
}

func convertMedia(media tg.MessageMediaClass) domain.Content {
	switch m := media.(type) {
	case nil:
		return domain.OtherContent{Kind: kindText}
	case *tg.MessageMediaDocument:
		if m.Document == nil {
			return domain.OtherContent{Kind: kindEmpty}
		}
		doc, ok := m.Document.AsNotEmpty()
		if !ok {
			return domain.OtherContent{Kind: kindEmpty}
		}
		return convertDocument(doc)
	case *tg.MessageMediaPhoto:
		return domain.OtherContent{Kind: kindPhoto}
	default:
		return domain.OtherContent{Kind: strings.TrimPrefix(media.TypeName(), "messageMedia")}
	}
}

// convertDocument classifies a document the way the official clients do:
// stickers, videos and voice notes are not files of interest,
// a non-voice audio attribute makes an audio, anything else is a document.
func convertDocument(doc *tg.Document) domain.Content {
	var (
		fileName string
		audio    *tg.DocumentAttributeAudio
		video    *tg.DocumentAttributeVideo
		animated bool
	)

	for _, attr := range doc.Attributes {
		switch a := attr.(type) {
		case *tg.DocumentAttributeFilename:
			fileName = a.FileName
		case *tg.DocumentAttributeAudio:
			audio = a
		case *tg.DocumentAttributeVideo:
			video = a
		case *tg.DocumentAttributeAnimated:
			animated = true
		case *tg.DocumentAttributeSticker, *tg.DocumentAttributeCustomEmoji:
			return domain.OtherContent{Kind: kindSticker}
		}
	}

	switch {
	case animated:
		return domain.OtherContent{Kind: kindAnimation}
	case video != nil && video.RoundMessage:
		return domain.OtherContent{Kind: kindVideoNote}
	case video != nil:
		return domain.OtherContent{Kind: kindVideo}
	case audio != nil && audio.Voice:
		return domain.OtherContent{Kind: kindVoiceNote}
	}

	file := domain.FileRef{
		ID:       fileid.Encode(fileid.FromDocument(doc)),
		Size:     doc.Size,
		MimeType: doc.MimeType,
	}
	thumb := largestThumbnail(doc)

	if audio != nil {
		return domain.AudioContent{
			FileName:   fileName,
			MimeType:   doc.MimeType,
			Title:      audio.Title,
			Performer:  audio.Performer,
			Duration:   audio.Duration,
			File:       file,
			AlbumCover: thumb,
		}
	}

	return domain.DocumentContent{
		FileName:  fileName,
		MimeType:  doc.MimeType,
		File:      file,
		Thumbnail: thumb,
	}
}

// largestThumbnail picks the biggest downloadable thumbnail of a document
func largestThumbnail(doc *tg.Document) *domain.Thumbnail {
	var (
		best     *domain.Thumbnail
		bestArea int
	)

	for _, size := range doc.Thumbs {
		var (
			sizeType string
			w, h     int
			bytes    int64
		)

		switch s := size.(type) {
		case *tg.PhotoSize:
			sizeType, w, h, bytes = s.Type, s.W, s.H, int64(s.Size)
		case *tg.PhotoSizeProgressive:
			sizeType, w, h = s.Type, s.W, s.H
			if len(s.Sizes) > 0 {
				bytes = int64(s.Sizes[len(s.Sizes)-1])
			}
		default:
			continue
		}

		if area := w * h; best == nil || area > bestArea {
			bestArea = area
			best = &domain.Thumbnail{
				File: domain.FileRef{
					ID:   fileid.Encode(fileid.FromThumbnail(doc, sizeType)),
					Size: bytes,
				},
				Width:  w,
				Height: h,
			}
		}
	}

	return best
}

// contentFiles lists every file reference carried by a content
func contentFiles(content domain.Content) []domain.FileRef {
	switch c := content.(type) {
	case domain.AudioContent:
		files := []domain.FileRef{c.File}
		if c.AlbumCover != nil {
			files = append(files, c.AlbumCover.File)
		}
		for _, cover := range c.ExternalCovers {
			files = append(files, cover.File)
		}
		return files
	case domain.DocumentContent:
		files := []domain.FileRef{c.File}
		if c.Thumbnail != nil {
			files = append(files, c.Thumbnail.File)
		}
		return files
	default:
		return nil
	}
}

// convertChat converts a chat or channel. Unknown variants keep their raw type name.
func convertChat(chat tg.ChatClass) domain.RemoteChat {
	switch c := chat.(type) {
	case *tg.Chat:
		return domain.RemoteChat{
			ID:    MarkChat(c.ID),
			Title: c.Title,
			Kind:  domain.ChatKindBasicGroup,
		}
	case *tg.Channel:
		return domain.RemoteChat{
			ID:        MarkChannel(c.ID),
			Title:     c.Title,
			Username:  c.Username,
			Kind:      domain.ChatKindSupergroup,
			IsChannel: c.Broadcast,
		}
	case *tg.ChatForbidden:
		return domain.RemoteChat{ID: MarkChat(c.ID), Title: c.Title, Kind: c.TypeName()}
	case *tg.ChannelForbidden:
		return domain.RemoteChat{ID: MarkChannel(c.ID), Title: c.Title, Kind: c.TypeName(), IsChannel: c.Broadcast}
	default:
		return domain.RemoteChat{Kind: chat.TypeName()}
	}
}

func convertUser(user *tg.User) domain.RemoteChat {
	return domain.RemoteChat{
		ID:       MarkUser(user.ID),
		Title:    strings.TrimSpace(user.FirstName + " " + user.LastName),
		Username: user.Username,
		Kind:     domain.ChatKindPrivate,
	}
}

// convertFilters converts dialog filters to folder descriptors.
// The default "All chats" filter has no id of its own and is skipped.
func convertFilters(filters []tg.DialogFilterClass) []domain.Folder {
	folders := make([]domain.Folder, 0, len(filters))
	for _, filter := range filters {
		if id, title, _, ok := filterMembers(filter); ok {
			folders = append(folders, domain.Folder{ID: id, Name: title})
		}
	}
	return folders
}

// filterMembers returns the explicitly listed chats of a filter, pinned first
func filterMembers(filter tg.DialogFilterClass) (id int, title string, peers []tg.InputPeerClass, ok bool) {
	switch f := filter.(type) {
	case *tg.DialogFilter:
		peers = append(peers, f.PinnedPeers...)
		peers = append(peers, f.IncludePeers...)
		return f.ID, f.Title.Text, peers, true
	case *tg.DialogFilterChatlist:
		peers = append(peers, f.PinnedPeers...)
		peers = append(peers, f.IncludePeers...)
		return f.ID, f.Title.Text, peers, true
	default:
		return 0, "", nil, false
	}
}
