package domain

// Folder is a remote chat folder descriptor as pushed by Telegram
type Folder struct {
	ID   int
	Name string
}

// FolderDetail holds the member chat identities of a folder
type FolderDetail struct {
	ID      int
	Name    string
	ChatIDs []int64
}

// Chat kind tags reported by the remote client
const (
	ChatKindPrivate    = "private"
	ChatKindSecret     = "secret"
	ChatKindBasicGroup = "basic_group"
	ChatKindSupergroup = "supergroup"
)

// RemoteChat is a chat summary fetched from Telegram.
// Kind is one of the ChatKind constants or the raw remote type name.
type RemoteChat struct {
	ID        int64
	Title     string
	Username  string
	Kind      string
	IsChannel bool
}

// RemoteMessage is a message as delivered by history pages or push updates
type RemoteMessage struct {
	ChatID  int64
	ID      int64
	Date    int64
	Content Content
}

// MessagePage is one page of backward chat history, newest first
type MessagePage struct {
	TotalCount int
	Messages   []RemoteMessage
}

// RemoteFile describes the download state of a remote file.
// LocalPath and IsComplete change while a download is running.
type RemoteFile struct {
	ID              string
	Size            int64
	MimeType        string
	LocalPath       string
	IsComplete      bool
	CanBeDownloaded bool
}

// FileRef identifies a remote file with its declared size and type.
// MimeType is empty for thumbnails.
type FileRef struct {
	ID       string
	Size     int64
	MimeType string
}

// Thumbnail is a cover image reference
type Thumbnail struct {
	File   FileRef
	Width  int
	Height int
}

// Content is the tagged union of message contents the service cares about
type Content interface {
	contentKind() string
}

// AudioContent is a native audio attachment
type AudioContent struct {
	FileName       string
	MimeType       string
	Title          string
	Performer      string
	Duration       int
	File           FileRef
	AlbumCover     *Thumbnail
	ExternalCovers []Thumbnail
}

// DocumentContent is a generic file attachment
type DocumentContent struct {
	FileName  string
	MimeType  string
	File      FileRef
	Thumbnail *Thumbnail
}

// OtherContent is any content without an attached file of interest
type OtherContent struct {
	Kind string
}

func (AudioContent) contentKind() string    { return "audio" }
func (DocumentContent) contentKind() string { return "document" }
func (c OtherContent) contentKind() string  { return c.Kind }

// ContentKind returns a short tag for logging
func ContentKind(c Content) string {
	if c == nil {
		return "empty"
	}
	return c.contentKind()
}

// AttachedFile returns the file carried by audio or document content
func AttachedFile(c Content) (FileRef, bool) {
	switch content := c.(type) {
	case AudioContent:
		return content.File, content.File.ID != ""
	case DocumentContent:
		return content.File, content.File.ID != ""
	default:
		return FileRef{}, false
	}
}
