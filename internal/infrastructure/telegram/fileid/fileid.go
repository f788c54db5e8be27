// Package fileid encodes MTProto document locations into opaque string ids.
// The layout follows the Bot API file_id scheme: little-endian header,
// TL-style byte strings and zero-run RLE, wrapped in unpadded base64url.
package fileid

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gotd/td/tg"
)

// File types stored in the id header
const (
	TypeThumbnail = 0
	TypeDocument  = 5
	TypeAudio     = 9
)

const (
	fileReferenceFlag = 1 << 25
	typeMask          = 0xFF

	version    = 4
	subVersion = 47
)

// ErrInvalid is returned for ids that cannot be decoded
var ErrInvalid = errors.New("invalid file id")

// Location is everything needed to download a document or one of its thumbnails
type Location struct {
	Type          int
	DCID          int
	ID            int64
	AccessHash    int64
	FileReference []byte
	ThumbSize     string
}

// FromDocument builds the location of a document.
// Audio documents are tagged TypeAudio, everything else TypeDocument.
func FromDocument(doc *tg.Document) Location {
	fileType := TypeDocument
	for _, attr := range doc.Attributes {
		if a, ok := attr.(*tg.DocumentAttributeAudio); ok && !a.Voice {
			fileType = TypeAudio
			break
		}
	}

	return Location{
		Type:          fileType,
		DCID:          doc.DCID,
		ID:            doc.ID,
		AccessHash:    doc.AccessHash,
		FileReference: doc.FileReference,
	}
}

// FromThumbnail builds the location of a document thumbnail of the given size type
func FromThumbnail(doc *tg.Document, sizeType string) Location {
	return Location{
		Type:          TypeThumbnail,
		DCID:          doc.DCID,
		ID:            doc.ID,
		AccessHash:    doc.AccessHash,
		FileReference: doc.FileReference,
		ThumbSize:     sizeType,
	}
}

// InputLocation converts the location into a download request location
func (l Location) InputLocation() tg.InputFileLocationClass {
	return &tg.InputDocumentFileLocation{
		ID:            l.ID,
		AccessHash:    l.AccessHash,
		FileReference: l.FileReference,
		ThumbSize:     l.ThumbSize,
	}
}

// LocalName is a stable file name for the downloaded content.
// It ignores the file reference, which Telegram rotates.
func (l Location) LocalName() string {
	if l.ThumbSize != "" {
		return fmt.Sprintf("%d_%s", l.ID, l.ThumbSize)
	}
	return fmt.Sprintf("%d", l.ID)
}

// Encode serializes the location to an opaque id
func Encode(l Location) string {
	buf := make([]byte, 0, 64)

	typeID := int32(l.Type)
	if len(l.FileReference) > 0 {
		typeID |= fileReferenceFlag
	}
	buf = appendInt32(buf, typeID)
	buf = appendInt32(buf, int32(l.DCID))

	if len(l.FileReference) > 0 {
		buf = appendTLBytes(buf, l.FileReference)
	}

	buf = appendInt64(buf, l.ID)
	buf = appendInt64(buf, l.AccessHash)

	if l.Type == TypeThumbnail {
		buf = appendTLBytes(buf, []byte(l.ThumbSize))
	}

	buf = append(buf, byte(subVersion), byte(version))

	return base64.RawURLEncoding.EncodeToString(rleEncode(buf))
}

// Decode parses an id produced by Encode
func Decode(id string) (Location, error) {
	raw, err := base64.RawURLEncoding.DecodeString(id)
	if err != nil {
		return Location{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	data := rleDecode(raw)
	if len(data) < 2 || data[len(data)-1] != version {
		return Location{}, ErrInvalid
	}
	r := reader{buf: data[:len(data)-2]}

	typeID, err := r.int32()
	if err != nil {
		return Location{}, err
	}
	dcID, err := r.int32()
	if err != nil {
		return Location{}, err
	}

	loc := Location{
		Type: int(typeID & typeMask),
		DCID: int(dcID),
	}

	if typeID&fileReferenceFlag != 0 {
		if loc.FileReference, err = r.tlBytes(); err != nil {
			return Location{}, err
		}
	}
	if loc.ID, err = r.int64(); err != nil {
		return Location{}, err
	}
	if loc.AccessHash, err = r.int64(); err != nil {
		return Location{}, err
	}

	if loc.Type == TypeThumbnail {
		thumb, err := r.tlBytes()
		if err != nil {
			return Location{}, err
		}
		loc.ThumbSize = string(thumb)
	}

	if len(r.buf) != 0 {
		return Location{}, ErrInvalid
	}

	return loc, nil
}

func appendInt64(buf []byte, v int64) []byte {
	return binary.LittleEndian.AppendUint64(buf, uint64(v))
}

func appendInt32(buf []byte, v int32) []byte {
	return binary.LittleEndian.AppendUint32(buf, uint32(v))
}

// appendTLBytes encodes bytes in Telegram TL-style format:
// - Length < 254: 1 byte length + data + padding to 4-byte boundary
// - Length >= 254: 0xFE + 3 bytes length (LE) + data + padding
func appendTLBytes(buf []byte, data []byte) []byte {
	length := len(data)

	var padding int
	if length < 254 {
		buf = append(buf, byte(length))
		padding = (4 - (1+length)%4) % 4
	} else {
		buf = append(buf, 0xFE, byte(length), byte(length>>8), byte(length>>16))
		padding = (4 - length%4) % 4
	}

	buf = append(buf, data...)
	for i := 0; i < padding; i++ {
		buf = append(buf, 0)
	}
	return buf
}

// rleEncode collapses runs of zero bytes into (0, count) pairs
func rleEncode(data []byte) []byte {
	var encoded []byte
	for i := 0; i < len(data); {
		if data[i] != 0 {
			encoded = append(encoded, data[i])
			i++
			continue
		}

		count := 0
		for i < len(data) && data[i] == 0 && count < 255 {
			count++
			i++
		}
		encoded = append(encoded, 0, byte(count))
	}
	return encoded
}

func rleDecode(data []byte) []byte {
	var decoded []byte
	for i := 0; i < len(data); i++ {
		if data[i] == 0 && i+1 < len(data) {
			for n := 0; n < int(data[i+1]); n++ {
				decoded = append(decoded, 0)
			}
			i++
			continue
		}
		decoded = append(decoded, data[i])
	}
	return decoded
}

type reader struct {
	buf []byte
}

func (r *reader) take(n int) ([]byte, error) {
	if n < 0 || len(r.buf) < n {
		return nil, ErrInvalid
	}
	out := r.buf[:n]
	r.buf = r.buf[n:]
	return out, nil
}

func (r *reader) int32() (int32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b)), nil
}

func (r *reader) int64() (int64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(b)), nil
}

func (r *reader) tlBytes() ([]byte, error) {
	head, err := r.take(1)
	if err != nil {
		return nil, err
	}

	length := int(head[0])
	var padding int
	if length < 254 {
		padding = (4 - (1+length)%4) % 4
	} else {
		ext, err := r.take(3)
		if err != nil {
			return nil, err
		}
		length = int(ext[0]) | int(ext[1])<<8 | int(ext[2])<<16
		padding = (4 - length%4) % 4
	}

	data, err := r.take(length)
	if err != nil {
		return nil, err
	}
	if _, err := r.take(padding); err != nil {
		return nil, err
	}

	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}
