package fileid

import (
	"bytes"
	"errors"
	"testing"

	"github.com/gotd/td/tg"
)

func TestEncodeDecode_Document(t *testing.T) {
	doc := &tg.Document{
		ID:            5938271625,
		AccessHash:    -771234,
		FileReference: []byte{1, 0, 0, 0, 7, 200},
		DCID:          2,
		Attributes: []tg.DocumentAttributeClass{
			&tg.DocumentAttributeAudio{Title: "Song", Performer: "Band"},
		},
	}

	loc := FromDocument(doc)
	if loc.Type != TypeAudio {
		t.Errorf("Expected TypeAudio, got %d", loc.Type)
	}

	decoded, err := Decode(Encode(loc))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if decoded.ID != doc.ID || decoded.AccessHash != doc.AccessHash || decoded.DCID != doc.DCID {
		t.Errorf("Decoded location mismatch: %+v", decoded)
	}
	if !bytes.Equal(decoded.FileReference, doc.FileReference) {
		t.Errorf("Expected file reference %v, got %v", doc.FileReference, decoded.FileReference)
	}
	if decoded.ThumbSize != "" {
		t.Errorf("Expected no thumb size, got %q", decoded.ThumbSize)
	}
}

func TestEncodeDecode_ThumbnailWithoutReference(t *testing.T) {
	doc := &tg.Document{ID: 42, AccessHash: 7, DCID: 4}

	decoded, err := Decode(Encode(FromThumbnail(doc, "m")))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if decoded.Type != TypeThumbnail || decoded.ThumbSize != "m" {
		t.Errorf("Expected thumbnail m, got %+v", decoded)
	}
	if decoded.LocalName() != "42_m" {
		t.Errorf("Expected local name 42_m, got %s", decoded.LocalName())
	}
}

func TestEncodeDecode_LongFileReference(t *testing.T) {
	ref := bytes.Repeat([]byte{9, 0}, 200)
	loc := Location{Type: TypeDocument, DCID: 1, ID: 3, AccessHash: 4, FileReference: ref}

	decoded, err := Decode(Encode(loc))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !bytes.Equal(decoded.FileReference, ref) {
		t.Error("Expected long file reference to survive encoding")
	}
}

func TestFromDocument_VoiceIsDocument(t *testing.T) {
	doc := &tg.Document{
		ID:         1,
		Attributes: []tg.DocumentAttributeClass{&tg.DocumentAttributeAudio{Voice: true}},
	}
	if loc := FromDocument(doc); loc.Type != TypeDocument {
		t.Errorf("Expected voice note to be TypeDocument, got %d", loc.Type)
	}
}

func TestDecode_Invalid(t *testing.T) {
	for _, id := range []string{"", "!!!", "AAAA", Encode(Location{Type: TypeDocument, ID: 1})[:5]} {
		if _, err := Decode(id); !errors.Is(err, ErrInvalid) {
			t.Errorf("Decode(%q): expected ErrInvalid, got %v", id, err)
		}
	}
}

func TestInputLocation(t *testing.T) {
	loc := Location{ID: 10, AccessHash: 20, FileReference: []byte{1}, ThumbSize: "x"}

	input, ok := loc.InputLocation().(*tg.InputDocumentFileLocation)
	if !ok {
		t.Fatal("Expected InputDocumentFileLocation")
	}
	if input.ID != 10 || input.AccessHash != 20 || input.ThumbSize != "x" {
		t.Errorf("Unexpected input location %+v", input)
	}
}
