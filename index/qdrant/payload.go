package qdrant

import (
	"github.com/qdrant/go-client/qdrant"

	"github.com/poiesic/vibesearch/core"
)

// Payload field names as stored in Qdrant. The names match the corpus
// column names so the collection remains inspectable from the Qdrant
// dashboard.
const (
	fieldArtist      = "artist"
	fieldSong        = "song"
	fieldLink        = "link"
	fieldTextPreview = "text_preview"
)

func stringValue(s string) *qdrant.Value {
	return &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: s}}
}

// toPayloadValues converts a domain payload to the Qdrant wire form.
func toPayloadValues(p core.Payload) map[string]*qdrant.Value {
	return map[string]*qdrant.Value{
		fieldArtist:      stringValue(p.Artist),
		fieldSong:        stringValue(p.Song),
		fieldLink:        stringValue(p.Link),
		fieldTextPreview: stringValue(p.TextPreview),
	}
}

// fromPayloadValues converts a Qdrant payload back to the domain form.
// Missing fields read as empty strings.
func fromPayloadValues(values map[string]*qdrant.Value) core.Payload {
	return core.Payload{
		Artist:      values[fieldArtist].GetStringValue(),
		Song:        values[fieldSong].GetStringValue(),
		Link:        values[fieldLink].GetStringValue(),
		TextPreview: values[fieldTextPreview].GetStringValue(),
	}
}
