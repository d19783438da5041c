package types

import (
	"strings"
	"time"

	a "github.com/petar-dambovaliev/aho-corasick"

	"github.com/google/uuid"
)

// NarrativeEntry is one cached narration for a heritage object. Entries are
// unique per (ObjectID, GenerationKey); rows written under obsolete keys are
// kept around and simply stop being read once the key changes.
type NarrativeEntry struct {
	ObjectID      uuid.UUID `json:"object_id"`
	GenerationKey string    `json:"generation_key"`
	Text          string    `json:"text"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Aho-Corasick matcher for generator refusal detection. A model that answers
// with a disclaimer instead of a narration must not be cached as if it were
// real content.
var (
	refusalBuilder = a.NewAhoCorasickBuilder(a.Opts{
		AsciiCaseInsensitive: true,
		MatchOnlyWholeWords:  false,
	})

	refusalMatcher = refusalBuilder.Build([]string{
		"as an ai",
		"as a language model",
		"i cannot",
		"i can't",
		"i'm sorry",
		"i am sorry",
		"i don't have enough information",
	})
)

// IsGeneratorRefusal reports whether generated text looks like a model
// refusal or disclaimer rather than a narration.
func IsGeneratorRefusal(text string) bool {
	iter := refusalMatcher.Iter(strings.ToLower(text))
	return iter.Next() != nil
}
