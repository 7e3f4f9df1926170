package profile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kushwahaPrashant24/blocktube/internal/criteria"
	"github.com/kushwahaPrashant24/blocktube/internal/tree"
)

func autoplayDoc(autoplayContents arr) obj {
	return obj{
		"contents": obj{"twoColumnWatchNextResults": obj{"secondaryResults": obj{"secondaryResults": obj{
			"results": arr{
				obj{"compactAutoplayRenderer": obj{"contents": autoplayContents}},
				obj{"compactRadioRenderer": obj{"playlistId": "RD1"}},
				obj{"compactVideoRenderer": obj{"videoId": "v2"}},
				obj{"compactVideoRenderer": obj{"videoId": "v3"}},
			},
		}}}},
		"playerOverlays": obj{"playerOverlayRenderer": obj{"endScreen": obj{
			"watchNextEndScreenRenderer": obj{"results": arr{"o0", "o1", "o2", "o3"}},
		}}},
	}
}

func TestFixAutoplay_RefillsEmptySlot(t *testing.T) {
	p := newProfile(t, patterns(criteria.VideoID, "^none$"), Options{})

	s, err := p.Run(context.Background(), KindData, autoplayDoc(arr{}), FixAutoplay)
	require.NoError(t, err)

	results, ok := tree.SequenceAt(s.Document(),
		tree.Path("contents.twoColumnWatchNextResults.secondaryResults.secondaryResults.results"))
	require.True(t, ok)
	require.Len(t, results, 3)

	assert.Equal(t,
		obj{"compactAutoplayRenderer": obj{"contents": arr{obj{"compactVideoRenderer": obj{"videoId": "v2"}}}}},
		results[0])
	assert.Equal(t, obj{"compactVideoRenderer": obj{"videoId": "v3"}}, results[2])

	overlays, ok := tree.SequenceAt(s.Document(),
		tree.Path("playerOverlays.playerOverlayRenderer.endScreen.watchNextEndScreenRenderer.results"))
	require.True(t, ok)
	assert.Equal(t, arr{"o1", "o0", "o2", "o3"}, overlays)
}

func TestFixAutoplay_FilledSlotUntouched(t *testing.T) {
	p := newProfile(t, patterns(criteria.VideoID, "^none$"), Options{})

	filled := arr{obj{"compactVideoRenderer": obj{"videoId": "v1"}}}

	s, err := p.Run(context.Background(), KindData, autoplayDoc(filled), FixAutoplay)
	require.NoError(t, err)
	assert.Equal(t, autoplayDoc(filled), s.Document())
}

func TestFixAutoplay_AfterFilteringEmptiedSlot(t *testing.T) {
	p := newProfile(t, patterns(criteria.VideoID, "^v1$"), Options{})

	doc := autoplayDoc(arr{obj{"compactVideoRenderer": obj{"videoId": "v1"}}})

	s, err := p.Run(context.Background(), KindData, doc, FixAutoplay)
	require.NoError(t, err)

	autoplay, ok := tree.SequenceAt(s.Document(),
		tree.Path("contents.twoColumnWatchNextResults.secondaryResults.secondaryResults.results.compactAutoplayRenderer.contents"))
	require.True(t, ok)
	assert.Equal(t, arr{obj{"compactVideoRenderer": obj{"videoId": "v2"}}}, autoplay)
}

func TestFixAutoplay_NoRegularSuggestion(t *testing.T) {
	p := newProfile(t, patterns(criteria.VideoID, "^none$"), Options{})

	doc := obj{"contents": obj{"twoColumnWatchNextResults": obj{"secondaryResults": obj{"secondaryResults": obj{
		"results": arr{obj{"compactAutoplayRenderer": obj{"contents": arr{}}}},
	}}}}}
	want := obj{"contents": obj{"twoColumnWatchNextResults": obj{"secondaryResults": obj{"secondaryResults": obj{
		"results": arr{obj{"compactAutoplayRenderer": obj{"contents": arr{}}}},
	}}}}}

	s, err := p.Run(context.Background(), KindData, doc, FixAutoplay)
	require.NoError(t, err)
	assert.Equal(t, want, s.Document())
}

func TestRemoveRelated(t *testing.T) {
	p := newProfile(t, patterns(criteria.VideoID, "^none$"), Options{})

	doc := obj{"webWatchNextResponseExtensionData": obj{"x": 1}, "contents": obj{}}

	s, err := p.Run(context.Background(), KindData, doc, RemoveRelated)
	require.NoError(t, err)
	assert.Equal(t, obj{"contents": obj{}}, s.Document())
}
