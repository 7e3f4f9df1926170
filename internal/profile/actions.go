package profile

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/ohler55/ojg/jp"

	"github.com/kushwahaPrashant24/blocktube/internal/filter"
	"github.com/kushwahaPrashant24/blocktube/internal/tree"
)

// RelatedDataPath addresses the watch-next extension data that re-adds
// related videos on the client.
const RelatedDataPath = "$.webWatchNextResponseExtensionData"

var (
	autoplayParentPath = tree.Path("contents.twoColumnWatchNextResults.secondaryResults.secondaryResults")
	endScreenPath      = tree.Path("playerOverlays.playerOverlayRenderer.endScreen.watchNextEndScreenRenderer.results")
)

// RemoveRelated deletes the watch-next extension data.
var RemoveRelated = MustStripPaths(RelatedDataPath)

// StripPaths compiles JSONPath expressions into a post action that deletes
// every match from the surviving document.
func StripPaths(exprs ...string) (filter.PostAction, error) {
	paths := make([]jp.Expr, 0, len(exprs))

	for _, e := range exprs {
		x, err := jp.ParseString(e)
		if err != nil {
			return nil, fmt.Errorf("invalid jsonpath '%s': %w", e, err)
		}

		paths = append(paths, x)
	}

	return func(s *filter.Session) {
		doc := s.Document()
		if doc == nil {
			return
		}

		for _, x := range paths {
			if err := x.Del(doc); err != nil {
				s.Logger().Warn("strip path failed",
					slog.String("path", x.String()),
					slog.String("error", err.Error()),
				)
			}
		}
	}, nil
}

// MustStripPaths is like StripPaths but panics on an invalid expression.
func MustStripPaths(exprs ...string) filter.PostAction {
	action, err := StripPaths(exprs...)
	if err != nil {
		panic(err)
	}

	return action
}

// FixAutoplay refills an autoplay slot left empty by filtering with the
// first regular suggestion and moves the matching end-screen entry to the
// front.
func FixAutoplay(s *filter.Session) {
	doc := s.Document()

	parent, ok := tree.MappingAt(doc, autoplayParentPath)
	if !ok {
		return
	}

	suggestions, ok := parent["results"].([]interface{})
	if !ok {
		return
	}

	autoplay, ok := tree.MappingAt(suggestions, tree.Path("compactAutoplayRenderer"))
	if !ok {
		return
	}

	contents, ok := autoplay["contents"].([]interface{})
	if !ok || len(contents) != 0 {
		return
	}

	idx := -1

	for i, el := range suggestions {
		if m, ok := el.(map[string]interface{}); ok {
			if _, ok := m["compactVideoRenderer"]; ok {
				idx = i
				break
			}
		}
	}

	if idx < 0 {
		return
	}

	autoplay["contents"] = append(contents, suggestions[idx])
	parent["results"] = slices.Delete(suggestions, idx, idx+1)

	fixOverlay(doc, idx)
}

// fixOverlay moves the end-screen entry before index to the front.
func fixOverlay(doc interface{}, index int) {
	overlays, ok := tree.SequenceAt(doc, endScreenPath)
	if !ok || index < 1 || index > len(overlays) {
		return
	}

	moved := overlays[index-1]
	copy(overlays[1:index], overlays[:index-1])
	overlays[0] = moved
}
