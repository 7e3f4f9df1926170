package profile

import (
	"log/slog"

	"github.com/kushwahaPrashant24/blocktube/internal/filter"
	"github.com/kushwahaPrashant24/blocktube/internal/tree"
)

// ReasonRedirectIndex is the abort reason of a pass that sends the viewer
// back to the start page.
const ReasonRedirectIndex = "redirect:/"

const (
	playerErrorThumbnail   = "//s.ytimg.com/yts/img/meh7-vflGevej7.png"
	playlistEntryThumbnail = "https://s.ytimg.com/yts/img/meh_mini-vfl0Ugnu3.png"
)

var (
	watchNextPath   = tree.Path("contents.twoColumnWatchNextResults")
	primaryPath     = tree.Path("results.results")
	secondaryPath   = tree.Path("secondaryResults")
	suggestionsPath = tree.Path("secondaryResults.results")
)

// markPageBlocked remembers that the current video is blocked so the watch
// page response can be emptied, and deletes the player arguments.
func (h *Host) markPageBlocked(s *filter.Session, _ map[string]interface{}, tag string) bool {
	h.setPageBlocked(true)
	s.Logger().Debug("watch page blocked", slog.String("tag", tag))

	return true
}

// disablePlayer keeps the video details but turns the player into an error
// screen carrying the block message.
func (h *Host) disablePlayer(_ *filter.Session, node map[string]interface{}, _ string) bool {
	status, ok := node["playabilityStatus"].(map[string]interface{})
	if !ok {
		status = make(map[string]interface{})
		node["playabilityStatus"] = status
	}

	status["status"] = "ERROR"
	status["reason"] = ""
	status["errorScreen"] = map[string]interface{}{
		"playerErrorMessageRenderer": map[string]interface{}{
			"reason": map[string]interface{}{
				"simpleText": h.opts.BlockMessage,
			},
			"thumbnail": map[string]interface{}{
				"thumbnails": []interface{}{
					map[string]interface{}{
						"url":    playerErrorThumbnail,
						"width":  int64(140),
						"height": int64(100),
					},
				},
			},
			"icon": map[string]interface{}{
				"iconType": "ERROR_OUTLINE",
			},
		},
	}

	return false
}

// blockPlaylistVideo keeps the playlist entry in place so the playlist
// indexes stay valid, but strips everything that identifies the video.
func (h *Host) blockPlaylistVideo(_ *filter.Session, node map[string]interface{}, tag string) bool {
	vid, ok := node[tag].(map[string]interface{})
	if !ok {
		return true
	}

	vid["videoId"] = ""
	vid["unplayableText"] = map[string]interface{}{
		"simpleText": "[" + h.opts.BlockMessage + "]",
	}
	vid["thumbnail"] = map[string]interface{}{
		"thumbnails": []interface{}{
			map[string]interface{}{"url": playlistEntryThumbnail},
		},
	}

	delete(vid, "title")
	delete(vid, "longBylineText")
	delete(vid, "shortBylineText")
	delete(vid, "thumbnailOverlays")

	return false
}

// redirectToIndex gives up on the whole document: a blocked channel page or
// playlist cannot be shown partially.
func (h *Host) redirectToIndex(s *filter.Session, _ map[string]interface{}, _ string) bool {
	h.setRedirect("/")
	s.Abort(ReasonRedirectIndex)

	return false
}

func (h *Host) redirectToNextEffect(s *filter.Session, _ map[string]interface{}, _ string) bool {
	h.RedirectToNext(s)
	return false
}

// RedirectToNext empties a blocked watch page. The primary results and the
// conversation bar are dropped; outside a playlist the suggestions go too,
// and with autoplay on the first regular suggestion becomes the redirect
// target. It runs as a post action after a player pass marked the page
// blocked, and as the side effect of the watch page info renderers.
func (h *Host) RedirectToNext(s *filter.Session) {
	h.mu.Lock()
	h.pageBlocked = false
	h.titleCensored = true
	playlist := h.playlist
	h.mu.Unlock()

	twoColumn, ok := tree.MappingAt(s.Document(), watchNextPath)
	if !ok {
		return
	}

	primary, ok := tree.MappingAt(twoColumn, primaryPath)
	if !ok {
		return
	}

	primary["contents"] = []interface{}{}
	delete(twoColumn, "conversationBar")

	if playlist {
		return
	}

	secondary, ok := tree.MappingAt(twoColumn, secondaryPath)
	if !ok {
		return
	}

	if h.opts.Autoplay {
		if next, ok := firstSuggestion(secondary); ok {
			h.setRedirect("watch?v=" + next)
			s.Logger().Debug("autoplay redirect", slog.String("videoId", next))
		}
	}

	delete(secondary, "secondaryResults")
}

// firstSuggestion returns the video id of the first regular suggestion.
func firstSuggestion(secondary map[string]interface{}) (string, bool) {
	suggestions, ok := tree.SequenceAt(secondary, suggestionsPath)
	if !ok {
		return "", false
	}

	for _, el := range suggestions {
		m, ok := el.(map[string]interface{})
		if !ok {
			continue
		}

		renderer, ok := m["compactVideoRenderer"]
		if !ok {
			continue
		}

		cvr, _ := renderer.(map[string]interface{})
		id, _ := cvr["videoId"].(string)

		return id, id != ""
	}

	return "", false
}
