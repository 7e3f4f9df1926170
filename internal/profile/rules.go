package profile

import (
	"github.com/kushwahaPrashant24/blocktube/internal/criteria"
	"github.com/kushwahaPrashant24/blocktube/internal/filter"
	"github.com/kushwahaPrashant24/blocktube/internal/tree"
)

// Kind selects one of the rule tables.
type Kind string

// Rule table kinds.
const (
	KindData     Kind = "data"
	KindPlayer   Kind = "player"
	KindGuide    Kind = "guide"
	KindComments Kind = "comments"
)

// Kinds lists every rule table kind.
var Kinds = []Kind{KindData, KindPlayer, KindGuide, KindComments}

// CascadeAllowList names wrapper attributes that only exist to hold
// filterable content. They are removed from their parent once something
// inside them was filtered.
var CascadeAllowList = []string{
	"content",
	"horizontalListRenderer",
	"verticalListRenderer",
	"shelfRenderer",
	"gridRenderer",
	"expandedShelfContentsRenderer",
	"comment",
	"commentThreadRenderer",
	"itemSectionRenderer",
}

const browseID = "navigationEndpoint.browseEndpoint.browseId"

// baseProperties locate the attributes of the common video/playlist renderers.
func baseProperties() filter.Properties {
	return filter.Properties{
		criteria.VideoID:     tree.Path("videoId"),
		criteria.ChannelID:   tree.Path("shortBylineText.runs." + browseID),
		criteria.ChannelName: tree.Path("shortBylineText.runs", "shortBylineText.simpleText"),
		criteria.Title:       tree.Path("title.simpleText"),
		criteria.Duration:    tree.Path("thumbnailOverlays.thumbnailOverlayTimeStatusRenderer.text.simpleText"),
	}
}

var baseRendererTags = []string{
	"gridVideoRenderer",
	"videoRenderer",
	"radioRenderer",
	"channelRenderer",
	"playlistRenderer",
	"gridRadioRenderer",
	"compactVideoRenderer",
	"compactRadioRenderer",
	"playlistVideoRenderer",
	"endScreenVideoRenderer",
	"endScreenPlaylistRenderer",
	"gridPlaylistRenderer",
}

// dataRules covers browse, search, watch-next and playlist responses.
func (h *Host) dataRules() filter.RuleSet {
	rs := make(filter.RuleSet, len(baseRendererTags)+12)

	for _, tag := range baseRendererTags {
		rs[tag] = filter.Flat(baseProperties())
	}

	rs["shelfRenderer"] = filter.Flat(filter.Properties{
		criteria.ChannelID: tree.Path("endpoint.browseEndpoint.browseId"),
	})

	rs["channelVideoPlayerRenderer"] = filter.Flat(filter.Properties{
		criteria.Title: tree.Path("title.runs"),
	})

	rs["playlistPanelVideoRenderer"] = filter.Extended(baseProperties(), h.blockPlaylistVideo)

	rs["videoPrimaryInfoRenderer"] = filter.Extended(filter.Properties{
		criteria.Title: tree.Path("title.simpleText"),
	}, h.redirectToNextEffect)

	rs["videoSecondaryInfoRenderer"] = filter.Extended(filter.Properties{
		criteria.ChannelID:   tree.Path("owner.videoOwnerRenderer." + browseID),
		criteria.ChannelName: tree.Path("owner.videoOwnerRenderer.title.runs"),
	}, h.redirectToNextEffect)

	// Channel page header.
	rs["c4TabbedHeaderRenderer"] = filter.Extended(filter.Properties{
		criteria.ChannelID:   tree.Path("channelId"),
		criteria.ChannelName: tree.Path("title"),
	}, h.redirectToIndex)

	// Related channels.
	rs["gridChannelRenderer"] = filter.Flat(filter.Properties{
		criteria.ChannelID:   tree.Path("channelId"),
		criteria.ChannelName: tree.Path("title.simpleText"),
	})

	rs["miniChannelRenderer"] = filter.Flat(filter.Properties{
		criteria.ChannelID:   tree.Path("channelId"),
		criteria.ChannelName: tree.Path("title.runs"),
	})

	rs["guideEntryRenderer"] = filter.Flat(guideEntryProperties())

	rs["universalWatchCardRenderer"] = filter.Flat(filter.Properties{
		criteria.ChannelID:   tree.Path("header.watchCardRichHeaderRenderer.titleNavigationEndpoint.browseEndpoint.browseId"),
		criteria.ChannelName: tree.Path("header.watchCardRichHeaderRenderer.title.simpleText"),
	})

	rs["playlist"] = filter.Extended(filter.Properties{
		criteria.ChannelID:   tree.Path("shortBylineText.runs." + browseID),
		criteria.ChannelName: tree.Path("shortBylineText.runs", "shortBylineText.simpleText"),
		criteria.Title:       tree.Path("title"),
	}, h.redirectToIndex)

	return rs
}

// playerRules covers player configuration and player responses.
func (h *Host) playerRules() filter.RuleSet {
	return filter.RuleSet{
		"args": filter.Extended(filter.Properties{
			criteria.VideoID:     tree.Path("video_id"),
			criteria.ChannelID:   tree.Path("ucid"),
			criteria.ChannelName: tree.Path("author"),
			criteria.Title:       tree.Path("title"),
			criteria.Duration:    tree.Path("length_seconds"),
		}, h.markPageBlocked),
		"videoDetails": filter.Extended(filter.Properties{
			criteria.VideoID:     tree.Path("videoId"),
			criteria.ChannelID:   tree.Path("channelId"),
			criteria.ChannelName: tree.Path("author"),
			criteria.Title:       tree.Path("title"),
			criteria.Duration:    tree.Path("lengthSeconds"),
		}, h.disablePlayer),
	}
}

func guideEntryProperties() filter.Properties {
	return filter.Properties{
		criteria.ChannelID:   tree.Path(browseID),
		criteria.ChannelName: tree.Path("title"),
	}
}

// guideRules covers the side menu of subscribed channels.
func guideRules() filter.RuleSet {
	return filter.RuleSet{
		"guideEntryRenderer": filter.Flat(guideEntryProperties()),
	}
}

// commentRules covers comment threads and live chat.
func commentRules() filter.RuleSet {
	return filter.RuleSet{
		"commentRenderer": filter.Flat(filter.Properties{
			criteria.ChannelID:   tree.Path("authorEndpoint.browseEndpoint.browseId"),
			criteria.ChannelName: tree.Path("authorText.simpleText"),
			criteria.Comment:     tree.Path("contentText.runs"),
		}),
		"liveChatTextMessageRenderer": filter.Flat(filter.Properties{
			criteria.ChannelID:   tree.Path("authorExternalChannelId"),
			criteria.ChannelName: tree.Path("authorName.simpleText"),
			criteria.Comment:     tree.Path("message.runs"),
		}),
	}
}

// Rules returns the rule table of the given kind bound to h.
func (h *Host) Rules(kind Kind) (filter.RuleSet, bool) {
	switch kind {
	case KindData:
		return h.dataRules(), true
	case KindPlayer:
		return h.playerRules(), true
	case KindGuide:
		return guideRules(), true
	case KindComments:
		return commentRules(), true
	default:
		return nil, false
	}
}
