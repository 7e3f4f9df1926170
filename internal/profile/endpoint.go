package profile

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"strings"

	"github.com/kushwahaPrashant24/blocktube/internal/filter"
)

// Endpoint paths with dedicated handling.
const (
	PathGuide    = "/guide_ajax"
	PathComments = "/comment_service_ajax"
	PathLiveChat = "/get_live_chat"
	PathWatch    = "/watch"
	PathTrending = "/feed/trending"
)

// Page-level documents that are filtered when the page is first rendered.
const (
	GlobalInitialData     = "ytInitialData"
	GlobalPlayerResponse  = "ytInitialPlayerResponse"
	GlobalGuideData       = "ytInitialGuideData"
	GlobalPlayerConfig    = "ytplayer.config"
	GlobalEmbedPlayerConf = "PLAYER_CONFIG"
)

// filterablePaths are the ajax endpoints whose responses are filtered
// regardless of query parameters.
var filterablePaths = []string{
	"/browse_ajax",
	"/related_ajax",
	"/list_ajax",
	PathGuide,
}

var globalKinds = map[string]Kind{
	GlobalInitialData:     KindData,
	GlobalPlayerResponse:  KindPlayer,
	GlobalGuideData:       KindGuide,
	GlobalPlayerConfig:    KindPlayer,
	GlobalEmbedPlayerConf: KindPlayer,
}

// Globals lists the page-level document names in a stable order.
func Globals() []string {
	names := make([]string, 0, len(globalKinds))
	for name := range globalKinds {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// IsFilterable reports whether a response from u is filtered: known ajax
// endpoints, and any request carrying the pbj parameter.
func IsFilterable(u *url.URL) bool {
	return slices.Contains(filterablePaths, u.Path) || u.Query().Has("pbj")
}

// Route is the filtering plan for a response body.
type Route struct {
	Kind Kind
	Post []filter.PostAction
}

// RulesFor returns the rule table and post actions for the response of an
// endpoint path. A watch page gets its related data removed and autoplay
// repaired, and is emptied when a player pass already blocked it.
func (p *Profile) RulesFor(path string) Route {
	switch path {
	case PathGuide:
		return Route{Kind: KindGuide}
	case PathComments, PathLiveChat:
		return Route{Kind: KindComments}
	case PathWatch:
		post := []filter.PostAction{RemoveRelated, FixAutoplay}
		if p.host.PageBlocked() {
			post = append(post, p.host.RedirectToNext)
		}

		return Route{Kind: KindData, Post: post}
	default:
		return Route{Kind: KindData}
	}
}

// Result reports the outcome of filtering one document.
type Result struct {
	// Document is the filtered document, nil when discarded.
	Document interface{}
	// Skipped is set when the target is not filtered at all.
	Skipped bool
	// Discarded is set when a pass aborted; Reason carries why.
	Discarded bool
	Reason    string
	// Redirect is where the viewer would be sent instead, if anywhere.
	Redirect string
	// TitleCensored is set when the page title must be hidden.
	TitleCensored bool
	Stats         filter.Stats
}

func (p *Profile) result(doc interface{}, stats filter.Stats) Result {
	return Result{
		Document:      doc,
		Redirect:      p.host.Redirect(),
		TitleCensored: p.host.TitleCensored(),
		Stats:         stats,
	}
}

func (p *Profile) discarded(reason string, stats filter.Stats) Result {
	r := p.result(nil, stats)
	r.Discarded = true
	r.Reason = reason

	return r
}

// Filter dispatches on target: a page-level document name is handled by
// FilterGlobal, anything else is parsed as a request URL for FilterResponse.
func (p *Profile) Filter(ctx context.Context, target string, doc interface{}) (Result, error) {
	if _, ok := globalKinds[target]; ok {
		return p.FilterGlobal(ctx, target, doc)
	}

	u, err := url.Parse(target)
	if err != nil {
		return Result{}, fmt.Errorf("parsing endpoint %q: %w", target, err)
	}

	if !strings.HasPrefix(u.Path, "/") {
		return Result{}, fmt.Errorf("endpoint %q is neither a page document (%s) nor an absolute path",
			target, strings.Join(Globals(), ", "))
	}

	return p.FilterResponse(ctx, u, doc)
}

// FilterGlobal filters a page-level document such as the initial data of a
// page. The initial data is emptied when the player marked the page blocked.
func (p *Profile) FilterGlobal(ctx context.Context, name string, doc interface{}) (Result, error) {
	kind, ok := globalKinds[name]
	if !ok {
		return Result{}, fmt.Errorf("%w: page document %q", ErrUnknownKind, name)
	}

	var post []filter.PostAction

	if name == GlobalInitialData {
		post = []filter.PostAction{RemoveRelated, FixAutoplay}

		if m, ok := doc.(map[string]interface{}); ok && p.host.PageBlocked() {
			if _, ok := m["contents"]; ok {
				post = append(post, p.host.RedirectToNext)
			}
		}
	}

	s, err := p.Run(ctx, kind, doc, post...)
	if err != nil {
		return Result{}, err
	}

	if s.Discarded() {
		return p.discarded(s.Reason(), s.Stats()), nil
	}

	return p.result(s.Document(), s.Stats()), nil
}

// FilterResponse filters an ajax response body. The body is a list of
// envelopes, or a single one; in each envelope player and playerResponse
// are filtered with the player rules and response with the rules routed by
// the request path. A discard anywhere discards the whole body.
func (p *Profile) FilterResponse(ctx context.Context, u *url.URL, body interface{}) (Result, error) {
	logger := p.logger.With(slog.String("endpoint", u.Path))

	if p.host.Options().BlockTrending && u.Path == PathTrending {
		p.host.setRedirect("/")
		logger.Info("trending feed blocked")

		return p.discarded(ReasonRedirectIndex, filter.Stats{}), nil
	}

	if !IsFilterable(u) {
		logger.Debug("endpoint not filtered")
		return Result{Document: body, Skipped: true}, nil
	}

	p.host.SetPlaylist(u.Query().Has("list"))

	envelopes, isList := body.([]interface{})
	if !isList {
		envelopes = []interface{}{body}
	}

	var stats filter.Stats

	for _, el := range envelopes {
		env, ok := el.(map[string]interface{})
		if !ok {
			continue
		}

		for _, part := range []struct {
			key   string
			route func() Route
		}{
			{"player", func() Route { return Route{Kind: KindPlayer} }},
			{"playerResponse", func() Route { return Route{Kind: KindPlayer} }},
			{"response", func() Route { return p.RulesFor(u.Path) }},
		} {
			doc, ok := env[part.key]
			if !ok {
				continue
			}

			route := part.route()

			s, err := p.Run(ctx, route.Kind, doc, route.Post...)
			if err != nil {
				return Result{}, fmt.Errorf("filtering %s: %w", part.key, err)
			}

			stats = stats.Add(s.Stats())

			if s.Discarded() {
				logger.Info("response discarded",
					slog.String("part", part.key),
					slog.String("reason", s.Reason()),
				)

				return p.discarded(s.Reason(), stats), nil
			}

			env[part.key] = s.Document()
		}
	}

	if !isList {
		return p.result(envelopes[0], stats), nil
	}

	return p.result(envelopes, stats), nil
}

// PageDocument is one document of a page view, named by a page document
// name or the request path it was fetched from.
type PageDocument struct {
	Target   string
	Document interface{}
}

// FilterPage filters the documents of one page view in the order given.
// They share the page state: a player configuration that blocks the video
// empties the watch page in the initial data that follows it.
func (p *Profile) FilterPage(ctx context.Context, docs []PageDocument) ([]Result, error) {
	results := make([]Result, 0, len(docs))

	for _, d := range docs {
		res, err := p.Filter(ctx, d.Target, d.Document)
		if err != nil {
			return nil, fmt.Errorf("filtering %s: %w", d.Target, err)
		}

		results = append(results, res)
	}

	return results, nil
}
