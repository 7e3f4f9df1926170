package profile

import "sync"

// DefaultBlockMessage is shown in disabled players and playlist entries when
// the settings do not provide one.
const DefaultBlockMessage = "Blocked by BlockTube"

// Options are the host settings that shape side effects.
type Options struct {
	// BlockMessage replaces the content of blocked players and playlist entries.
	BlockMessage string
	// Autoplay follows the next suggested video after a blocked watch page.
	Autoplay bool
	// BlockTrending discards the trending feed.
	BlockTrending bool
}

// Host is the page-level state that side effects read and write. It stands
// in for the browser page: it remembers whether the current watch page was
// blocked, where the viewer would be sent next and whether the page title
// was censored. A Host belongs to one page view; its state is guarded so
// passes over that page's documents may run from several goroutines.
type Host struct {
	opts Options

	mu            sync.Mutex
	pageBlocked   bool
	playlist      bool
	redirect      string
	titleCensored bool
}

// NewHost creates a Host. An empty block message falls back to
// DefaultBlockMessage.
func NewHost(opts Options) *Host {
	if opts.BlockMessage == "" {
		opts.BlockMessage = DefaultBlockMessage
	}

	return &Host{opts: opts}
}

// Options returns the host settings.
func (h *Host) Options() Options { return h.opts }

// PageBlocked reports whether a player pass found the current video blocked.
func (h *Host) PageBlocked() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.pageBlocked
}

// SetPlaylist records whether the page is played as part of a playlist.
func (h *Host) SetPlaylist(playlist bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.playlist = playlist
}

// Redirect returns the location the viewer should be sent to, if any.
func (h *Host) Redirect() string {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.redirect
}

// TitleCensored reports whether the page title must be replaced.
func (h *Host) TitleCensored() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.titleCensored
}

func (h *Host) setPageBlocked(blocked bool) {
	h.mu.Lock()
	h.pageBlocked = blocked
	h.mu.Unlock()
}

func (h *Host) setRedirect(location string) {
	h.mu.Lock()
	h.redirect = location
	h.mu.Unlock()
}
