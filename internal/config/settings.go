package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
	sigsyaml "sigs.k8s.io/yaml"

	"github.com/kushwahaPrashant24/blocktube/internal/criteria"
	"github.com/kushwahaPrashant24/blocktube/internal/filter"
	"github.com/kushwahaPrashant24/blocktube/internal/profile"
	"github.com/kushwahaPrashant24/blocktube/internal/tree"
)

// SupportedVersions constrains the version field of a settings file.
const SupportedVersions = ">= 1.0.0, < 2.0.0"

// ErrUnsupportedVersion is returned for a settings file outside SupportedVersions.
var ErrUnsupportedVersion = errors.New("unsupported settings version")

// Settings is the filter settings file: what to block and how blocked
// content is presented. It is YAML or JSON with the field names of the
// browser extension's exported settings.
type Settings struct {
	// Version is optional; when set it must satisfy SupportedVersions.
	Version string `json:"version,omitempty"`

	FilterData FilterData `json:"filterData"`

	Options Options `json:"options"`

	// Rules are custom flat rules: tag to attribute to path.
	Rules map[string]map[string]tree.PathSpec `json:"rules,omitempty"`
}

// FilterData lists the patterns per attribute and the duration bounds.
type FilterData struct {
	VideoID     []criteria.Source `json:"videoId,omitempty"`
	ChannelID   []criteria.Source `json:"channelId,omitempty"`
	ChannelName []criteria.Source `json:"channelName,omitempty"`
	Title       []criteria.Source `json:"title,omitempty"`
	Comment     []criteria.Source `json:"comment,omitempty"`

	// VidLength is empty or a [min, max] pair in seconds; null leaves a
	// bound unset.
	VidLength []*int `json:"vidLength,omitempty"`
}

// Options are the behavior switches.
type Options struct {
	Trending     bool     `json:"trending,omitempty"`
	Autoplay     bool     `json:"autoplay,omitempty"`
	BlockMessage string   `json:"block_message,omitempty"`
	Cascade      []string `json:"cascade,omitempty"`
	Strip        []string `json:"strip,omitempty"`
}

// LoadSettings reads and parses the settings file at path.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading settings file: %w", err)
	}

	s, err := ParseSettings(data)
	if err != nil {
		return nil, fmt.Errorf("settings file %q: %w", path, err)
	}

	return s, nil
}

// ParseSettings parses settings from YAML or JSON bytes and validates them.
func ParseSettings(data []byte) (*Settings, error) {
	var s Settings
	if err := sigsyaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing settings: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return &s, nil
}

// Validate checks the version gate, the duration pair and custom rules.
// Pattern syntax is not checked here; see CriteriaSpec and criteria.Compile.
func (s *Settings) Validate() error {
	if s.Version != "" {
		if err := checkVersion(s.Version); err != nil {
			return err
		}
	}

	if n := len(s.FilterData.VidLength); n != 0 && n != 2 {
		return fmt.Errorf("filterData.vidLength: want [min, max], got %d values", n)
	}

	for _, bound := range s.FilterData.VidLength {
		if bound != nil && *bound < 0 {
			return fmt.Errorf("filterData.vidLength: bound %d must not be negative", *bound)
		}
	}

	for _, tag := range sortedRuleTags(s.Rules) {
		props := s.Rules[tag]
		if len(props) == 0 {
			return fmt.Errorf("rules[%s]: at least one attribute path is required", tag)
		}

		for attr, spec := range props {
			if !slices.Contains(criteria.TextAttributes, attr) && attr != criteria.Duration {
				return fmt.Errorf("rules[%s]: unknown attribute %q", tag, attr)
			}

			if len(spec) == 0 || slices.Contains(spec, "") {
				return fmt.Errorf("rules[%s].%s: empty path", tag, attr)
			}
		}
	}

	for i, name := range s.Options.Cascade {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("options.cascade[%d]: empty attribute name", i)
		}
	}

	return nil
}

func checkVersion(raw string) error {
	v, err := semver.NewVersion(raw)
	if err != nil {
		return fmt.Errorf("%w: invalid version %q: %v", ErrUnsupportedVersion, raw, err)
	}

	c, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return fmt.Errorf("invalid version constraint %q: %w", SupportedVersions, err)
	}

	if !c.Check(v) {
		return fmt.Errorf("%w: %s does not satisfy %s", ErrUnsupportedVersion, raw, SupportedVersions)
	}

	return nil
}

func sortedRuleTags(rules map[string]map[string]tree.PathSpec) []string {
	tags := make([]string, 0, len(rules))
	for tag := range rules {
		tags = append(tags, tag)
	}

	slices.Sort(tags)

	return tags
}

// CriteriaSpec returns the raw criteria described by the settings.
func (s *Settings) CriteriaSpec() criteria.Spec {
	spec := criteria.Spec{
		Patterns:      make(map[string][]criteria.Source),
		BlockTrending: s.Options.Trending,
	}

	for attr, srcs := range map[string][]criteria.Source{
		criteria.VideoID:     s.FilterData.VideoID,
		criteria.ChannelID:   s.FilterData.ChannelID,
		criteria.ChannelName: s.FilterData.ChannelName,
		criteria.Title:       s.FilterData.Title,
		criteria.Comment:     s.FilterData.Comment,
	} {
		if len(srcs) > 0 {
			spec.Patterns[attr] = srcs
		}
	}

	if len(s.FilterData.VidLength) == 2 {
		spec.MinDuration = s.FilterData.VidLength[0]
		spec.MaxDuration = s.FilterData.VidLength[1]
	}

	return spec
}

// CustomRules converts the custom rule section into a flat RuleSet.
func (s *Settings) CustomRules() filter.RuleSet {
	if len(s.Rules) == 0 {
		return nil
	}

	rs := make(filter.RuleSet, len(s.Rules))
	for tag, props := range s.Rules {
		rs[tag] = filter.Flat(filter.Properties(props))
	}

	return rs
}

// ProfileConfig compiles the settings into a profile configuration. Pattern
// compile failures are logged and returned; the affected patterns are left
// out and the rest of the configuration stays usable.
func (s *Settings) ProfileConfig(logger *slog.Logger) (profile.Config, []*criteria.PatternError) {
	c, errs := criteria.Compile(s.CriteriaSpec(), logger)

	return profile.Config{
		Criteria: c,
		Options: profile.Options{
			BlockMessage:  s.Options.BlockMessage,
			Autoplay:      s.Options.Autoplay,
			BlockTrending: s.Options.Trending,
		},
		Cascade: s.Options.Cascade,
		Custom:  s.CustomRules(),
		Strip:   s.Options.Strip,
		Logger:  logger,
	}, errs
}
