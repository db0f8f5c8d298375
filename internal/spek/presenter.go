// ABOUTME: Presenter decorates a gem specification with derived, defaulted read-only views
// ABOUTME: Metadata-backed views come from a single default table; display strings use compressJoin

package spek

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/mauromedda/spek/internal/gemspec"
	"github.com/mauromedda/spek/internal/log"
	"github.com/mauromedda/spek/pkg/version"
)

// Delimiters used when callers do not pick their own.
const (
	DefaultBannerDelimiter  = ": "
	DefaultSummaryDelimiter = " - "
)

// metadataField binds a presenter view to a metadata key and the value used
// when the key is absent.
type metadataField struct {
	View    string
	Key     string
	Default string
}

var metadataFields = []metadataField{
	{View: "allowed_push_host", Key: "allowed_push_host", Default: gemspec.DefaultHost},
	{View: "allowed_push_key", Key: "allowed_push_key", Default: "rubygems_api_key"},
	{View: "documentation_url", Key: "documentation_uri", Default: ""},
	{View: "funding_url", Key: "funding_uri", Default: ""},
	{View: "issues_url", Key: "bug_tracker_uri", Default: ""},
	{View: "label", Key: "label", Default: "Undefined"},
	{View: "rubygems_mfa", Key: "rubygems_mfa_required", Default: "false"},
	{View: "source_url", Key: "source_code_uri", Default: ""},
	{View: "versions_url", Key: "changelog_uri", Default: ""},
}

var metadataByView = func() map[string]metadataField {
	m := make(map[string]metadataField, len(metadataFields))
	for _, f := range metadataFields {
		m[f.View] = f
	}
	return m
}()

// Presenter wraps one specification. Every view is computed from the record
// on each call, so a Presenter never goes stale relative to its record; a
// changed file needs a fresh Load.
type Presenter struct {
	record *gemspec.Specification
}

// NewPresenter wraps record. A nil record is replaced by an empty one.
func NewPresenter(record *gemspec.Specification) *Presenter {
	if record == nil {
		record = gemspec.New()
	}
	return &Presenter{record: record}
}

// WithDefault wraps record when it is a specification and otherwise wraps a
// fresh empty specification. It never fails.
func WithDefault(record any) *Presenter {
	if spec, ok := record.(*gemspec.Specification); ok && spec != nil {
		return NewPresenter(spec)
	}
	return NewPresenter(gemspec.New())
}

func (p *Presenter) metadata(view string) string {
	field := metadataByView[view]
	if value, ok := p.record.Metadata[field.Key]; ok {
		return value
	}
	return field.Default
}

// AllowedPushHost is the host gems may be pushed to.
func (p *Presenter) AllowedPushHost() string { return p.metadata("allowed_push_host") }

// AllowedPushKey names the credential used when pushing.
func (p *Presenter) AllowedPushKey() string { return p.metadata("allowed_push_key") }

func (p *Presenter) Authors() []string { return list(p.record.Authors) }

// Banner is "{labeled version}{delimiter}{summary}" with blank parts dropped.
func (p *Presenter) Banner() string { return p.BannerWith(DefaultBannerDelimiter) }

func (p *Presenter) BannerWith(delimiter string) string {
	return compressJoin(delimiter, p.LabeledVersion(), p.Summary())
}

func (p *Presenter) Bindir() string { return p.record.Bindir }

// CertificateChain lists certificate paths, cleaned.
func (p *Presenter) CertificateChain() []string {
	chain := make([]string, 0, len(p.record.CertChain))
	for _, path := range p.record.CertChain {
		chain = append(chain, filepath.Clean(path))
	}
	return chain
}

func (p *Presenter) DocumentationURL() string { return p.metadata("documentation_url") }

func (p *Presenter) Emails() []string { return list(p.record.Emails) }

func (p *Presenter) Executables() []string { return list(p.record.Executables) }

func (p *Presenter) ExtraRdocFiles() []string { return list(p.record.ExtraRdocFiles) }

func (p *Presenter) Files() []string { return list(p.record.Files) }

func (p *Presenter) FundingURL() string { return p.metadata("funding_url") }

func (p *Presenter) HomepageURL() string { return p.record.Homepage }

func (p *Presenter) IssuesURL() string { return p.metadata("issues_url") }

// Label is the human-friendly project name, "Undefined" when unset.
func (p *Presenter) Label() string { return p.metadata("label") }

// LabeledSummary is "{label}{delimiter}{summary}" with blank parts dropped.
func (p *Presenter) LabeledSummary() string { return p.LabeledSummaryWith(DefaultSummaryDelimiter) }

func (p *Presenter) LabeledSummaryWith(delimiter string) string {
	return compressJoin(delimiter, p.Label(), p.Summary())
}

func (p *Presenter) LabeledVersion() string {
	return compressJoin(" ", p.Label(), p.VersionString())
}

func (p *Presenter) License() string { return p.record.License() }

// Metadata returns a copy of the raw metadata mapping.
func (p *Presenter) Metadata() map[string]string {
	m := make(map[string]string, len(p.record.Metadata))
	for k, v := range p.record.Metadata {
		m[k] = v
	}
	return m
}

func (p *Presenter) Name() string { return p.record.Name }

func (p *Presenter) NamedVersion() string {
	return compressJoin(" ", p.Name(), p.VersionString())
}

// PackageName is the gem file name, e.g. "test-0.0.0.gem".
func (p *Presenter) PackageName() string {
	return compressJoin("-", p.Name(), p.VersionString()) + ".gem"
}

// PackagePath is where packaging tools build the gem, relative to the working directory.
func (p *Presenter) PackagePath() string {
	return filepath.Join("tmp", p.PackageName())
}

func (p *Presenter) Platform() string { return p.record.Platform }

func (p *Presenter) RequirePaths() []string { return list(p.record.RequirePaths) }

func (p *Presenter) RequiredRubyVersion() gemspec.Requirement {
	return slices.Clone(p.record.RequiredRubyVersion)
}

// RubygemsMFA reports whether the metadata flag is exactly "true".
func (p *Presenter) RubygemsMFA() bool { return p.metadata("rubygems_mfa") == "true" }

func (p *Presenter) RuntimeDependencies() []gemspec.Dependency {
	return p.record.RuntimeDependencies()
}

// SigningKey is the private key path, "" when unset.
func (p *Presenter) SigningKey() string {
	if p.record.SigningKey == "" {
		return ""
	}
	return filepath.Clean(p.record.SigningKey)
}

// SourcePath is the installed gem directory.
func (p *Presenter) SourcePath() string { return p.record.FullGemPath() }

func (p *Presenter) SourceURL() string { return p.metadata("source_url") }

func (p *Presenter) Summary() string { return p.record.Summary }

// Version parses the record's version. An absent version is 0.0.0, and so is
// one Parse rejects, such as "7.0.8.1"; VersionString keeps those readable.
func (p *Presenter) Version() version.Version {
	v, err := version.Parse(p.record.Version)
	if err != nil {
		log.Debug("presenter: %s has unparseable version %q: %v", p.record.Name, p.record.Version, err)
		return version.Version{}
	}
	return v
}

// VersionString is the version as displayed: normalized when it parses,
// otherwise the record's own string.
func (p *Presenter) VersionString() string {
	if _, err := version.Parse(p.record.Version); err != nil {
		return strings.TrimSpace(p.record.Version)
	}
	return p.Version().String()
}

func (p *Presenter) VersionsURL() string { return p.metadata("versions_url") }

// FieldValue is one rendered view.
type FieldValue struct {
	Name  string
	Value string
}

var views = []struct {
	name  string
	value func(*Presenter) string
}{
	{"name", (*Presenter).Name},
	{"version", (*Presenter).VersionString},
	{"label", (*Presenter).Label},
	{"summary", (*Presenter).Summary},
	{"authors", func(p *Presenter) string { return strings.Join(p.Authors(), ", ") }},
	{"emails", func(p *Presenter) string { return strings.Join(p.Emails(), ", ") }},
	{"license", (*Presenter).License},
	{"homepage_url", (*Presenter).HomepageURL},
	{"documentation_url", (*Presenter).DocumentationURL},
	{"funding_url", (*Presenter).FundingURL},
	{"issues_url", (*Presenter).IssuesURL},
	{"source_url", (*Presenter).SourceURL},
	{"versions_url", (*Presenter).VersionsURL},
	{"allowed_push_host", (*Presenter).AllowedPushHost},
	{"allowed_push_key", (*Presenter).AllowedPushKey},
	{"rubygems_mfa", func(p *Presenter) string { return p.metadata("rubygems_mfa") }},
	{"platform", (*Presenter).Platform},
	{"bindir", (*Presenter).Bindir},
	{"executables", func(p *Presenter) string { return strings.Join(p.Executables(), ", ") }},
	{"require_paths", func(p *Presenter) string { return strings.Join(p.RequirePaths(), ", ") }},
	{"required_ruby_version", func(p *Presenter) string { return p.RequiredRubyVersion().String() }},
	{"runtime_dependencies", func(p *Presenter) string {
		deps := p.RuntimeDependencies()
		parts := make([]string, len(deps))
		for i, d := range deps {
			parts[i] = d.String()
		}
		return strings.Join(parts, ", ")
	}},
	{"signing_key", (*Presenter).SigningKey},
	{"certificate_chain", func(p *Presenter) string { return strings.Join(p.CertificateChain(), ", ") }},
	{"named_version", (*Presenter).NamedVersion},
	{"labeled_version", (*Presenter).LabeledVersion},
	{"labeled_summary", (*Presenter).LabeledSummary},
	{"banner", (*Presenter).Banner},
	{"package_name", (*Presenter).PackageName},
	{"package_path", (*Presenter).PackagePath},
	{"source_path", (*Presenter).SourcePath},
}

// Fields renders every view in display order.
func (p *Presenter) Fields() []FieldValue {
	out := make([]FieldValue, len(views))
	for i, v := range views {
		out[i] = FieldValue{Name: v.name, Value: v.value(p)}
	}
	return out
}

// Field renders a single view by name.
func (p *Presenter) Field(name string) (string, bool) {
	for _, v := range views {
		if v.name == name {
			return v.value(p), true
		}
	}
	return "", false
}

// list copies s so callers cannot reach into the record; nil becomes empty.
func list(s []string) []string {
	if s == nil {
		return []string{}
	}
	return slices.Clone(s)
}
