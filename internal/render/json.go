// ABOUTME: JSON encoding of a presenter using easyjson's jwriter
// ABOUTME: Lists stay arrays, metadata stays an object, rubygems_mfa is a boolean

package render

import (
	"slices"

	"github.com/mailru/easyjson/jwriter"

	"github.com/mauromedda/spek/internal/spek"
)

// JSON encodes every presenter view as one object.
func JSON(p *spek.Presenter) ([]byte, error) {
	w := &jwriter.Writer{NoEscapeHTML: true}
	o := object{w: w}

	w.RawByte('{')
	o.str("name", p.Name())
	o.str("version", p.VersionString())
	o.str("label", p.Label())
	o.str("summary", p.Summary())
	o.strs("authors", p.Authors())
	o.strs("emails", p.Emails())
	o.str("license", p.License())
	o.str("homepage_url", p.HomepageURL())
	o.str("documentation_url", p.DocumentationURL())
	o.str("funding_url", p.FundingURL())
	o.str("issues_url", p.IssuesURL())
	o.str("source_url", p.SourceURL())
	o.str("versions_url", p.VersionsURL())
	o.str("allowed_push_host", p.AllowedPushHost())
	o.str("allowed_push_key", p.AllowedPushKey())
	o.key("rubygems_mfa")
	w.Bool(p.RubygemsMFA())
	o.str("platform", p.Platform())
	o.str("bindir", p.Bindir())
	o.strs("executables", p.Executables())
	o.strs("extra_rdoc_files", p.ExtraRdocFiles())
	o.strs("files", p.Files())
	o.strs("require_paths", p.RequirePaths())
	o.str("required_ruby_version", p.RequiredRubyVersion().String())

	o.key("runtime_dependencies")
	w.RawByte('[')
	for i, d := range p.RuntimeDependencies() {
		if i > 0 {
			w.RawByte(',')
		}
		w.RawString(`{"name":`)
		w.String(d.Name)
		w.RawString(`,"requirement":`)
		w.String(d.Requirement.String())
		w.RawByte('}')
	}
	w.RawByte(']')

	o.key("metadata")
	meta := p.Metadata()
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	w.RawByte('{')
	for i, k := range keys {
		if i > 0 {
			w.RawByte(',')
		}
		w.String(k)
		w.RawByte(':')
		w.String(meta[k])
	}
	w.RawByte('}')

	o.str("signing_key", p.SigningKey())
	o.strs("certificate_chain", p.CertificateChain())
	o.str("named_version", p.NamedVersion())
	o.str("labeled_version", p.LabeledVersion())
	o.str("labeled_summary", p.LabeledSummary())
	o.str("banner", p.Banner())
	o.str("package_name", p.PackageName())
	o.str("package_path", p.PackagePath())
	o.str("source_path", p.SourcePath())
	w.RawByte('}')

	return w.BuildBytes()
}

// object tracks comma placement between members.
type object struct {
	w       *jwriter.Writer
	started bool
}

func (o *object) key(k string) {
	if o.started {
		o.w.RawByte(',')
	}
	o.started = true
	o.w.String(k)
	o.w.RawByte(':')
}

func (o *object) str(k, v string) {
	o.key(k)
	o.w.String(v)
}

func (o *object) strs(k string, vs []string) {
	o.key(k)
	o.w.RawByte('[')
	for i, v := range vs {
		if i > 0 {
			o.w.RawByte(',')
		}
		o.w.String(v)
	}
	o.w.RawByte(']')
}
