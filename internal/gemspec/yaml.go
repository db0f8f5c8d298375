// ABOUTME: Reader for the YAML specification format written by `gem specification --yaml`
// ABOUTME: Walks yaml.Node trees so Ruby object tags (!ruby/object:...) need no registration

package gemspec

import (
	"fmt"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// ParseYAML reads a YAML-serialized specification.
func ParseYAML(path string, src []byte) (*Specification, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return nil, &ParseError{Path: path, Msg: err.Error()}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, &ParseError{Path: path, Msg: "expected a specification mapping"}
	}

	spec := New()
	spec.LoadedFrom = path
	root := doc.Content[0]

	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i].Value, root.Content[i+1]
		switch key {
		case "name":
			spec.Name = scalar(val)
		case "version":
			raw := scalar(val)
			if val.Kind == yaml.MappingNode {
				raw = scalar(mapGet(val, "version"))
			}
			spec.Version = raw
		case "homepage":
			spec.Homepage = scalar(val)
		case "summary":
			spec.Summary = scalar(val)
		case "description":
			spec.Description = scalar(val)
		case "bindir":
			spec.Bindir = scalar(val)
		case "signing_key":
			spec.SigningKey = scalar(val)
		case "platform":
			spec.Platform = scalar(val)
		case "authors":
			spec.Authors = strs(val)
		case "email":
			spec.Emails = strs(val)
		case "licenses":
			spec.Licenses = strs(val)
		case "files":
			spec.Files = strs(val)
		case "executables":
			spec.Executables = strs(val)
		case "extra_rdoc_files":
			spec.ExtraRdocFiles = strs(val)
		case "require_paths":
			spec.RequirePaths = strs(val)
		case "cert_chain":
			spec.CertChain = strs(val)
		case "metadata":
			if val.Kind == yaml.MappingNode {
				for j := 0; j+1 < len(val.Content); j += 2 {
					spec.Metadata[val.Content[j].Value] = scalar(val.Content[j+1])
				}
			}
		case "required_ruby_version":
			spec.RequiredRubyVersion = requirement(val)
		case "dependencies":
			deps, err := dependencies(val)
			if err != nil {
				return nil, &ParseError{Path: path, Line: val.Line, Msg: err.Error()}
			}
			spec.Dependencies = deps
		}
	}
	return spec, nil
}

func scalar(n *yaml.Node) string {
	if n == nil || n.Kind != yaml.ScalarNode || n.Tag == "!!null" {
		return ""
	}
	return norm.NFC.String(n.Value)
}

func strs(n *yaml.Node) []string {
	out := []string{}
	switch n.Kind {
	case yaml.SequenceNode:
		for _, item := range n.Content {
			out = append(out, scalar(item))
		}
	case yaml.ScalarNode:
		if s := scalar(n); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func mapGet(n *yaml.Node, key string) *yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

// requirement decodes a Gem::Requirement: requirements is a list of
// [operator, Gem::Version] pairs.
func requirement(n *yaml.Node) Requirement {
	reqs := mapGet(n, "requirements")
	if reqs == nil || reqs.Kind != yaml.SequenceNode {
		return nil
	}

	var out Requirement
	for _, pair := range reqs.Content {
		if pair.Kind != yaml.SequenceNode || len(pair.Content) != 2 {
			continue
		}
		op := scalar(pair.Content[0])
		ver := scalar(pair.Content[1])
		if pair.Content[1].Kind == yaml.MappingNode {
			ver = scalar(mapGet(pair.Content[1], "version"))
		}
		c := Constraint{Op: op, Version: ver}
		if c.String() == DefaultRequirement {
			continue
		}
		out = append(out, c)
	}
	return out
}

func dependencies(n *yaml.Node) ([]Dependency, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, nil
	}

	var deps []Dependency
	for _, item := range n.Content {
		name := scalar(mapGet(item, "name"))
		if name == "" {
			return nil, fmt.Errorf("dependency without a name")
		}
		typ := Runtime
		if scalar(mapGet(item, "type")) == ":development" {
			typ = Development
		}
		deps = append(deps, Dependency{
			Name:        name,
			Requirement: requirement(mapGet(item, "requirement")),
			Type:        typ,
		})
	}
	return deps, nil
}
