// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package plan

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

// Format is a plan serialisation format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatHCL  Format = "hcl"
)

// ParseFormat accepts json, yaml (or yml) and hcl.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "hcl":
		return FormatHCL, nil
	}
	return "", fmt.Errorf("unknown plan format %q: must be 'json', 'yaml' or 'hcl'", s)
}

// Extension returns the file extension for the format, without the dot.
func (f Format) Extension() string {
	return string(f)
}

// Encode writes p to w. Output is byte-identical for identical plans.
func Encode(w io.Writer, p *BuildPlan, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(p); err != nil {
			return err
		}
		return enc.Close()
	case FormatHCL:
		_, err := w.Write(encodeHCL(p))
		return err
	}
	return fmt.Errorf("unknown plan format %q", f)
}

// encodeHCL renders the plan as one `module` block per module, in build order.
func encodeHCL(p *BuildPlan) []byte {
	f := hclwrite.NewEmptyFile()
	root := f.Body()
	if p.Target != "" {
		root.SetAttributeValue("target", cty.StringVal(p.Target))
	}
	root.SetAttributeValue("order", stringList(p.Order()))

	for _, m := range p.Modules {
		root.AppendNewline()
		block := root.AppendNewBlock("module", []string{m.Name})
		body := block.Body()
		body.SetAttributeValue("kind", cty.StringVal(m.Kind))
		body.SetAttributeValue("pch_usage", cty.StringVal(m.PCHUsage))

		var public, private []string
		for _, d := range m.Dependencies {
			if d.Visibility == "public" {
				public = append(public, d.Module)
			} else {
				private = append(private, d.Module)
			}
		}
		body.SetAttributeValue("public_dependencies", stringList(public))
		body.SetAttributeValue("private_dependencies", stringList(private))
		body.SetAttributeValue("visible_modules", stringList(m.VisibleModules))
		body.SetAttributeValue("include_paths", stringList(m.IncludePaths))
		body.SetAttributeValue("link_modules", stringList(m.LinkModules))
		body.SetAttributeValue("dynamically_loaded", stringList(m.DynamicallyLoaded))
	}
	return f.Bytes()
}

func stringList(in []string) cty.Value {
	if len(in) == 0 {
		return cty.ListValEmpty(cty.String)
	}
	vals := make([]cty.Value, len(in))
	for i, s := range in {
		vals[i] = cty.StringVal(s)
	}
	return cty.ListVal(vals)
}
