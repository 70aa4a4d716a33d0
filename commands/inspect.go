package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/lex00/pakman/api"
	"github.com/lex00/pakman/args"
	"github.com/lex00/pakman/errs"
	"gopkg.in/yaml.v3"
)

const inspectDoc = `Displays recipe attributes, like name, version and options.

Works with a local folder or pakfile.yaml, and with references of packages
in editable mode. Attributes may be nested: -a options.shared.`

// Inspect prints recipe attributes.
func (c *Commands) Inspect(ctx context.Context, argv []string) (any, error) {
	p := newParser("inspect <path_or_reference>", inspectDoc)
	p.command.Args = positionals([]string{"path_or_reference"})
	p.bind(
		args.Spec{Name: "attribute", Short: "a", Optional: true, Usage: `The attribute to be displayed, e.g. "name"`},
		args.Spec{Name: "remote", Short: "r", Policy: args.PolicyOnce, Usage: "Look in the specified remote server"},
		args.Spec{Name: "json", Short: "j", Policy: args.PolicyOnce, Usage: "JSON file path where the inspect information will be written"},
		args.Spec{Name: "raw", Policy: args.PolicyOnce, Usage: "Print just the value of the requested attribute"},
		args.Spec{Name: "format", Policy: args.PolicyOnce, Default: "text", Usage: "Output format: text or yaml"},
	)

	var result *api.InspectResult
	err := p.run(ctx, c.Out, argv, func(pos []string) error {
		v := p.values
		raw, jsonPath := v.String("raw"), v.String("json")
		attributes := v.Strings("attribute")
		if raw != "" && len(attributes) > 0 {
			return errs.Domain("Argument '--raw' is incompatible with '-a'")
		}
		if raw != "" && jsonPath != "" {
			return errs.Domain("Argument '--raw' is incompatible with '--json'")
		}
		format := v.String("format")
		if format != "text" && format != "yaml" {
			return errs.Usagef("argument --format: invalid choice: '%s' (choose from 'text', 'yaml')", format)
		}
		if raw != "" {
			attributes = []string{raw}
		}

		var err error
		result, err = c.API.Inspect(ctx, pos[0], api.InspectOpts{
			Attributes: attributes,
			Remote:     v.String("remote"),
			Quiet:      raw != "",
		})
		if err != nil {
			return err
		}

		switch {
		case raw != "":
			c.Out.Write(display(result.Attributes[0].Value))
		case format == "yaml":
			out, err := inspectYAML(result)
			if err != nil {
				return err
			}
			c.Out.Write(out)
		default:
			for _, a := range result.Attributes {
				if m, ok := a.Value.(map[string]any); ok {
					c.Out.Writeln(a.Name + ":")
					keys := make([]string, 0, len(m))
					for k := range m {
						keys = append(keys, k)
					}
					sort.Strings(keys)
					for _, k := range keys {
						c.Out.Writeln(fmt.Sprintf("    %s: %s", k, display(m[k])))
					}
					continue
				}
				c.Out.Writeln(fmt.Sprintf("%s: %s", a.Name, display(a.Value)))
			}
		}

		if jsonPath != "" {
			m := result.Map()
			return writeJSON(c, jsonPath, &m, nil)
		}
		return nil
	})
	return result, err
}

// display renders an attribute value; undefined values print as None.
func display(v any) string {
	switch t := v.(type) {
	case nil:
		return "None"
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = display(e)
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + "=" + display(t[k])
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(t)
	}
}

// inspectYAML renders the attributes as a YAML mapping in request order.
func inspectYAML(r *api.InspectResult) (string, error) {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	for _, a := range r.Attributes {
		var value yaml.Node
		if err := value.Encode(a.Value); err != nil {
			return "", fmt.Errorf("failed to encode %s: %w", a.Name, err)
		}
		doc.Content = append(doc.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: a.Name}, &value)
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
