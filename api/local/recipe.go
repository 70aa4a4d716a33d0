package local

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lex00/pakman/errs"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// RecipeFilename is the recipe file looked up inside a folder.
const RecipeFilename = "pakfile.yaml"

// DefaultAttributes are shown by Inspect when no attribute is requested.
var DefaultAttributes = []string{
	"name", "version", "url", "license", "author", "description", "topics",
	"generators", "settings", "options", "default_options",
}

// knownSettings are the settings a recipe may declare.
var knownSettings = map[string]bool{
	"os":               true,
	"os.version":       true,
	"arch":             true,
	"compiler":         true,
	"compiler.version": true,
	"build_type":       true,
	"os_build":         true,
	"arch_build":       true,
	"cppstd":           true,
}

// Recipe is a pakfile.yaml.
type Recipe struct {
	Name               string           `yaml:"name,omitempty"`
	Version            string           `yaml:"version,omitempty"`
	URL                string           `yaml:"url,omitempty"`
	License            string           `yaml:"license,omitempty"`
	Author             string           `yaml:"author,omitempty"`
	Description        string           `yaml:"description,omitempty"`
	Topics             []string         `yaml:"topics,omitempty"`
	Generators         []string         `yaml:"generators,omitempty"`
	Settings           []string         `yaml:"settings,omitempty"`
	Options            map[string][]any `yaml:"options,omitempty"`
	DefaultOptions     map[string]any   `yaml:"default_options,omitempty"`
	Requires           []string         `yaml:"requires,omitempty"`
	SystemRequirements []string         `yaml:"system_requirements,omitempty"`
	Source             []string         `yaml:"source,omitempty"`
	// BuildSystem is "meson" or "none". Empty means meson when the source
	// folder has a meson.build.
	BuildSystem string   `yaml:"build_system,omitempty"`
	Libs        []string `yaml:"libs,omitempty"`

	// Extra keeps attributes pakman does not interpret, for inspect.
	Extra map[string]any `yaml:",inline"`

	path string
}

// LoadRecipe reads a recipe from a file, or from RecipeFilename inside a folder.
func LoadRecipe(path string) (*Recipe, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errs.Domainf("%s not found in %s", RecipeFilename, path)
		}
		return nil, err
	}
	if info.IsDir() {
		path = filepath.Join(path, RecipeFilename)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errs.Domainf("%s not found in %s", RecipeFilename, filepath.Dir(path))
		}
		return nil, err
	}

	var r Recipe
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, errs.Wrapf(errs.KindDomain, err, "error parsing %s", path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	r.path = abs
	return &r, nil
}

// Path is the absolute recipe file path.
func (r *Recipe) Path() string { return r.path }

// Dir is the folder holding the recipe file.
func (r *Recipe) Dir() string { return filepath.Dir(r.path) }

// Validate checks declared settings and default option values.
func (r *Recipe) Validate() error {
	for _, s := range r.Settings {
		if !knownSettings[s] {
			return errs.InvalidConfigurationf("'settings.%s' doesn't exist", s)
		}
	}
	names := make([]string, 0, len(r.DefaultOptions))
	for k := range r.DefaultOptions {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		if err := r.checkOption(k, r.DefaultOptions[k]); err != nil {
			return err
		}
	}
	return nil
}

func (r *Recipe) checkOption(name string, value any) error {
	allowed, ok := r.Options[name]
	if !ok {
		return errs.InvalidConfigurationf("option '%s' doesn't exist", name)
	}
	if len(allowed) == 0 {
		return nil
	}
	got := fmt.Sprint(value)
	for _, a := range allowed {
		if strings.EqualFold(fmt.Sprint(a), got) {
			return nil
		}
	}
	return errs.InvalidConfigurationf("'%s' is not a valid 'options.%s' value. Possible values are %v", got, name, allowed)
}

// Attributes returns every attribute keyed by name. Undeclared known
// attributes are present with a nil value.
func (r *Recipe) Attributes() map[string]any {
	attrs := make(map[string]any, len(r.Extra)+16)
	for k, v := range r.Extra {
		attrs[k] = v
	}
	str := func(s string) any {
		if s == "" {
			return nil
		}
		return s
	}
	list := func(l []string) any {
		if len(l) == 0 {
			return nil
		}
		return l
	}
	attrs["name"] = str(r.Name)
	attrs["version"] = str(r.Version)
	attrs["url"] = str(r.URL)
	attrs["license"] = str(r.License)
	attrs["author"] = str(r.Author)
	attrs["description"] = str(r.Description)
	attrs["topics"] = list(r.Topics)
	attrs["generators"] = list(r.Generators)
	attrs["settings"] = list(r.Settings)
	attrs["requires"] = list(r.Requires)
	attrs["system_requirements"] = list(r.SystemRequirements)
	attrs["libs"] = list(r.Libs)
	attrs["build_system"] = str(r.BuildSystem)
	if len(r.Options) > 0 {
		attrs["options"] = r.Options
	} else {
		attrs["options"] = nil
	}
	if len(r.DefaultOptions) > 0 {
		attrs["default_options"] = r.DefaultOptions
	} else {
		attrs["default_options"] = nil
	}
	return attrs
}

// Select resolves attribute paths such as "name" or "options.shared". A
// missing attribute resolves to nil.
func (r *Recipe) Select(paths []string) ([]any, error) {
	data, err := json.Marshal(r.Attributes())
	if err != nil {
		return nil, fmt.Errorf("failed to encode recipe attributes: %w", err)
	}
	out := make([]any, len(paths))
	for i, p := range paths {
		res := gjson.GetBytes(data, p)
		if res.Exists() {
			out[i] = res.Value()
		}
	}
	return out, nil
}
