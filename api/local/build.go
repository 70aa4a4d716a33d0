package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lex00/pakman/api"
	"github.com/lex00/pakman/errs"
	"github.com/lex00/pakman/pkgconfig"
	"github.com/lex00/pakman/reference"
	"github.com/lex00/pakman/toolchain/meson"
	"github.com/sirupsen/logrus"
)

// GeneratorPkgConfig writes a pkg-config file for the built package.
const GeneratorPkgConfig = "pkg_config"

// meson buildtype per build_type setting.
var mesonBuildTypes = map[string]string{
	"Debug":          "debug",
	"Release":        "release",
	"RelWithDebInfo": "debugoptimized",
	"MinSizeRel":     "minsize",
}

// Build runs the build step of the recipe at path.
//
// Meson projects are configured and compiled in the build folder. When the
// pkg_config generator is requested, <name>.pc is written to the install
// folder. On a failed build the returned info is still filled in.
func (a *API) Build(ctx context.Context, path string, opts api.BuildOpts) (*api.InstallInfo, error) {
	if err := checkRemote(opts.Remote); err != nil {
		return nil, err
	}
	r, err := LoadRecipe(path)
	if err != nil {
		return nil, err
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if opts.Name != "" && r.Name != "" && opts.Name != r.Name {
		return nil, errs.Domainf("Package recipe with name %s!=%s", opts.Name, r.Name)
	}
	if opts.Version != "" && r.Version != "" && opts.Version != r.Version {
		return nil, errs.Domainf("Package recipe with version %s!=%s", opts.Version, r.Version)
	}
	name, version := first(r.Name, opts.Name), first(r.Version, opts.Version)

	settings, options, err := a.hostProfile(r, name, opts.Host)
	if err != nil {
		return nil, err
	}
	if err := a.checkSystemRequirements(r); err != nil {
		return nil, err
	}
	if err := a.checkRequires(ctx, r); err != nil {
		return nil, err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	buildFolder := folder(cwd, opts.BuildFolder, cwd)
	sourceFolder := folder(cwd, opts.SourceFolder, r.Dir())
	installFolder := folder(cwd, opts.InstallFolder, buildFolder)
	packageFolder := folder(cwd, opts.PackageFolder, filepath.Join(buildFolder, "package"))

	generators := api.NewStringSet(r.Generators...)
	for _, g := range opts.Generators {
		generators.Add(g)
	}

	pkg := api.PackageInfo{ID: "local", Folder: packageFolder, Generators: generators}
	info := &api.InstallInfo{Installed: []api.InstalledRecipe{{
		Recipe:   recipeInfo(r, name, version, opts.User, opts.Channel),
		Packages: []api.PackageInfo{pkg},
	}}}
	fail := func(err error) (*api.InstallInfo, error) {
		info.Error = true
		info.Installed[0].Packages[0].Error = errs.Message(err)
		return info, err
	}

	log := a.log.WithFields(logrus.Fields{"recipe": r.Path(), "build_folder": buildFolder})
	if err := os.MkdirAll(installFolder, 0755); err != nil {
		return fail(err)
	}

	useMeson, err := usesMeson(r, sourceFolder)
	if err != nil {
		return nil, err
	}
	if useMeson {
		if err := writeNativeFile(installFolder, settings, options, r.DefaultOptions); err != nil {
			return fail(err)
		}
		m := &meson.Meson{
			Runner:           a.NewRunner(buildFolder),
			Out:              a.out,
			BuildFolder:      buildFolder,
			SourceFolder:     sourceFolder,
			GeneratorsFolder: installFolder,
			PackageFolder:    packageFolder,
			Jobs:             a.cfg.CPUCount(),
		}
		log.WithField("jobs", m.Jobs).Debug("running meson")
		if err := m.Configure(ctx, nil); err != nil {
			return fail(err)
		}
		if err := m.Build(ctx, ""); err != nil {
			return fail(err)
		}
	}

	if generators.Has(GeneratorPkgConfig) {
		if name == "" {
			return fail(errs.Domainf("%s generator needs a recipe name", GeneratorPkgConfig))
		}
		pcFile := filepath.Join(installFolder, name+".pc")
		if err := writePkgConfig(pcFile, r, name, version, packageFolder); err != nil {
			return fail(err)
		}
		a.out.Info("Generator %s created %s", GeneratorPkgConfig, filepath.Base(pcFile))
	}

	info.Installed[0].Packages[0].Built = true
	log.Debug("build finished")
	return info, nil
}

// Source runs the recipe source commands in sourceFolder.
func (a *API) Source(ctx context.Context, path, sourceFolder string) error {
	r, err := LoadRecipe(path)
	if err != nil {
		return err
	}
	if err := r.Validate(); err != nil {
		return err
	}
	if err := a.checkSystemRequirements(r); err != nil {
		return err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	dir := folder(cwd, sourceFolder, cwd)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	a.out.Info("Configuring sources in %s", dir)
	runner := a.NewRunner(dir)
	for _, c := range r.Source {
		a.log.WithField("command", c).Debug("running source command")
		if err := runner.Run(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (a *API) checkSystemRequirements(r *Recipe) error {
	for _, tool := range r.SystemRequirements {
		if !a.LookPath(tool) {
			return errs.InvalidSystemRequirementsf("'%s' is required by %s but was not found", tool, RecipeFilename)
		}
	}
	return nil
}

// checkRequires accepts only requirements that are in editable mode.
func (a *API) checkRequires(ctx context.Context, r *Recipe) error {
	for _, req := range r.Requires {
		_, ok, err := a.lookupEditable(ctx, req)
		if err != nil {
			return err
		}
		if !ok {
			return errs.Domainf("%s: requirement cannot be resolved without a package cache", req)
		}
	}
	return nil
}

// hostProfile validates the host settings and options. Options scoped to
// another package ("pkg:key=value") are ignored.
func (a *API) hostProfile(r *Recipe, name string, host api.ProfileData) (settings, options map[string]string, err error) {
	if len(host.Profiles) > 0 {
		return nil, nil, unavailable("profiles")
	}
	settings, err = assignments("setting", host.Settings, name)
	if err != nil {
		return nil, nil, err
	}
	for k := range settings {
		if !knownSettings[k] {
			return nil, nil, errs.InvalidConfigurationf("'settings.%s' doesn't exist", k)
		}
	}
	options, err = assignments("option", host.Options, name)
	if err != nil {
		return nil, nil, err
	}
	for _, k := range sortedKeys(options) {
		if err := r.checkOption(k, options[k]); err != nil {
			return nil, nil, err
		}
	}
	return settings, options, nil
}

func assignments(kind string, items []string, pkg string) (map[string]string, error) {
	out := make(map[string]string, len(items))
	for _, item := range items {
		key, value, ok := strings.Cut(item, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, errs.Domainf("invalid %s '%s', expected key=value", kind, item)
		}
		if scope, rest, scoped := strings.Cut(key, ":"); scoped {
			if scope != pkg {
				continue
			}
			key = rest
		}
		out[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return out, nil
}

func usesMeson(r *Recipe, sourceFolder string) (bool, error) {
	switch r.BuildSystem {
	case "meson":
		return true, nil
	case "none":
		return false, nil
	case "":
		_, err := os.Stat(filepath.Join(sourceFolder, "meson.build"))
		return err == nil, nil
	default:
		return false, errs.InvalidConfigurationf("unsupported build_system '%s'", r.BuildSystem)
	}
}

// writeNativeFile writes the meson machine file for the host profile.
func writeNativeFile(dir string, settings, options map[string]string, defaults map[string]any) error {
	var sb strings.Builder
	sb.WriteString("[built-in options]\n")
	if bt, ok := mesonBuildTypes[settings["build_type"]]; ok {
		fmt.Fprintf(&sb, "buildtype = '%s'\n", bt)
	}
	shared, ok := options["shared"]
	if !ok {
		if v, has := defaults["shared"]; has {
			shared, ok = fmt.Sprint(v), true
		}
	}
	if ok {
		lib := "static"
		if strings.EqualFold(shared, "true") {
			lib = "shared"
		}
		fmt.Fprintf(&sb, "default_library = '%s'\n", lib)
	}
	return os.WriteFile(filepath.Join(dir, meson.NativeFilename), []byte(sb.String()), 0644)
}

func writePkgConfig(path string, r *Recipe, name, version, packageFolder string) error {
	pc := pkgconfig.New()
	pc.SetVariable("prefix", packageFolder)
	pc.SetVariable("libdir", "${prefix}/lib")
	pc.SetVariable("includedir", "${prefix}/include")

	libs := []string{"-L${libdir}"}
	for _, l := range r.Libs {
		libs = append(libs, "-l"+l)
	}
	var requires []string
	for _, req := range r.Requires {
		if ref, err := reference.ParseRecipe(req); err == nil {
			requires = append(requires, ref.Name)
		}
	}
	for _, kv := range [][2]string{
		{"name", name},
		{"version", version},
		{"description", first(r.Description, name+" library")},
		{"url", r.URL},
		{"requires", strings.Join(requires, ", ")},
		{"cflags", "-I${includedir}"},
		{"libs", strings.Join(libs, " ")},
	} {
		if _, err := pc.SetKeyword(kv[0], kv[1]); err != nil {
			return err
		}
	}

	content, err := pc.Content()
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0644)
}

func recipeInfo(r *Recipe, name, version, user, channel string) api.RecipeInfo {
	info := api.RecipeInfo{Name: name, Version: version, User: user, Channel: channel, ID: r.Path()}
	if name != "" && version != "" {
		info.ID = reference.Recipe{Name: name, Version: version, User: user, Channel: channel}.String()
	}
	return info
}

func folder(cwd, value, def string) string {
	if value == "" {
		return def
	}
	if filepath.IsAbs(value) {
		return value
	}
	return filepath.Join(cwd, value)
}

func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
