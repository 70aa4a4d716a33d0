// Package local implements the pakman collaborator for recipes on disk.
//
// There is no package cache and no remote: operations that need one fail
// with a domain error. Editable packages are kept in the home database so
// references to them resolve to their folders.
package local

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/lex00/pakman/api"
	"github.com/lex00/pakman/config"
	"github.com/lex00/pakman/errs"
	"github.com/lex00/pakman/execx"
	"github.com/lex00/pakman/output"
	"github.com/lex00/pakman/reference"
	"github.com/lex00/pakman/store"
	"github.com/sirupsen/logrus"
)

// API is the local collaborator.
type API struct {
	cfg *config.Config
	out output.Output
	log logrus.FieldLogger

	// NewRunner returns the command runner used in a working directory.
	NewRunner func(dir string) execx.Commander
	// LookPath reports whether a tool is available.
	LookPath func(tool string) bool
}

var _ api.API = (*API)(nil)

// New returns a local collaborator. Tool output goes to out.
func New(cfg *config.Config, out output.Output, log logrus.FieldLogger) *API {
	sink := output.Writer(out)
	return &API{
		cfg: cfg,
		out: out,
		log: log,
		NewRunner: func(dir string) execx.Commander {
			return &execx.Runner{Dir: dir, Stdout: sink, Stderr: sink}
		},
		LookPath: execx.LookPath,
	}
}

func unavailable(op string) error {
	return errs.Domainf("%s: not available without a package cache", op)
}

func checkRemote(remote string) error {
	if remote != "" {
		return errs.Domainf("remote '%s' is not configured", remote)
	}
	return nil
}

// editableKey normalizes a reference for the editables database.
func editableKey(ref string) (string, error) {
	r, err := reference.ParseRecipe(ref)
	if err != nil {
		return "", err
	}
	r.Revision = ""
	return r.String(), nil
}

func (a *API) withEditables(ctx context.Context, fn func(*store.Store) error) error {
	st, err := store.Open(ctx, a.cfg.EditablesDB())
	if err != nil {
		return errs.Wrap(errs.KindDomain, err, "failed to open editable packages")
	}
	defer st.Close()
	return fn(st)
}

func (a *API) lookupEditable(ctx context.Context, ref string) (store.Editable, bool, error) {
	key, err := editableKey(ref)
	if err != nil {
		return store.Editable{}, false, err
	}
	var (
		e  store.Editable
		ok bool
	)
	err = a.withEditables(ctx, func(st *store.Store) error {
		e, ok = st.Get(key)
		return nil
	})
	return e, ok, err
}

// EditableAdd puts reference in editable mode, consumed from path.
func (a *API) EditableAdd(ctx context.Context, path, ref, cwd string) error {
	parsed, err := reference.ParseRecipe(ref)
	if err != nil {
		return err
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(cwd, path)
	}
	r, err := LoadRecipe(path)
	if err != nil {
		return err
	}
	if (r.Name != "" && r.Name != parsed.Name) || (r.Version != "" && r.Version != parsed.Version) {
		return errs.Domainf("Name and version from reference (%s) and target %s (%s/%s) must match",
			ref, RecipeFilename, r.Name, r.Version)
	}
	key, _ := editableKey(ref)

	a.log.WithFields(logrus.Fields{"reference": key, "path": r.Dir()}).Debug("adding editable package")
	return a.withEditables(ctx, func(st *store.Store) error {
		return st.Add(ctx, store.Editable{Reference: key, Path: r.Dir()})
	})
}

// EditableRemove takes reference out of editable mode.
func (a *API) EditableRemove(ctx context.Context, ref string) (bool, error) {
	key, err := editableKey(ref)
	if err != nil {
		return false, err
	}
	var removed bool
	err = a.withEditables(ctx, func(st *store.Store) error {
		removed, err = st.Remove(ctx, key)
		return err
	})
	return removed, err
}

// EditableList returns the editable packages sorted by reference.
func (a *API) EditableList(ctx context.Context) ([]api.EditablePackage, error) {
	var out []api.EditablePackage
	err := a.withEditables(ctx, func(st *store.Store) error {
		for _, e := range st.List() {
			out = append(out, api.EditablePackage{Reference: e.Reference, Path: e.Path, Layout: e.Layout})
		}
		return nil
	})
	return out, err
}

// resolveRecipe returns the recipe path for a folder, file or editable reference.
func (a *API) resolveRecipe(ctx context.Context, pathOrRef string, quiet bool) (string, error) {
	if _, err := os.Stat(pathOrRef); err == nil {
		return pathOrRef, nil
	}
	if !reference.IsValid(pathOrRef) {
		return pathOrRef, nil
	}
	e, ok, err := a.lookupEditable(ctx, pathOrRef)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errs.Domainf("%s: recipe not found, only editable packages resolve without a package cache", pathOrRef)
	}
	if !quiet {
		a.out.Info("Using editable %s from %s", pathOrRef, e.Path)
	}
	return e.Path, nil
}

// Inspect loads a recipe and selects the requested attributes.
func (a *API) Inspect(ctx context.Context, pathOrRef string, opts api.InspectOpts) (*api.InspectResult, error) {
	if err := checkRemote(opts.Remote); err != nil {
		return nil, err
	}
	path, err := a.resolveRecipe(ctx, pathOrRef, opts.Quiet)
	if err != nil {
		return nil, err
	}
	r, err := LoadRecipe(path)
	if err != nil {
		return nil, err
	}

	names := opts.Attributes
	if len(names) == 0 {
		names = DefaultAttributes
	}
	values, err := r.Select(names)
	if err != nil {
		return nil, err
	}
	res := &api.InspectResult{Attributes: make([]api.Attribute, len(names))}
	for i, n := range names {
		res.Attributes[i] = api.Attribute{Name: n, Value: values[i]}
	}
	return res, nil
}

// GetPath lists a folder or reads a file of an editable package.
func (a *API) GetPath(ctx context.Context, opts api.GetOpts) (*api.GetResult, error) {
	if err := checkRemote(opts.Remote); err != nil {
		return nil, err
	}
	if opts.PackageID != "" {
		return nil, unavailable("package files")
	}
	e, ok, err := a.lookupEditable(ctx, opts.Reference)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.Domainf("%s: only editable packages can be read without a package cache", opts.Reference)
	}

	rel := opts.Path
	if rel == "" {
		rel = RecipeFilename
	}
	target := filepath.Join(e.Path, rel)
	if inside, err := filepath.Rel(e.Path, target); err != nil || strings.HasPrefix(inside, "..") {
		return nil, errs.Domainf("path '%s' is outside of %s", rel, opts.Reference)
	}

	info, err := os.Stat(target)
	if err != nil {
		return nil, errs.Domainf("the specified path doesn't exist: %s", rel)
	}
	res := &api.GetResult{Path: rel, IsDir: info.IsDir()}
	if res.IsDir {
		entries, err := os.ReadDir(target)
		if err != nil {
			return nil, err
		}
		for _, en := range entries {
			name := en.Name()
			if en.IsDir() {
				name += "/"
			}
			res.Entries = append(res.Entries, name)
		}
		return res, nil
	}
	data, err := os.ReadFile(target)
	if err != nil {
		return nil, err
	}
	res.Content = string(data)
	return res, nil
}

// Test needs the package under test in a cache.
func (a *API) Test(_ context.Context, _, _ string, opts api.TestOpts) error {
	if err := checkRemote(opts.Remote); err != nil {
		return err
	}
	return unavailable("test")
}

// Create exports into a cache.
func (a *API) Create(_ context.Context, _ string, opts api.CreateOpts) (*api.InstallInfo, error) {
	if err := checkRemote(opts.Remote); err != nil {
		return nil, err
	}
	return nil, unavailable("create")
}

// Download fetches from a remote into a cache.
func (a *API) Download(_ context.Context, opts api.DownloadOpts) error {
	if err := checkRemote(opts.Remote); err != nil {
		return err
	}
	return unavailable("download")
}

// Imports copies from dependency packages in a cache.
func (a *API) Imports(context.Context, string, api.ImportsOpts) error {
	return unavailable("imports")
}

// ImportsUndo removes files listed in an imports manifest.
func (a *API) ImportsUndo(context.Context, string) error {
	return unavailable("imports")
}

// Remove deletes from a cache.
func (a *API) Remove(_ context.Context, opts api.RemoveOpts) error {
	if err := checkRemote(opts.Remote); err != nil {
		return err
	}
	return unavailable("remove")
}

// RemoveSystemReqs clears cached system requirement results.
func (a *API) RemoveSystemReqs(context.Context, string) error {
	return unavailable("remove")
}

// RemoveSystemReqsByPattern clears cached system requirement results.
func (a *API) RemoveSystemReqsByPattern(context.Context, string) error {
	return unavailable("remove")
}

// RemoveLocks clears cache locks.
func (a *API) RemoveLocks(context.Context) error {
	return unavailable("remove")
}

// Upload sends cached packages to a remote.
func (a *API) Upload(_ context.Context, opts api.UploadOpts) (*api.UploadInfo, error) {
	if err := checkRemote(opts.Remote); err != nil {
		return nil, err
	}
	return nil, unavailable("upload")
}

// ExportPkg packages binaries into a cache.
func (a *API) ExportPkg(context.Context, string, api.ExportPkgOpts) (*api.InstallInfo, error) {
	return nil, unavailable("export-pkg")
}
