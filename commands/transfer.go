package commands

import (
	"context"

	"github.com/lex00/pakman/api"
	"github.com/lex00/pakman/args"
	"github.com/lex00/pakman/errs"
	"github.com/lex00/pakman/reference"
)

const downloadDoc = `Downloads recipe and binaries to the local cache, without using settings.

It works specifying the recipe reference and package id to be installed.
Not transitive, requirements of the specified reference will not be
retrieved. Only if a reference is specified, it will download all packages
from the specified remote.`

const uploadDoc = `Uploads a recipe and binary packages to a remote.

The remote is required. With --all the binary packages of the matching
recipes are uploaded too.`

const removeDoc = `Removes packages or binaries matching pattern from local cache or remote.

It can also be used to remove the temporary source or build folders in the
local cache. If no remote is specified, the removal will be done in the
local cache.`

const bothReferenceAndPackage = "Use a full package reference (preferred) or the `--package` command argument, but not both."

// Download fetches a recipe and its binaries.
func (c *Commands) Download(ctx context.Context, argv []string) (any, error) {
	p := newParser("download <reference>", downloadDoc)
	p.command.Args = positionals([]string{"reference"})
	p.bind(
		args.Spec{Name: "package", Short: "p", Usage: "Force install specified package ID (ignore settings/options) [DEPRECATED: use full reference instead]"},
		args.Spec{Name: "remote", Short: "r", Policy: args.PolicyOnce, Usage: "Look in the specified remote server"},
	)
	var recipeOnly bool
	p.flags().BoolVar(&recipeOnly, "recipe", false, "Downloads only the recipe")

	err := p.run(ctx, c.Out, argv, func(pos []string) error {
		opts := api.DownloadOpts{Remote: p.values.String("remote"), RecipeOnly: recipeOnly}
		packages := p.values.Strings("package")

		pref, err := reference.ParsePackage(pos[0])
		if err != nil {
			opts.Reference = pos[0]
			opts.Packages = packages
			if len(packages) > 0 {
				c.Out.Warning("Usage of `--package` argument is deprecated. Use a full reference instead: `pakman download [...] %s:%s`",
					pos[0], packages[0])
			}
		} else {
			if p.values.IsSet("package") {
				return errs.Domain(bothReferenceAndPackage)
			}
			opts.Reference = pref.Recipe.Full()
			opts.Packages = []string{packageWithRevision(pref)}
		}
		return c.API.Download(ctx, opts)
	})
	return nil, err
}

func packageWithRevision(p reference.Package) string {
	if p.Revision != "" {
		return p.PackageID + "#" + p.Revision
	}
	return p.PackageID
}

// Remove deletes recipes, packages or temporary folders.
func (c *Commands) Remove(ctx context.Context, argv []string) (any, error) {
	p := newParser("remove [pattern_or_reference]", removeDoc)
	p.command.Args = positionals(nil, "pattern_or_reference")
	p.bind(
		args.Spec{Name: "builds", Short: "b", Optional: true, Usage: "By default, remove all the build folders or select one, e.g. --builds=<package_id>"},
		args.Spec{Name: "packages", Short: "p", Optional: true, Usage: "Remove all packages of the specified reference if no specific package ID is provided, e.g. --packages=<package_id>"},
		args.Spec{Name: "query", Short: "q", Policy: args.PolicyOnce, Usage: "Packages query: 'os=Windows AND (arch=x86 OR compiler=gcc)'"},
		args.Spec{Name: "remote", Short: "r", Policy: args.PolicyOnce, Usage: "Will remove from the specified remote"},
	)
	var force, locks, outdated, src, systemReqs bool
	fs := p.flags()
	fs.BoolVarP(&force, "force", "f", false, "Remove without requesting a confirmation")
	fs.BoolVarP(&locks, "locks", "l", false, "Remove locks")
	fs.BoolVarP(&outdated, "outdated", "o", false, "Remove only outdated from recipe packages. This flag can only be used with a pattern or a reference")
	fs.BoolVarP(&src, "src", "s", false, "Remove source folders")
	fs.BoolVarP(&systemReqs, "system-reqs", "t", false, "Remove system_reqs folders")

	err := p.run(ctx, c.Out, argv, func(pos []string) error {
		v := p.values
		var pattern string
		if len(pos) > 0 {
			pattern = pos[0]
		}
		query := v.String("query")
		packages, builds := v.Strings("packages"), v.Strings("builds")

		if v.IsSet("packages") && query != "" {
			return errs.Domain("'-q' and '-p' parameters can't be used at the same time")
		}
		if v.IsSet("builds") && query != "" {
			return errs.Domain("'-q' and '-b' parameters can't be used at the same time")
		}
		if outdated && pattern == "" {
			return errs.Domain("'--outdated' argument can only be used with a reference")
		}

		switch {
		case locks:
			if pattern != "" {
				return errs.Domain("Specifying a pattern is not supported when removing locks")
			}
			if err := c.API.RemoveLocks(ctx); err != nil {
				return err
			}
			c.Out.Info("Cache locks removed")
			return nil
		case systemReqs:
			if len(packages) > 0 {
				return errs.Domain("'-t' and '-p' parameters can't be used at the same time")
			}
			if pattern == "" {
				return errs.Domain("Please specify a valid pattern or reference to be cleaned")
			}
			if reference.IsValid(pattern) {
				return c.API.RemoveSystemReqs(ctx, pattern)
			}
			return c.API.RemoveSystemReqsByPattern(ctx, pattern)
		case pattern == "":
			return errs.Domain(`Please specify a pattern to be removed ("*" for all)`)
		}

		if pref, err := reference.ParsePackage(pattern); err == nil {
			if len(packages) > 0 {
				return errs.Domain("Use package ID only as -p argument or reference, not both")
			}
			pattern = pref.Recipe.String()
			packages = []string{pref.PackageID}
		}
		return c.API.Remove(ctx, api.RemoveOpts{
			Pattern:  pattern,
			Query:    query,
			Packages: packages,
			Builds:   builds,
			Src:      src,
			Force:    force,
			Remote:   v.String("remote"),
			Outdated: outdated,
		})
	})
	return nil, err
}

// Upload sends recipes and packages to a remote.
func (c *Commands) Upload(ctx context.Context, argv []string) (any, error) {
	p := newParser("upload <pattern_or_reference>", uploadDoc)
	p.command.Args = positionals([]string{"pattern_or_reference"})
	p.bind(
		args.Spec{Name: "package", Short: "p", Policy: args.PolicyOnce, Usage: "Package ID [DEPRECATED: use full reference instead]"},
		args.Spec{Name: "query", Short: "q", Policy: args.PolicyOnce, Usage: "Only upload packages matching a specific query"},
		args.Spec{Name: "remote", Short: "r", Policy: args.PolicyOnce, Usage: "Upload to this specific remote"},
		args.Spec{Name: "retry", Policy: args.PolicyOnce, Usage: "In case of fail retries to upload again the specified times"},
		args.Spec{Name: "retry-wait", Policy: args.PolicyOnce, Usage: "Waits specified seconds before retry again"},
		args.Spec{Name: "no-overwrite", Policy: args.PolicyOnce, Usage: "Uploads package only if recipe is the same as the remote one: all or recipe"},
		args.Spec{Name: "json", Short: "j", Policy: args.PolicyOnce, Usage: "JSON file path where the upload information will be written"},
	)
	p.flags().Lookup("no-overwrite").NoOptDefVal = "all"
	var all, skipUpload, force, check, confirm, parallel bool
	fs := p.flags()
	fs.BoolVar(&all, "all", false, "Upload both package recipe and packages")
	fs.BoolVar(&skipUpload, "skip-upload", false, "Do not upload anything, just run the checks and the compression")
	fs.BoolVar(&force, "force", false, "Ignore checks before uploading the recipe: it will bypass missing fields in the scm attribute and it will override remote recipe with local regardless of recipe date")
	fs.BoolVar(&check, "check", false, "Perform an integrity check, using the manifests, before upload")
	fs.BoolVarP(&confirm, "confirm", "c", false, "Upload all matching recipes without confirmation")
	fs.BoolVar(&parallel, "parallel", false, "Upload files in parallel using multiple threads")

	var info *api.UploadInfo
	err := p.run(ctx, c.Out, argv, func(pos []string) error {
		v := p.values
		if v.String("remote") == "" {
			return errs.Usage("the following arguments are required: -r/--remote")
		}
		opts := api.UploadOpts{
			Query:          v.String("query"),
			Remote:         v.String("remote"),
			All:            all,
			Confirm:        confirm,
			IntegrityCheck: check,
			Parallel:       parallel,
		}

		pref, err := reference.ParsePackage(pos[0])
		if err != nil {
			opts.Pattern = pos[0]
			opts.PackageID = v.String("package")
			if opts.PackageID != "" {
				c.Out.Warning("Usage of `--package` argument is deprecated. Use a full reference instead: `pakman upload [...] %s:%s`",
					pos[0], opts.PackageID)
			}
		} else {
			opts.Pattern = pref.Recipe.String()
			opts.PackageID = packageWithRevision(pref)
			if v.IsSet("package") {
				return errs.Domain(bothReferenceAndPackage)
			}
			if opts.Query != "" {
				return errs.Domain("'--query' argument cannot be used together with full reference")
			}
		}

		noOverwrite := v.String("no_overwrite")
		switch noOverwrite {
		case "", "all", "recipe":
		default:
			return errs.Usagef("argument --no-overwrite: invalid choice: '%s' (choose from 'all', 'recipe')", noOverwrite)
		}
		if force && noOverwrite != "" {
			return errs.Domain("'--no-overwrite' argument cannot be used together with '--force'")
		}
		if force && skipUpload {
			return errs.Domain("'--skip-upload' argument cannot be used together with '--force'")
		}
		if noOverwrite != "" && skipUpload {
			return errs.Domain("'--skip-upload' argument cannot be used together with '--no-overwrite'")
		}
		switch {
		case force:
			opts.Policy = api.UploadPolicyForce
		case noOverwrite == "all":
			opts.Policy = api.UploadPolicyNoOverwrite
		case noOverwrite == "recipe":
			opts.Policy = api.UploadPolicyNoOverwriteRecipe
		case skipUpload:
			opts.Policy = api.UploadPolicySkip
		}

		if opts.Retry, err = optionalInt(p.values, "retry"); err != nil {
			return err
		}
		if opts.RetryWait, err = optionalInt(p.values, "retry_wait"); err != nil {
			return err
		}
		if parallel && c.Threads != nil {
			opts.Threads = c.Threads()
		}

		info, err = c.API.Upload(ctx, opts)
		return writeJSON(c, v.String("json"), info, err)
	})
	return info, err
}

func optionalInt(v *args.Parsed, dest string) (*int, error) {
	n, ok, err := v.Int(dest)
	if err != nil || !ok {
		return nil, err
	}
	return &n, nil
}
