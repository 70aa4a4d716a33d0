package commands

import (
	"context"
	"fmt"

	"github.com/lex00/pakman/api"
	"github.com/lex00/pakman/args"
	"github.com/lex00/pakman/errs"
	"github.com/lex00/pakman/reference"
)

const testDoc = `Tests a package consuming it from a test project.

The package must already be available. The test project is built in
--test-build-folder, or in a temporary folder when not given.`

const createDoc = `Builds a binary package for a recipe located in the current directory.

Uses the specified configuration in a profile or in -s settings and -o
options. It exports the recipe, builds the package and runs the test
project in test_package unless --test-folder=None is given.`

const buildDoc = `Calls the build step of your local pakfile.yaml.

The recipe is built in the directory given by --build-folder, reading the
sources from --source-folder. Meson projects get --package-folder as their
install prefix. Generators write their files into --install-folder.`

const exportPkgDoc = `Exports a recipe and creates a package with given files calling 'package'.

It executes the package step of the recipe on already built files. The
package id is computed from the given settings and options.`

// Test runs a test project against an existing package.
func (c *Commands) Test(ctx context.Context, argv []string) (any, error) {
	p := newParser("test <path> <reference>", testDoc)
	p.command.Args = positionals([]string{"path", "reference"})
	p.bind(args.Spec{Name: "test-build-folder", Policy: args.PolicyOnce,
		Usage: "Working directory of the build process"})
	var update bool
	p.bindInstallArgs(fmt.Sprintf(buildPolicyHelp, "never"), &update)

	err := p.run(ctx, c.Out, argv, func(pos []string) error {
		return c.API.Test(ctx, pos[0], pos[1], api.TestOpts{
			InstallOpts:     p.installOpts(update),
			TestBuildFolder: p.values.String("test_build_folder"),
		})
	})
	return nil, err
}

// Create builds a package from a recipe.
func (c *Commands) Create(ctx context.Context, argv []string) (any, error) {
	p := newParser("create <path> [reference]", createDoc)
	p.command.Args = positionals([]string{"path"}, "reference")
	p.bind(
		args.Spec{Name: "json", Short: "j", Policy: args.PolicyOnce, Usage: "JSON file path where the install information will be written"},
		args.Spec{Name: "test-build-folder", Policy: args.PolicyOnce, Usage: "Working directory for the build of the test project"},
		args.Spec{Name: "test-folder", Short: "t", Policy: args.PolicyOnce, Usage: "Alternative test folder name. Use 'None' to skip the test stage"},
		args.Spec{Name: "require-override", Usage: "Overwrite the requirement of the recipe, e.g. --require-override=zlib/1.3"},
	)
	var update, ignoreDirty, buildRequire bool
	fs := p.flags()
	fs.BoolVar(&ignoreDirty, "ignore-dirty", false, "Do not fail when the scm working tree is dirty")
	fs.BoolVar(&buildRequire, "build-require", false, "The provided reference is a build-require")
	p.bindInstallArgs(fmt.Sprintf(buildPolicyHelp, "package name"), &update)

	var info *api.InstallInfo
	err := p.run(ctx, c.Out, argv, func(pos []string) error {
		opts, err := createOpts(pos)
		if err != nil {
			return err
		}
		v := p.values
		opts.InstallOpts = p.installOpts(update)
		opts.TestBuildFolder = v.String("test_build_folder")
		opts.IgnoreDirty = ignoreDirty
		opts.BuildRequire = buildRequire
		opts.RequireOverrides = v.Strings("require_override")
		if folder := v.String("test_folder"); folder == "None" {
			opts.SkipTest = true
		} else {
			opts.TestFolder = folder
		}

		info, err = c.API.Create(ctx, pos[0], opts)
		return writeJSON(c, v.String("json"), info, err)
	})
	return info, err
}

// createOpts reads the optional [name/version@]user/channel argument.
func createOpts(pos []string) (api.CreateOpts, error) {
	var opts api.CreateOpts
	if len(pos) < 2 {
		return opts, nil
	}
	name, version, user, channel, _ := reference.Fields(pos[1], true)
	if (user != "") != (channel != "") {
		return opts, errs.Domainf("Invalid parameter '%s', specify the full reference or user/channel", pos[1])
	}
	opts.Name, opts.Version, opts.User, opts.Channel = name, version, user, channel
	return opts, nil
}

// Build runs the build step of a local recipe.
func (c *Commands) Build(ctx context.Context, argv []string) (any, error) {
	p := newParser("build <path>", buildDoc)
	p.command.Args = positionals([]string{"path"})
	p.bind(
		args.Spec{Name: "name", Policy: args.PolicyOnce, Usage: "Provide a package name if not specified in the recipe"},
		args.Spec{Name: "version", Policy: args.PolicyOnce, Usage: "Provide a package version if not specified in the recipe"},
		args.Spec{Name: "user", Policy: args.PolicyOnce, Usage: "Provide a user"},
		args.Spec{Name: "channel", Policy: args.PolicyOnce, Usage: "Provide a channel"},
		args.Spec{Name: "build-folder", Policy: args.PolicyOnce, Usage: "Directory for the build process. Defaulted to the current directory"},
		args.Spec{Name: "package-folder", Policy: args.PolicyOnce, Usage: "Directory to install the package. Defaulted to '{build_folder}/package'"},
		args.Spec{Name: "source-folder", Policy: args.PolicyOnce, Usage: "Directory containing the sources. Defaulted to the recipe folder"},
		args.Spec{Name: "install-folder", Policy: args.PolicyOnce, Usage: "Directory where generator files are written. Defaulted to the build folder"},
		args.Spec{Name: "generator", Short: "g", Usage: "Generators to use"},
		args.Spec{Name: "json", Short: "j", Policy: args.PolicyOnce, Usage: "JSON file path where the build information will be written"},
	)
	var update, noImports bool
	p.flags().BoolVar(&noImports, "no-imports", false, "Install specified packages but avoid running imports")
	p.bindInstallArgs(fmt.Sprintf(buildPolicyHelp, "never"), &update)

	var info *api.InstallInfo
	err := p.run(ctx, c.Out, argv, func(pos []string) error {
		v := p.values
		var err error
		info, err = c.API.Build(ctx, pos[0], api.BuildOpts{
			InstallOpts:   p.installOpts(update),
			Name:          v.String("name"),
			Version:       v.String("version"),
			User:          v.String("user"),
			Channel:       v.String("channel"),
			SourceFolder:  v.String("source_folder"),
			PackageFolder: v.String("package_folder"),
			BuildFolder:   v.String("build_folder"),
			InstallFolder: v.String("install_folder"),
			Generators:    v.Strings("generator"),
			NoImports:     noImports,
		})
		return writeJSON(c, v.String("json"), info, err)
	})
	return info, err
}

// ExportPkg packages already built files.
func (c *Commands) ExportPkg(ctx context.Context, argv []string) (any, error) {
	p := newParser("export-pkg <path> [reference]", exportPkgDoc)
	p.command.Args = positionals([]string{"path"}, "reference")
	p.bind(
		args.Spec{Name: "build-folder", Policy: args.PolicyOnce, Usage: "Directory of the build process"},
		args.Spec{Name: "package-folder", Policy: args.PolicyOnce, Usage: "Folder containing a locally created package. Incompatible with --build-folder and --source-folder"},
		args.Spec{Name: "source-folder", Policy: args.PolicyOnce, Usage: "Directory containing the sources"},
		args.Spec{Name: "install-folder", Policy: args.PolicyOnce, Usage: "Directory containing the generator files"},
		args.Spec{Name: "json", Short: "j", Policy: args.PolicyOnce, Usage: "JSON file path where the package information will be written"},
		args.Spec{Name: "lockfile", Short: "l", Policy: args.PolicyOnce, Usage: "Path to a lockfile"},
		args.Spec{Name: "lockfile-out", Policy: args.PolicyOnce, Usage: "Filename of the updated lockfile"},
	)
	var force bool
	p.flags().BoolVarP(&force, "force", "f", false, "Overwrite existing package if existing")
	p.bindProfileArgs()

	var info *api.InstallInfo
	err := p.run(ctx, c.Out, argv, func(pos []string) error {
		v := p.values
		ref, err := createOpts(pos)
		if err != nil {
			return err
		}
		if v.String("package_folder") != "" && (v.String("build_folder") != "" || v.String("source_folder") != "") {
			return errs.Domain("package folder definition incompatible with build and source folders")
		}
		info, err = c.API.ExportPkg(ctx, pos[0], api.ExportPkgOpts{
			Name:          ref.Name,
			Version:       ref.Version,
			User:          ref.User,
			Channel:       ref.Channel,
			PackageFolder: v.String("package_folder"),
			BuildFolder:   v.String("build_folder"),
			SourceFolder:  v.String("source_folder"),
			InstallFolder: v.String("install_folder"),
			Force:         force,
			Lockfile:      v.String("lockfile"),
			LockfileOut:   v.String("lockfile_out"),
			Host:          p.profile("host"),
			Build:         p.profile("build"),
		})
		return writeJSON(c, v.String("json"), info, err)
	})
	return info, err
}
