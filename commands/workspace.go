package commands

import (
	"context"
	"strings"

	"github.com/lex00/pakman/api"
	"github.com/lex00/pakman/args"
	"github.com/lex00/pakman/cmd"
	"github.com/lex00/pakman/errs"
	"github.com/lex00/pakman/reference"
	"github.com/spf13/cobra"
)

const sourceDoc = `Calls your local pakfile.yaml source commands.

Usually downloads and uncompresses the package sources.`

const importsDoc = `Calls your local pakfile.yaml imports step.

It requires to have been previously installed and it requires to have the
generated files in the install folder.`

const getDoc = `Gets a file or list a directory of a given reference or package.`

const editableDoc = `Manages editable packages (packages that reside in the user workspace, but
are consumed as if they were in the cache).

Use the subcommands 'add', 'remove' and 'list' to create, remove or list
packages currently installed in this mode.`

// Source runs the source step of a local recipe.
func (c *Commands) Source(ctx context.Context, argv []string) (any, error) {
	p := newParser("source <path>", sourceDoc)
	p.command.Args = positionals([]string{"path"})
	p.bind(args.Spec{Name: "source-folder", Policy: args.PolicyOnce,
		Usage: "Destination directory. Defaulted to the current directory"})

	err := p.run(ctx, c.Out, argv, func(pos []string) error {
		if reference.LooksLikeReference(pos[0]) {
			return errs.Usage("'pakman source' doesn't accept a reference anymore. " +
				"The path parameter should be a folder containing a pakfile.yaml file.")
		}
		return c.API.Source(ctx, pos[0], p.values.String("source_folder"))
	})
	return nil, err
}

// Imports copies files from dependencies into a local folder.
func (c *Commands) Imports(ctx context.Context, argv []string) (any, error) {
	p := newParser("imports <path>", importsDoc)
	p.command.Args = positionals([]string{"path"})
	p.bind(
		args.Spec{Name: "import-folder", Policy: args.PolicyOnce, Usage: "Directory to copy the artifacts to. By default it will be the current directory"},
		args.Spec{Name: "install-folder", Policy: args.PolicyOnce, Usage: "Directory containing the generator files"},
		args.Spec{Name: "lockfile", Short: "l", Policy: args.PolicyOnce, Usage: "Path to a lockfile"},
	)
	var undo bool
	p.flags().BoolVarP(&undo, "undo", "u", false, "Undo imports. Remove imported files")
	p.bindProfileArgs()

	err := p.run(ctx, c.Out, argv, func(pos []string) error {
		v := p.values
		if v.String("lockfile") != "" && v.String("install_folder") != "" {
			return errs.Usage("--lockfile and --install-folder can't be used together")
		}
		if undo {
			return c.API.ImportsUndo(ctx, pos[0])
		}
		if reference.LooksLikeReference(pos[0]) {
			return errs.Usage("Parameter 'path' cannot be a reference. Use a folder containing a pakfile.yaml file.")
		}
		return c.API.Imports(ctx, pos[0], api.ImportsOpts{
			ImportFolder:  v.String("import_folder"),
			InstallFolder: v.String("install_folder"),
			Lockfile:      v.String("lockfile"),
			Host:          p.profile("host"),
			Build:         p.profile("build"),
		})
	})
	return nil, err
}

// Get prints a file or lists a folder of a recipe or package.
func (c *Commands) Get(ctx context.Context, argv []string) (any, error) {
	p := newParser("get <reference> [path]", getDoc)
	p.command.Args = positionals([]string{"reference"}, "path")
	p.bind(
		args.Spec{Name: "package", Short: "p", Policy: args.PolicyOnce, Usage: "Package ID [DEPRECATED: use full reference instead]"},
		args.Spec{Name: "remote", Short: "r", Policy: args.PolicyOnce, Usage: "Get from this specific remote"},
	)
	var raw bool
	p.flags().BoolVar(&raw, "raw", false, "Do not decorate the text")

	var res *api.GetResult
	err := p.run(ctx, c.Out, argv, func(pos []string) error {
		opts := api.GetOpts{Remote: p.values.String("remote")}
		if len(pos) > 1 {
			opts.Path = pos[1]
		}

		if pref, err := reference.ParsePackage(pos[0]); err == nil {
			if p.values.IsSet("package") {
				return errs.Domain(bothReferenceAndPackage)
			}
			opts.Reference = pref.Recipe.String()
			opts.PackageID = pref.PackageID
		} else {
			ref, err := reference.ParseRecipe(pos[0])
			if err != nil {
				return err
			}
			opts.Reference = ref.String()
			opts.PackageID = p.values.String("package")
			if opts.PackageID != "" {
				c.Out.Warning("Usage of `--package` argument is deprecated. Use a full reference instead: `pakman get [...] %s:%s`",
					opts.Reference, opts.PackageID)
			}
		}

		var err error
		if res, err = c.API.GetPath(ctx, opts); err != nil {
			return err
		}
		switch {
		case res.IsDir && raw:
			c.Out.Writeln(strings.Join(res.Entries, "\n"))
		case res.IsDir:
			c.Out.Info("Listing directory '%s':", res.Path)
			lines := make([]string, len(res.Entries))
			for i, e := range res.Entries {
				lines[i] = " " + e
			}
			c.Out.Writeln(strings.Join(lines, "\n"))
		default:
			c.Out.Writeln(res.Content)
		}
		return nil
	})
	return res, err
}

// Editable manages packages in editable mode.
func (c *Commands) Editable(ctx context.Context, argv []string) (any, error) {
	// no Args on the parent: cobra reports unknown subcommands itself
	p := newParser("editable", editableDoc)

	add := cmd.New("add <path> <reference>", "Put a package in editable mode")
	add.Args = positionals([]string{"path", "reference"})
	add.RunE = func(_ *cobra.Command, pos []string) error {
		cwd, err := c.Getwd()
		if err != nil {
			return err
		}
		if err := c.API.EditableAdd(ctx, pos[0], pos[1], cwd); err != nil {
			return err
		}
		c.Out.Success("Reference '%s' in editable mode", pos[1])
		return nil
	}

	remove := cmd.New("remove <reference>", "Disable editable mode for a package")
	remove.Args = positionals([]string{"reference"})
	remove.RunE = func(_ *cobra.Command, pos []string) error {
		removed, err := c.API.EditableRemove(ctx, pos[0])
		if err != nil {
			return err
		}
		if removed {
			c.Out.Success("Removed editable mode for reference '%s'", pos[0])
		} else {
			c.Out.Warning("Reference '%s' was not installed as editable", pos[0])
		}
		return nil
	}

	var listed []api.EditablePackage
	list := cmd.New("list", "List packages in editable mode")
	list.Args = positionals(nil)
	list.RunE = func(*cobra.Command, []string) error {
		var err error
		if listed, err = c.API.EditableList(ctx); err != nil {
			return err
		}
		for _, e := range listed {
			c.Out.Info("%s", e.Reference)
			c.Out.Info("    Path: %s", e.Path)
		}
		return nil
	}

	cmd.AddSubcommands(p.command, add, remove, list)
	err := p.run(ctx, c.Out, argv, func([]string) error {
		return errs.Usage("the following arguments are required: subcommand")
	})
	return listed, err
}
