// Package api declares the collaborator that pakman handlers delegate to.
//
// Handlers only parse arguments, check argument combinations and print
// results; everything else is behind these interfaces.
package api

import "context"

// API is the full collaborator used by the command table.
type API interface {
	Inspector
	Tester
	Creator
	Downloader
	Sourcer
	Builder
	Importer
	Remover
	Uploader
	Getter
	EditableManager
	PackageExporter
}

// Inspector reads recipe attributes.
type Inspector interface {
	Inspect(ctx context.Context, pathOrReference string, opts InspectOpts) (*InspectResult, error)
}

// Tester runs a test project against an existing package.
type Tester interface {
	Test(ctx context.Context, path, reference string, opts TestOpts) error
}

// Creator builds a package from a recipe into the cache.
type Creator interface {
	Create(ctx context.Context, path string, opts CreateOpts) (*InstallInfo, error)
}

// Downloader fetches recipes and binaries from a remote.
type Downloader interface {
	Download(ctx context.Context, opts DownloadOpts) error
}

// Sourcer runs the source step of a local recipe.
type Sourcer interface {
	Source(ctx context.Context, path, sourceFolder string) error
}

// Builder runs the build step of a local recipe.
type Builder interface {
	Build(ctx context.Context, path string, opts BuildOpts) (*InstallInfo, error)
}

// Importer copies files from dependencies into a local folder.
type Importer interface {
	Imports(ctx context.Context, path string, opts ImportsOpts) error
	ImportsUndo(ctx context.Context, manifestFolder string) error
}

// Remover deletes recipes, packages and temporary folders.
type Remover interface {
	Remove(ctx context.Context, opts RemoveOpts) error
	RemoveSystemReqs(ctx context.Context, reference string) error
	RemoveSystemReqsByPattern(ctx context.Context, pattern string) error
	RemoveLocks(ctx context.Context) error
}

// Uploader sends recipes and packages to a remote.
type Uploader interface {
	Upload(ctx context.Context, opts UploadOpts) (*UploadInfo, error)
}

// Getter reads a file or lists a folder of a recipe or package.
type Getter interface {
	GetPath(ctx context.Context, opts GetOpts) (*GetResult, error)
}

// EditableManager manages packages consumed from user folders.
type EditableManager interface {
	EditableAdd(ctx context.Context, path, reference, cwd string) error
	// EditableRemove reports whether reference was in editable mode.
	EditableRemove(ctx context.Context, reference string) (bool, error)
	EditableList(ctx context.Context) ([]EditablePackage, error)
}

// PackageExporter packages already built binaries without building them.
type PackageExporter interface {
	ExportPkg(ctx context.Context, path string, opts ExportPkgOpts) (*InstallInfo, error)
}
