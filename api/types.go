package api

import "sort"

// ProfileData groups the profile arguments for one machine (host or build).
type ProfileData struct {
	Profiles []string
	Settings []string
	Options  []string
	Env      []string
	Conf     []string
}

// IsEmpty reports whether no profile argument was given.
func (p ProfileData) IsEmpty() bool {
	return len(p.Profiles) == 0 && len(p.Settings) == 0 && len(p.Options) == 0 &&
		len(p.Env) == 0 && len(p.Conf) == 0
}

// StringSet is a set of strings. It serializes as a sorted list.
type StringSet map[string]struct{}

// NewStringSet returns a set holding items.
func NewStringSet(items ...string) StringSet {
	s := make(StringSet, len(items))
	for _, i := range items {
		s.Add(i)
	}
	return s
}

func (s StringSet) Add(item string) { s[item] = struct{}{} }

func (s StringSet) Has(item string) bool {
	_, ok := s[item]
	return ok
}

// Sorted returns the items in ascending order.
func (s StringSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// InstallOpts are the arguments shared by commands that install dependencies.
type InstallOpts struct {
	Remote string
	Update bool
	// BuildModes is nil when --build was not given, empty for a bare --build.
	BuildModes  []string
	Lockfile    string
	LockfileOut string
	Host        ProfileData
	Build       ProfileData
}

// InspectOpts contains options for Inspect.
type InspectOpts struct {
	// Attributes to show; empty means the default set.
	Attributes []string
	Remote     string
	// Quiet suppresses collaborator output (used by --raw).
	Quiet bool
}

// Attribute is one inspected recipe attribute. A nil Value means undefined.
type Attribute struct {
	Name  string
	Value any
}

// InspectResult holds attributes in the requested order.
type InspectResult struct {
	Attributes []Attribute
}

// Map returns the attributes keyed by name.
func (r *InspectResult) Map() map[string]any {
	m := make(map[string]any, len(r.Attributes))
	for _, a := range r.Attributes {
		m[a.Name] = a.Value
	}
	return m
}

// TestOpts contains options for Test.
type TestOpts struct {
	InstallOpts
	TestBuildFolder string
}

// CreateOpts contains options for Create.
type CreateOpts struct {
	InstallOpts
	Name    string
	Version string
	User    string
	Channel string
	// TestFolder overrides "test_package"; SkipTest disables the test stage.
	TestFolder       string
	SkipTest         bool
	TestBuildFolder  string
	IgnoreDirty      bool
	BuildRequire     bool
	RequireOverrides []string
}

// DownloadOpts contains options for Download.
type DownloadOpts struct {
	Reference string
	Packages  []string
	Remote    string
	// RecipeOnly skips binaries.
	RecipeOnly bool
}

// BuildOpts contains options for Build.
type BuildOpts struct {
	InstallOpts
	Name          string
	Version       string
	User          string
	Channel       string
	SourceFolder  string
	PackageFolder string
	BuildFolder   string
	InstallFolder string
	Generators    []string
	NoImports     bool
}

// ImportsOpts contains options for Imports.
type ImportsOpts struct {
	ImportFolder  string
	InstallFolder string
	Lockfile      string
	Host          ProfileData
	Build         ProfileData
}

// RemoveOpts contains options for Remove.
type RemoveOpts struct {
	Pattern string
	Query   string
	// Packages and Builds are nil when not requested, empty for "all".
	Packages []string
	Builds   []string
	Src      bool
	Force    bool
	Remote   string
	// Outdated limits removal to packages built from an older recipe.
	Outdated bool
}

// UploadPolicy selects how an upload treats remote state.
type UploadPolicy string

const (
	UploadPolicyDefault           UploadPolicy = ""
	UploadPolicyForce             UploadPolicy = "force-upload"
	UploadPolicySkip              UploadPolicy = "skip-upload"
	UploadPolicyNoOverwrite       UploadPolicy = "no-overwrite"
	UploadPolicyNoOverwriteRecipe UploadPolicy = "no-overwrite-recipe"
)

// UploadOpts contains options for Upload.
type UploadOpts struct {
	Pattern        string
	PackageID      string
	Query          string
	Remote         string
	All            bool
	Policy         UploadPolicy
	Confirm        bool
	Retry          *int
	RetryWait      *int
	IntegrityCheck bool
	Parallel       bool
	// Threads is the number of parallel transfers; zero when not parallel.
	Threads int
}

// GetOpts contains options for GetPath.
type GetOpts struct {
	Reference string
	PackageID string
	Path      string
	Remote    string
}

// GetResult is either a directory listing or file contents.
type GetResult struct {
	Path    string
	IsDir   bool
	Entries []string
	Content string
}

// EditablePackage is a package in editable mode.
type EditablePackage struct {
	Reference string `json:"reference"`
	Path      string `json:"path"`
	Layout    string `json:"layout,omitempty"`
}

// ExportPkgOpts contains options for ExportPkg.
type ExportPkgOpts struct {
	Name          string
	Version       string
	User          string
	Channel       string
	PackageFolder string
	BuildFolder   string
	SourceFolder  string
	InstallFolder string
	Force         bool
	Lockfile      string
	LockfileOut   string
	Host          ProfileData
	Build         ProfileData
}

// InstallInfo describes what a create, build or export-pkg produced. It is
// also returned alongside an error when the operation failed midway.
type InstallInfo struct {
	Error     bool              `json:"error"`
	Installed []InstalledRecipe `json:"installed"`
}

// InstalledRecipe is one recipe and its binaries in an InstallInfo.
type InstalledRecipe struct {
	Recipe   RecipeInfo    `json:"recipe"`
	Packages []PackageInfo `json:"packages"`
}

// RecipeInfo identifies a recipe in an InstallInfo.
type RecipeInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Version  string `json:"version,omitempty"`
	User     string `json:"user,omitempty"`
	Channel  string `json:"channel,omitempty"`
	Editable bool   `json:"editable"`
	Exported bool   `json:"exported"`
	Error    string `json:"error,omitempty"`
}

// PackageInfo describes one binary package in an InstallInfo.
type PackageInfo struct {
	ID         string    `json:"id"`
	Built      bool      `json:"built"`
	Folder     string    `json:"folder,omitempty"`
	Generators StringSet `json:"generators,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// UploadInfo describes an upload.
type UploadInfo struct {
	Error    bool             `json:"error"`
	Uploaded []UploadedRecipe `json:"uploaded"`
}

// UploadedRecipe is one uploaded recipe and its packages.
type UploadedRecipe struct {
	Recipe   string    `json:"recipe"`
	Remote   string    `json:"remote"`
	Packages StringSet `json:"packages,omitempty"`
}
