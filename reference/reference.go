// Package reference parses recipe and package references.
//
// A recipe reference is name/version[@user[/channel]][#revision]. A package
// reference adds a binary package id: <recipe>:<package_id>[#revision].
package reference

import (
	"regexp"
	"strings"

	"github.com/lex00/pakman/errs"
)

var (
	namePattern    = regexp.MustCompile(`^[a-zA-Z0-9_][a-zA-Z0-9_+.-]{1,100}$`)
	versionPattern = regexp.MustCompile(`^[a-zA-Z0-9_][a-zA-Z0-9_+.-]*$`)
	idPattern      = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)
)

// Recipe is a parsed recipe reference.
type Recipe struct {
	Name     string `json:"name"`
	Version  string `json:"version"`
	User     string `json:"user,omitempty"`
	Channel  string `json:"channel,omitempty"`
	Revision string `json:"revision,omitempty"`
}

// ParseRecipe parses name/version[@user[/channel]][#revision].
func ParseRecipe(s string) (Recipe, error) {
	var r Recipe
	text := strings.TrimSpace(s)
	if text == "" {
		return r, errs.Domain("empty recipe reference")
	}
	text, r.Revision, _ = strings.Cut(text, "#")

	nameVersion, userChannel, hasAt := strings.Cut(text, "@")
	var ok bool
	r.Name, r.Version, ok = strings.Cut(nameVersion, "/")
	if !ok || strings.Contains(r.Version, "/") {
		return Recipe{}, errs.Domainf("%s is not a valid recipe reference, provide name/version", s)
	}
	if hasAt && userChannel != "" {
		r.User, r.Channel, _ = strings.Cut(userChannel, "/")
		if strings.Contains(r.Channel, "/") {
			return Recipe{}, errs.Domainf("%s is not a valid recipe reference: too many '/' in user/channel", s)
		}
	}

	if err := r.validate(); err != nil {
		return Recipe{}, errs.Wrapf(errs.KindDomain, err, "invalid recipe reference %s", s)
	}
	return r, nil
}

func (r Recipe) validate() error {
	if !namePattern.MatchString(r.Name) {
		return errs.Domainf("invalid name '%s'", r.Name)
	}
	if !versionPattern.MatchString(r.Version) {
		return errs.Domainf("invalid version '%s'", r.Version)
	}
	if r.User != "" && !namePattern.MatchString(r.User) && r.User != "_" {
		return errs.Domainf("invalid user '%s'", r.User)
	}
	if r.Channel != "" && !namePattern.MatchString(r.Channel) && r.Channel != "_" {
		return errs.Domainf("invalid channel '%s'", r.Channel)
	}
	if r.Revision != "" && !idPattern.MatchString(r.Revision) {
		return errs.Domainf("invalid revision '%s'", r.Revision)
	}
	return nil
}

// String renders the reference without a trailing '@' when there is no user.
func (r Recipe) String() string {
	var sb strings.Builder
	sb.WriteString(r.Name + "/" + r.Version)
	if r.User != "" {
		sb.WriteString("@" + r.User)
		if r.Channel != "" {
			sb.WriteString("/" + r.Channel)
		}
	}
	if r.Revision != "" {
		sb.WriteString("#" + r.Revision)
	}
	return sb.String()
}

// Full renders the reference always carrying the '@' separator, as accepted
// by commands that tell references from patterns by it.
func (r Recipe) Full() string {
	if r.User != "" {
		return r.String()
	}
	s := r.Name + "/" + r.Version + "@"
	if r.Revision != "" {
		s += "#" + r.Revision
	}
	return s
}

// Package is a parsed package reference.
type Package struct {
	Recipe    Recipe `json:"recipe"`
	PackageID string `json:"package_id"`
	Revision  string `json:"revision,omitempty"`
}

// ParsePackage parses <recipe>:<package_id>[#revision].
func ParsePackage(s string) (Package, error) {
	recipeText, pkgText, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return Package{}, errs.Domainf("%s is not a valid package reference, provide ref:package_id", s)
	}
	r, err := ParseRecipe(recipeText)
	if err != nil {
		return Package{}, err
	}
	p := Package{Recipe: r}
	p.PackageID, p.Revision, _ = strings.Cut(pkgText, "#")
	if !idPattern.MatchString(p.PackageID) {
		return Package{}, errs.Domainf("%s is not a valid package reference: invalid package id '%s'", s, p.PackageID)
	}
	if p.Revision != "" && !idPattern.MatchString(p.Revision) {
		return Package{}, errs.Domainf("%s is not a valid package reference: invalid revision '%s'", s, p.Revision)
	}
	return p, nil
}

// String renders <recipe>:<package_id>[#revision].
func (p Package) String() string {
	s := p.Recipe.String() + ":" + p.PackageID
	if p.Revision != "" {
		s += "#" + p.Revision
	}
	return s
}

// IsValid reports whether s is a complete recipe reference and not a pattern.
func IsValid(s string) bool {
	if strings.ContainsAny(s, "*?[") {
		return false
	}
	_, err := ParseRecipe(s)
	return err == nil
}

// LooksLikeReference reports whether s is meant as a recipe reference rather
// than a path: it contains '@' and parses.
func LooksLikeReference(s string) bool {
	return strings.Contains(s, "@") && IsValid(s)
}

// Fields splits a possibly partial reference into its parts.
//
// With userChannelInput, a value without '@' is read as user[/channel]
// instead of name[/version]. Empty input yields empty fields.
func Fields(s string, userChannelInput bool) (name, version, user, channel, revision string) {
	if s == "" {
		return
	}
	s, revision, _ = strings.Cut(s, "#")

	if nameVersion, userChannel, ok := strings.Cut(s, "@"); ok {
		if n, v, hasVersion := strings.Cut(nameVersion, "/"); hasVersion {
			name, version = n, v
		} else {
			version = nameVersion
		}
		user, channel, _ = strings.Cut(userChannel, "/")
		return
	}

	first, second, _ := strings.Cut(s, "/")
	if userChannelInput {
		return "", "", first, second, revision
	}
	return first, second, "", "", revision
}
