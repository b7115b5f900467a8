// Package catalog turns loaded records into published catalog documents:
// reference validation, assembly, icon hashing and repository publishing.
package catalog

import (
	"strings"

	"github.com/catalogsmith/catalogsmith/internal/pkginfo"
	"github.com/catalogsmith/catalogsmith/internal/report"
)

// Installer types that never reference a locally hosted artifact.
var exemptInstallerTypes = map[string]bool{
	"nopkg":                 true,
	"apple_update_metadata": true,
}

// Uninstall methods that require an uninstaller artifact even when no
// uninstaller_item_location is declared.
var uninstallerItemMethods = map[string]bool{
	"AdobeSetup":       true,
	"AdobeUninstaller": true,
}

// Validator decides whether a record's declared artifacts actually exist in
// the repository. It is pure: the artifact listing is captured once and
// every Check call is deterministic against it.
type Validator struct {
	artifacts map[string]bool
	// lowercase artifact path -> original spelling, for case-only matches
	folded map[string]string

	Force            bool
	SkipPayloadCheck bool
}

// NewValidator indexes the installable-artifact listing.
func NewValidator(artifacts []string, force, skipPayloadCheck bool) *Validator {
	v := &Validator{
		artifacts:        make(map[string]bool, len(artifacts)),
		folded:           make(map[string]string, len(artifacts)),
		Force:            force,
		SkipPayloadCheck: skipPayloadCheck,
	}
	for _, a := range artifacts {
		v.artifacts[a] = true
		v.folded[strings.ToLower(a)] = a
	}
	return v
}

// Check reports whether rec is sane to publish. Warnings for missing or
// case-mismatched artifacts are recorded on rpt either way.
func (v *Validator) Check(rec *pkginfo.Record, rpt *report.Report) bool {
	if v.SkipPayloadCheck {
		return true
	}

	sane := true
	location := rec.StringField("installer_item_location")
	switch {
	case exemptInstallerTypes[rec.StringField("installer_type")]:
		// no local artifact expected
	case rec.HasField("package_url") || rec.HasField("package_complete_url"):
		// artifact lives on a remote server
	case location == "":
		rpt.Warnf("WARNING: %s does not have an installer_item_location!", rec.DisplayName())
		sane = false
	case !v.artifactExists(location, rec, rpt):
		sane = false
	}

	uninstaller := rec.StringField("uninstaller_item_location")
	if uninstaller == "" && uninstallerItemMethods[rec.StringField("uninstall_method")] {
		rpt.Warnf("WARNING: %s uses uninstall method %s but has no uninstaller_item_location!",
			rec.DisplayName(), rec.StringField("uninstall_method"))
		sane = false
	} else if uninstaller != "" && !v.artifactExists(uninstaller, rec, rpt) {
		sane = false
	}

	return sane
}

// artifactExists resolves location against the artifact listing. An exact
// match passes silently. A case-only match passes with a warning, since the
// repo may later be served from a case-sensitive filesystem. A full miss
// warns and fails.
func (v *Validator) artifactExists(location string, rec *pkginfo.Record, rpt *report.Report) bool {
	if v.artifacts[location] {
		return true
	}
	if actual, ok := v.folded[strings.ToLower(location)]; ok {
		rpt.Warnf("WARNING: %s references %s in a different case than the repo item %s",
			rec.DisplayName(), location, actual)
		return true
	}
	rpt.Warnf("WARNING: %s references missing item %s", rec.DisplayName(), location)
	return false
}

// Filter returns the records eligible for catalog assembly, preserving
// order. Unsane records are excluded unless Force is set; their warnings are
// recorded either way.
func (v *Validator) Filter(records []*pkginfo.Record, rpt *report.Report) []*pkginfo.Record {
	sane := make([]*pkginfo.Record, 0, len(records))
	for _, rec := range records {
		if v.Check(rec, rpt) || v.Force {
			sane = append(sane, rec)
		}
	}
	return sane
}
