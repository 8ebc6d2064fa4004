// Package patcher applies the associated-domains mutations to a parsed
// project descriptor: raising the minimum deployment target, pointing code
// signing at the entitlements file, and keeping that file referenced.
package patcher

import "fmt"

// EntitlementsPath returns the project-relative path of the entitlements
// file derived from the application name.
func EntitlementsPath(projectName string) string {
	return fmt.Sprintf("%s/Resources/%s.entitlements", projectName, projectName)
}

// EntitlementsFileName returns the bare file name, no directory.
func EntitlementsFileName(projectName string) string {
	return projectName + ".entitlements"
}
