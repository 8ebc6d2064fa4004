package patcher

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/soapywu/applinkpatch/pbxobj"
	"github.com/soapywu/applinkpatch/pbxproj"
)

const (
	deploymentTargetSetting    = "IPHONEOS_DEPLOYMENT_TARGET"
	signingEntitlementsSetting = "CODE_SIGN_ENTITLEMENTS"
)

// ConfigurationPatcher applies the associated-domains build settings to
// every build configuration of a project.
type ConfigurationPatcher struct{}

// Apply points CODE_SIGN_ENTITLEMENTS at entitlementsPath on every build
// configuration and raises IPHONEOS_DEPLOYMENT_TARGET to at least
// targetMinVersion. It reports whether any version field was raised. The
// entitlements setting is rewritten unconditionally on every call, which
// keeps repeat runs convergent.
func (ConfigurationPatcher) Apply(project *pbxproj.Project, targetMinVersion, entitlementsPath string) (bool, error) {
	target, err := semver.NewVersion(targetMinVersion)
	if err != nil {
		return false, fmt.Errorf("invalid target version %q: %w", targetMinVersion, err)
	}

	updated := false
	var applyErr error
	project.BuildConfigurations().ForeachWithFilter(func(key string, val interface{}) pbxobj.IterateAction {
		configuration, ok := val.(pbxobj.Object)
		if !ok {
			applyErr = fmt.Errorf("build configuration %s: not a record", key)
			return pbxobj.IterateBreak
		}
		settings := configuration.EnsureObject("buildSettings")
		settings.Set(signingEntitlementsSetting, `"`+entitlementsPath+`"`)

		current := settingString(settings, deploymentTargetSetting)
		if current == "" {
			settings.Set(deploymentTargetSetting, targetMinVersion)
			updated = true
			return pbxobj.IterateContinue
		}
		version, err := semver.NewVersion(current)
		if err != nil {
			applyErr = fmt.Errorf("build configuration %s: malformed %s %q: %w",
				key, deploymentTargetSetting, current, err)
			return pbxobj.IterateBreak
		}
		if version.LessThan(target) {
			settings.Set(deploymentTargetSetting, targetMinVersion)
			updated = true
		}
		return pbxobj.IterateContinue
	}, pbxproj.NonComments)

	if applyErr != nil {
		return false, applyErr
	}
	return updated, nil
}

// settingString reads a build setting that the parser may have stored as
// either a string or a bare integer.
func settingString(settings pbxobj.Object, key string) string {
	v, ok := settings.Get(key)
	if !ok {
		return ""
	}
	switch v := v.(type) {
	case string:
		return strings.Trim(v, `"`)
	case int:
		return strconv.Itoa(v)
	}
	return ""
}
