package patcher

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/soapywu/applinkpatch/config"
	"github.com/soapywu/applinkpatch/pbxproj"
)

// Enable patches the project descriptor so the app can use associated
// domains: load, patch build configurations, ensure the entitlements file
// reference, write back. The descriptor is written exactly once, after
// both passes succeed; any earlier failure leaves the file untouched.
func Enable(ctx *config.Context, logger *zap.Logger) error {
	project, err := pbxproj.Load(ctx.ProjectRoot)
	if err != nil {
		return err
	}

	entitlementsPath := EntitlementsPath(ctx.ProjectName)
	raised, err := ConfigurationPatcher{}.Apply(project, ctx.MinOSVersion, entitlementsPath)
	if err != nil {
		return fmt.Errorf("patch build configurations: %w", err)
	}
	if raised {
		logger.Info("raised minimum OS version", zap.String("version", ctx.MinOSVersion))
	} else {
		logger.Info("minimum OS version already sufficient", zap.String("target", ctx.MinOSVersion))
	}
	logger.Info("set code signing entitlements", zap.String("path", entitlementsPath))

	fileName := EntitlementsFileName(ctx.ProjectName)
	inserted, err := ReferenceInserter{}.EnsureReferenced(project, fileName)
	if err != nil {
		return fmt.Errorf("ensure entitlements reference: %w", err)
	}
	if inserted {
		logger.Info("added entitlements file reference", zap.String("file", fileName))
	} else {
		logger.Info("entitlements file already referenced", zap.String("file", fileName))
	}

	if err := project.Write(); err != nil {
		return fmt.Errorf("write project descriptor: %w", err)
	}
	logger.Info("project descriptor updated", zap.String("path", project.Path()))
	return nil
}
