package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/soapywu/applinkpatch/config"
	"github.com/soapywu/applinkpatch/patcher"
)

func main() {
	var (
		cfgPath      string
		projectRoot  string
		projectName  string
		minOSVersion string
	)

	cmd := &cobra.Command{
		Use:   "applinkpatch",
		Short: "Patch an Xcode project for associated domains",
		Long: "applinkpatch prepares a generated Xcode project for universal links:\n" +
			"it raises the minimum deployment target, points code signing at the\n" +
			"app's entitlements file, and registers that file with the project.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := loadContext(cmd, cfgPath, projectRoot, projectName, minOSVersion)
			if err != nil {
				return err
			}
			logger, err := zap.NewProduction()
			if err != nil {
				return err
			}
			defer logger.Sync()
			return patcher.Enable(ctx, logger)
		},
	}

	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to a JSON pipeline context file")
	cmd.Flags().StringVar(&projectRoot, "project-root", "", "root of the generated project tree")
	cmd.Flags().StringVar(&projectName, "project-name", "", "application name the entitlements path derives from")
	cmd.Flags().StringVar(&minOSVersion, "min-os-version", "", "minimum OS version to enforce (default "+config.DefaultMinOSVersion+")")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadContext builds the pipeline context from config file and environment,
// with explicit flags taking precedence.
func loadContext(cmd *cobra.Command, cfgPath, projectRoot, projectName, minOSVersion string) (*config.Context, error) {
	ctx := &config.Context{
		ProjectRoot:  projectRoot,
		ProjectName:  projectName,
		MinOSVersion: minOSVersion,
	}
	if ctx.MinOSVersion == "" {
		ctx.MinOSVersion = config.DefaultMinOSVersion
	}
	if cmd.Flags().Changed("project-root") && cmd.Flags().Changed("project-name") {
		return ctx, ctx.Validate()
	}

	loaded, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("project-root") {
		loaded.ProjectRoot = projectRoot
	}
	if cmd.Flags().Changed("project-name") {
		loaded.ProjectName = projectName
	}
	if cmd.Flags().Changed("min-os-version") {
		loaded.MinOSVersion = minOSVersion
	}
	return loaded, loaded.Validate()
}
