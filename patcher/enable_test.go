package patcher_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/soapywu/applinkpatch/config"
	"github.com/soapywu/applinkpatch/patcher"
	"github.com/soapywu/applinkpatch/pbxobj"
	"github.com/soapywu/applinkpatch/pbxproj"
)

func writeProjectTree(t *testing.T, appName, text string) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "platforms", "ios", appName+".xcodeproj")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "project.pbxproj"), []byte(text), 0644))
	return root
}

func TestEnable(t *testing.T) {
	root := writeProjectTree(t, "MyApp", descriptor("7.0", ""))
	ctx := &config.Context{
		ProjectRoot:  root,
		ProjectName:  "MyApp",
		MinOSVersion: "9.0",
	}

	require.NoError(t, patcher.Enable(ctx, zap.NewNop()))

	project, err := pbxproj.Load(root)
	require.NoError(t, err)
	settings := project.BuildConfigurations().
		GetObject("CCCCCCCCCCCCCCCCCCCCCCC3").
		GetObject("buildSettings")
	assert.Equal(t, "9.0", settings.GetString("IPHONEOS_DEPLOYMENT_TARGET"))
	assert.Equal(t, `"MyApp/Resources/MyApp.entitlements"`, settings.GetString("CODE_SIGN_ENTITLEMENTS"))

	found := false
	pbxproj.StripComments(project.FileReferences()).Foreach(func(_ string, val interface{}) pbxobj.IterateAction {
		if strings.Contains(val.(pbxobj.Object).GetString("path"), "MyApp.entitlements") {
			found = true
			return pbxobj.IterateBreak
		}
		return pbxobj.IterateContinue
	})
	assert.True(t, found, "entitlements file reference missing after enable")
}

func TestEnableIsRepeatable(t *testing.T) {
	root := writeProjectTree(t, "MyApp", descriptor("7.0", ""))
	ctx := &config.Context{
		ProjectRoot:  root,
		ProjectName:  "MyApp",
		MinOSVersion: "9.0",
	}

	require.NoError(t, patcher.Enable(ctx, zap.NewNop()))
	path := filepath.Join(root, "platforms", "ios", "MyApp.xcodeproj", "project.pbxproj")
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, patcher.Enable(ctx, zap.NewNop()))
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))

	project, err := pbxproj.Load(root)
	require.NoError(t, err)
	assert.Equal(t, 1, pbxproj.StripComments(project.FileReferences()).Size())
}

func TestEnableMissingDescriptor(t *testing.T) {
	ctx := &config.Context{
		ProjectRoot:  t.TempDir(),
		ProjectName:  "MyApp",
		MinOSVersion: "9.0",
	}
	err := patcher.Enable(ctx, zap.NewNop())
	require.Error(t, err)
	assert.ErrorIs(t, err, pbxproj.ErrDescriptorNotFound)
}

func TestEnableLeavesFileUntouchedOnError(t *testing.T) {
	root := writeProjectTree(t, "MyApp", descriptor("garbage", ""))
	ctx := &config.Context{
		ProjectRoot:  root,
		ProjectName:  "MyApp",
		MinOSVersion: "9.0",
	}
	path := filepath.Join(root, "platforms", "ios", "MyApp.xcodeproj", "project.pbxproj")
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	require.Error(t, patcher.Enable(ctx, zap.NewNop()))

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}
