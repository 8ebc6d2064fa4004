package pbxproj

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soapywu/applinkpatch/pbxobj"
)

func writeFixtureTree(t *testing.T, appName string) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "platforms", "ios", appName+".xcodeproj")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "project.pbxproj"), fixture(t), 0644))
	return root
}

func TestLoad(t *testing.T) {
	root := writeFixtureTree(t, "MyApp")
	project, err := Load(root)
	require.NoError(t, err)
	assert.Contains(t, project.Path(), "MyApp.xcodeproj")
	assert.False(t, project.BuildConfigurations().IsEmpty())
}

func TestLoadDescriptorNotFound(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDescriptorNotFound)
}

func TestAddResourceFile(t *testing.T) {
	root := writeFixtureTree(t, "MyApp")
	project, err := Load(root)
	require.NoError(t, err)

	require.NoError(t, project.AddResourceFile("MyApp.entitlements"))

	refs := project.FileReferences()
	records := StripComments(refs)
	require.Equal(t, 2, records.Size())

	var refKey string
	var ref pbxobj.Object
	records.Foreach(func(key string, val interface{}) pbxobj.IterateAction {
		obj := val.(pbxobj.Object)
		if obj.GetString("path") == `"MyApp.entitlements"` {
			refKey = key
			ref = obj
			return pbxobj.IterateBreak
		}
		return pbxobj.IterateContinue
	})
	require.NotEmpty(t, refKey, "new file reference not found")
	assert.Len(t, refKey, 24)
	assert.Equal(t, "text.plist.entitlements", ref.GetString("lastKnownFileType"))
	assert.Equal(t, `"MyApp.entitlements"`, ref.GetString("name"))
	assert.Equal(t, `"<group>"`, ref.GetString("sourceTree"))
	assert.Equal(t, "MyApp.entitlements", refs.GetString(ToCommentKey(refKey)))

	// build file entry points back at the reference
	buildFiles := StripComments(project.section("PBXBuildFile"))
	require.Equal(t, 2, buildFiles.Size())
	foundBuildFile := false
	buildFiles.Foreach(func(_ string, val interface{}) pbxobj.IterateAction {
		if val.(pbxobj.Object).GetString("fileRef") == refKey {
			foundBuildFile = true
			return pbxobj.IterateBreak
		}
		return pbxobj.IterateContinue
	})
	assert.True(t, foundBuildFile)

	// Resources group gained the child
	group := project.groupByName("Resources")
	children, _ := group.Get("children")
	require.Len(t, children.([]interface{}), 1)
	child := children.([]interface{})[0].(pbxobj.Object)
	assert.Equal(t, refKey, child.GetString("value"))
	assert.Equal(t, "MyApp.entitlements", child.GetString("comment"))

	// Resources build phase gained the file
	phase := project.buildPhaseObject("PBXResourcesBuildPhase", "Resources")
	files, _ := phase.Get("files")
	require.Len(t, files.([]interface{}), 1)
	entry := files.([]interface{})[0].(pbxobj.Object)
	assert.Equal(t, "MyApp.entitlements in Resources", entry.GetString("comment"))

	// the same file cannot be added twice
	assert.Error(t, project.AddResourceFile("MyApp.entitlements"))
}

func TestAddResourceFileCreatesResourcesGroup(t *testing.T) {
	descriptor := []byte(`{
	objects = {

/* Begin PBXGroup section */
		AAAAAAAAAAAAAAAAAAAAAAAA /* CustomTemplate */ = {
			isa = PBXGroup;
			children = (
			);
			name = CustomTemplate;
			sourceTree = "<group>";
		};
/* End PBXGroup section */

/* Begin PBXProject section */
		BBBBBBBBBBBBBBBBBBBBBBBB /* Project object */ = {
			isa = PBXProject;
			mainGroup = AAAAAAAAAAAAAAAAAAAAAAAA /* CustomTemplate */;
		};
/* End PBXProject section */
	};
}`)
	path := filepath.Join(t.TempDir(), "project.pbxproj")
	require.NoError(t, os.WriteFile(path, descriptor, 0644))
	project := NewProject(path)
	require.NoError(t, project.Parse())

	require.NoError(t, project.AddResourceFile("Other.entitlements"))

	group := project.groupByName("Resources")
	require.False(t, group.IsEmpty())
	children, _ := group.Get("children")
	require.Len(t, children.([]interface{}), 1)

	// the fresh group hangs off the main group
	main := project.mainGroup()
	mainChildren, _ := main.Get("children")
	require.Len(t, mainChildren.([]interface{}), 1)
	assert.Equal(t, "Resources", mainChildren.([]interface{})[0].(pbxobj.Object).GetString("comment"))
}

func TestWriteRoundTrip(t *testing.T) {
	root := writeFixtureTree(t, "MyApp")
	project, err := Load(root)
	require.NoError(t, err)
	require.NoError(t, project.Write())

	reloaded, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, "7.0", reloaded.BuildConfigurations().
		GetObject("1D6058940D05DD3E006BFB54").
		GetObject("buildSettings").
		GetString("IPHONEOS_DEPLOYMENT_TARGET"))
}

func TestStripComments(t *testing.T) {
	table := pbxobj.NewWithItems(
		pbxobj.Item{Key: "AAAA", Value: "record"},
		pbxobj.Item{Key: "AAAA_comment", Value: "label"},
		pbxobj.Item{Key: "BBBB", Value: "record2"},
	)
	stripped := StripComments(table)
	assert.Equal(t, 2, stripped.Size())
	assert.False(t, stripped.Has("AAAA_comment"))
	// the source table keeps its annotation
	assert.Equal(t, "label", table.GetString("AAAA_comment"))
}

func TestCommentKeyHelpers(t *testing.T) {
	assert.Equal(t, "AAAA_comment", ToCommentKey("AAAA"))
	assert.Equal(t, "AAAA", FromCommentKey("AAAA_comment"))
	assert.True(t, IsCommentKey("AAAA_comment"))
	assert.False(t, IsCommentKey("AAAA"))
	assert.True(t, NonComments("AAAA", nil))
	assert.False(t, NonComments("AAAA_comment", nil))
	assert.True(t, OnlyComments("AAAA_comment", nil))
}
