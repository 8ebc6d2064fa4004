package patcher

import (
	"fmt"
	"strings"

	"github.com/soapywu/applinkpatch/pbxobj"
	"github.com/soapywu/applinkpatch/pbxproj"
)

// ReferenceInserter makes sure the entitlements file shows up in the
// project's file reference table.
type ReferenceInserter struct{}

// EnsureReferenced reports whether a new reference was inserted. A
// reference whose path merely contains fileName counts as existing; the
// loose match tolerates the path prefixes different project generators
// emit. Calling twice is a no-op the second time.
func (ReferenceInserter) EnsureReferenced(project *pbxproj.Project, fileName string) (bool, error) {
	found := false
	var scanErr error
	project.FileReferences().ForeachWithFilter(func(key string, val interface{}) pbxobj.IterateAction {
		ref, ok := val.(pbxobj.Object)
		if !ok {
			scanErr = fmt.Errorf("file reference %s: not a record", key)
			return pbxobj.IterateBreak
		}
		if strings.Contains(ref.GetString("path"), fileName) {
			found = true
			return pbxobj.IterateBreak
		}
		return pbxobj.IterateContinue
	}, pbxproj.NonComments)

	if scanErr != nil {
		return false, scanErr
	}
	if found {
		return false, nil
	}
	if err := project.AddResourceFile(fileName); err != nil {
		return false, err
	}
	return true, nil
}
