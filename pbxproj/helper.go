package pbxproj

import (
	"strings"

	"github.com/soapywu/applinkpatch/pbxobj"
)

// The descriptor stores a human-readable label for every identifier-keyed
// record as a sibling pseudo-entry under <key>_comment. Those siblings are
// not data records and must be skipped on iteration.
const commentKeySuffix = "_comment"

func ToCommentKey(key string) string {
	return key + commentKeySuffix
}

func FromCommentKey(key string) string {
	return strings.TrimSuffix(key, commentKeySuffix)
}

func IsCommentKey(key string) bool {
	return strings.HasSuffix(key, commentKeySuffix)
}

func NonComments(key string, _ interface{}) bool {
	return !IsCommentKey(key)
}

func OnlyComments(key string, _ interface{}) bool {
	return IsCommentKey(key)
}

// StripComments returns a copy of table without the annotation siblings.
func StripComments(table pbxobj.Object) pbxobj.Object {
	return table.Filter(NonComments)
}

func addToList(obj pbxobj.Object, key string, val interface{}) {
	if obj.IsEmpty() {
		return
	}
	list, _ := obj.Get(key)
	if list == nil {
		obj.Set(key, []interface{}{val})
		return
	}
	obj.Set(key, append(list.([]interface{}), val))
}
