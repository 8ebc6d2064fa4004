/**
Licensed to the Apache Software Foundation (ASF) under one
or more contributor license agreements.  See the NOTICE file
distributed with this work for additional information
regarding copyright ownership.  The ASF licenses this file
to you under the Apache License, Version 2.0 (the
'License'); you may not use this file except in compliance
with the License.  You may obtain a copy of the License at
http://www.apache.org/licenses/LICENSE-2.0
Unless required by applicable law or agreed to in writing,
software distributed under the License is distributed on an
'AS IS' BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
KIND, either express or implied.  See the License for the
specific language governing permissions and limitations
under the License.
*/
package pbxproj

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/soapywu/applinkpatch/pbxobj"
)

const indentUnit = "\t"

type writer struct {
	b           strings.Builder
	contents    pbxobj.Object
	indentLevel int
}

func newWriter(contents pbxobj.Object) *writer {
	return &writer{contents: contents}
}

// String renders the whole descriptor back to pbxproj text.
func (w *writer) String() string {
	w.writeHeadComment()
	w.writeProject()
	return w.b.String()
}

func (w *writer) writef(format string, args ...interface{}) {
	w.b.WriteString(strings.Repeat(indentUnit, w.indentLevel))
	fmt.Fprintf(&w.b, format, args...)
}

func (w *writer) writeRaw(format string, args ...interface{}) {
	fmt.Fprintf(&w.b, format, args...)
}

func (w *writer) writeHeadComment() {
	if comment := w.contents.GetString("headComment"); comment != "" {
		w.writeRaw("// %s\n", comment)
	}
}

func (w *writer) writeProject() {
	project := w.contents.GetObject("project")
	w.writef("{\n")
	w.indentLevel++
	w.writeEntries(project, true)
	w.indentLevel--
	w.writef("}\n")
}

func (w *writer) writeEntries(obj pbxobj.Object, topLevel bool) {
	obj.ForeachWithFilter(func(key string, val interface{}) pbxobj.IterateAction {
		cmt := obj.GetString(ToCommentKey(key))
		switch v := val.(type) {
		case []interface{}:
			w.writeArray(key, v)
		case pbxobj.Object:
			w.writef("%s = {\n", key)
			w.indentLevel++
			if topLevel && key == "objects" {
				w.writeObjectsSections(v)
			} else {
				w.writeEntries(v, false)
			}
			w.indentLevel--
			w.writef("};\n")
		case string:
			w.writeScalar(key, v, cmt)
		case int:
			w.writeScalar(key, strconv.Itoa(v), cmt)
		}
		return pbxobj.IterateContinue
	}, NonComments)
}

func (w *writer) writeScalar(key, val, cmt string) {
	if cmt != "" {
		w.writef("%s = %s /* %s */;\n", key, val, cmt)
	} else {
		w.writef("%s = %s;\n", key, val)
	}
}

func (w *writer) writeArray(name string, arr []interface{}) {
	w.writef("%s = (\n", name)
	w.indentLevel++
	for _, el := range arr {
		switch v := el.(type) {
		case pbxobj.Object:
			value := v.GetString("value")
			comment := v.GetString("comment")
			if value != "" && comment != "" {
				w.writef("%s /* %s */,\n", value, comment)
			} else {
				w.writef("{\n")
				w.indentLevel++
				w.writeEntries(v, false)
				w.indentLevel--
				w.writef("},\n")
			}
		case string:
			w.writef("%s,\n", v)
		case int:
			w.writef("%d,\n", v)
		}
	}
	w.indentLevel--
	w.writef(");\n")
}

func (w *writer) writeObjectsSections(objects pbxobj.Object) {
	objects.ForeachWithFilter(func(name string, val interface{}) pbxobj.IterateAction {
		section, ok := val.(pbxobj.Object)
		if !ok || section.IsEmpty() {
			return pbxobj.IterateContinue
		}
		w.writeRaw("\n/* Begin %s section */\n", name)
		w.writeSection(section)
		w.writeRaw("/* End %s section */\n", name)
		return pbxobj.IterateContinue
	}, NonComments)
}

func (w *writer) writeSection(section pbxobj.Object) {
	section.ForeachWithFilter(func(key string, val interface{}) pbxobj.IterateAction {
		obj, ok := val.(pbxobj.Object)
		if !ok {
			return pbxobj.IterateContinue
		}
		cmt := section.GetString(ToCommentKey(key))
		isa := obj.GetString("isa")
		// PBXBuildFile and PBXFileReference entries are single-liners.
		if isa == "PBXBuildFile" || isa == "PBXFileReference" {
			w.writeInline(key, cmt, obj)
			return pbxobj.IterateContinue
		}
		if cmt != "" {
			w.writef("%s /* %s */ = {\n", key, cmt)
		} else {
			w.writef("%s = {\n", key)
		}
		w.indentLevel++
		w.writeEntries(obj, false)
		w.indentLevel--
		w.writef("};\n")
		return pbxobj.IterateContinue
	}, NonComments)
}

func (w *writer) writeInline(key, cmt string, obj pbxobj.Object) {
	var b strings.Builder
	if cmt != "" {
		fmt.Fprintf(&b, "%s /* %s */ = {", key, cmt)
	} else {
		fmt.Fprintf(&b, "%s = {", key)
	}
	w.appendInline(&b, obj)
	b.WriteString("};")
	w.writef("%s\n", b.String())
}

func (w *writer) appendInline(b *strings.Builder, obj pbxobj.Object) {
	obj.ForeachWithFilter(func(key string, val interface{}) pbxobj.IterateAction {
		cmt := obj.GetString(ToCommentKey(key))
		switch v := val.(type) {
		case pbxobj.Object:
			fmt.Fprintf(b, "%s = {", key)
			w.appendInline(b, v)
			b.WriteString("}; ")
		case []interface{}:
			fmt.Fprintf(b, "%s = (", key)
			for _, el := range v {
				switch e := el.(type) {
				case pbxobj.Object:
					fmt.Fprintf(b, "%s /* %s */, ", e.GetString("value"), e.GetString("comment"))
				case string:
					fmt.Fprintf(b, "%s, ", e)
				case int:
					fmt.Fprintf(b, "%d, ", e)
				}
			}
			b.WriteString("); ")
		case string:
			if cmt != "" {
				fmt.Fprintf(b, "%s = %s /* %s */; ", key, v, cmt)
			} else {
				fmt.Fprintf(b, "%s = %s; ", key, v)
			}
		case int:
			if cmt != "" {
				fmt.Fprintf(b, "%s = %d /* %s */; ", key, v, cmt)
			} else {
				fmt.Fprintf(b, "%s = %d; ", key, v)
			}
		}
		return pbxobj.IterateContinue
	}, NonComments)
}
