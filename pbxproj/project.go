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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/uuid"

	"github.com/soapywu/applinkpatch/pbxobj"
)

// ErrDescriptorNotFound reports that no project.pbxproj could be located
// under the expected platform directory.
var ErrDescriptorNotFound = errors.New("project descriptor not found")

// Project is the parsed, mutable descriptor of one Xcode project.
type Project struct {
	filePath string
	contents pbxobj.Object
	objects  pbxobj.Object
	uuids    map[string]struct{}
}

func NewProject(filePath string) *Project {
	return &Project{
		filePath: filePath,
		uuids:    make(map[string]struct{}),
	}
}

// Load locates and parses the iOS project descriptor under projectRoot.
func Load(projectRoot string) (*Project, error) {
	platformDir := filepath.Join(projectRoot, "platforms", "ios")
	matches, err := filepath.Glob(filepath.Join(platformDir, "*.xcodeproj", "project.pbxproj"))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w under %s", ErrDescriptorNotFound, platformDir)
	}
	project := NewProject(matches[0])
	if err := project.Parse(); err != nil {
		return nil, err
	}
	return project, nil
}

func (p *Project) Parse() error {
	data, err := os.ReadFile(p.filePath)
	if err != nil {
		return err
	}
	contents, err := Parse(data)
	if err != nil {
		return fmt.Errorf("parse %s: %w", p.filePath, err)
	}
	p.contents = contents
	p.objects = contents.GetObject("project").EnsureObject("objects")
	p.buildExistUuids()
	return nil
}

func (p *Project) Path() string {
	return p.filePath
}

func (p *Project) Contents() pbxobj.Object {
	return p.contents
}

// Write persists the descriptor back to the file it was parsed from.
func (p *Project) Write() error {
	return p.WriteTo(p.filePath)
}

func (p *Project) WriteTo(filePath string) error {
	return os.WriteFile(filePath, []byte(newWriter(p.contents).String()), 0644)
}

// section returns the per-isa group under objects, materializing an empty
// one when the descriptor does not carry it yet.
func (p *Project) section(name string) pbxobj.Object {
	return p.objects.EnsureObject(name)
}

// BuildConfigurations returns the XCBuildConfiguration table. Annotation
// siblings are included; callers filter with NonComments.
func (p *Project) BuildConfigurations() pbxobj.Object {
	return p.section("XCBuildConfiguration")
}

// FileReferences returns the PBXFileReference table, same caveat.
func (p *Project) FileReferences() pbxobj.Object {
	return p.section("PBXFileReference")
}

func (p *Project) buildExistUuids() {
	uuids := make(map[string]struct{})
	p.objects.ForeachWithFilter(func(_ string, val interface{}) pbxobj.IterateAction {
		section, ok := val.(pbxobj.Object)
		if !ok {
			return pbxobj.IterateContinue
		}
		section.ForeachWithFilter(func(key string, _ interface{}) pbxobj.IterateAction {
			if len(key) == 24 {
				uuids[key] = struct{}{}
			}
			return pbxobj.IterateContinue
		}, NonComments)
		return pbxobj.IterateContinue
	}, NonComments)
	p.uuids = uuids
}

func (p *Project) generateUuid() string {
	for {
		u, _ := uuid.NewV4()
		id := strings.ToUpper(strings.ReplaceAll(u.String(), "-", ""))[:24]
		if _, found := p.uuids[id]; !found {
			p.uuids[id] = struct{}{}
			return id
		}
	}
}

// AddResourceFile inserts a new file reference and wires it through
// PBXFileReference, PBXBuildFile, the Resources group and the Resources
// build phase, allocating fresh identifiers for it.
func (p *Project) AddResourceFile(filePath string) error {
	f := newResourceFile(filePath)
	if p.hasFileReference(f.Path) {
		return fmt.Errorf("file %s already referenced", f.Path)
	}
	f.FileRef = p.generateUuid()
	f.Uuid = p.generateUuid()
	p.addToFileReferenceSection(f)
	p.addToBuildFileSection(f)
	p.addToResourcesGroup(f)
	p.addToResourcesBuildPhase(f)
	return nil
}

func (p *Project) hasFileReference(path string) bool {
	found := false
	p.FileReferences().ForeachWithFilter(func(_ string, val interface{}) pbxobj.IterateAction {
		if ref, ok := val.(pbxobj.Object); ok {
			refPath := ref.GetString("path")
			if refPath == path || unquoted(refPath) == path {
				found = true
				return pbxobj.IterateBreak
			}
		}
		return pbxobj.IterateContinue
	}, NonComments)
	return found
}

func (p *Project) addToFileReferenceSection(f *resourceFile) {
	ref := pbxobj.NewWithItems(
		pbxobj.Item{Key: "isa", Value: "PBXFileReference"},
		pbxobj.Item{Key: "fileEncoding", Value: f.FileEncoding},
		pbxobj.Item{Key: "lastKnownFileType", Value: f.LastKnownFileType},
		pbxobj.Item{Key: "name", Value: quoted(f.Basename)},
		pbxobj.Item{Key: "path", Value: quoted(f.Path)},
		pbxobj.Item{Key: "sourceTree", Value: f.SourceTree},
	)
	section := p.section("PBXFileReference")
	section.Set(f.FileRef, ref)
	section.Set(ToCommentKey(f.FileRef), f.Basename)
}

func (p *Project) addToBuildFileSection(f *resourceFile) {
	build := pbxobj.NewWithItems(
		pbxobj.Item{Key: "isa", Value: "PBXBuildFile"},
		pbxobj.Item{Key: "fileRef", Value: f.FileRef},
		pbxobj.Item{Key: ToCommentKey("fileRef"), Value: f.Basename},
	)
	section := p.section("PBXBuildFile")
	section.Set(f.Uuid, build)
	section.Set(ToCommentKey(f.Uuid), longComment(f))
}

func (p *Project) addToResourcesGroup(f *resourceFile) {
	group := p.groupByName(resourcesGroup)
	if group.IsEmpty() {
		group = p.createGroup(resourcesGroup)
	}
	addToList(group, "children", groupChild(f))
}

func (p *Project) addToResourcesBuildPhase(f *resourceFile) {
	phase := p.buildPhaseObject("PBXResourcesBuildPhase", resourcesGroup)
	addToList(phase, "files", pbxobj.NewWithItems(
		pbxobj.Item{Key: "value", Value: f.Uuid},
		pbxobj.Item{Key: "comment", Value: longComment(f)},
	))
}

func groupChild(f *resourceFile) pbxobj.Object {
	return pbxobj.NewWithItems(
		pbxobj.Item{Key: "value", Value: f.FileRef},
		pbxobj.Item{Key: "comment", Value: f.Basename},
	)
}

func longComment(f *resourceFile) string {
	return fmt.Sprintf("%s in %s", f.Basename, f.Group)
}

func (p *Project) groupByName(name string) pbxobj.Object {
	obj := pbxobj.New()
	section := p.section("PBXGroup")
	section.ForeachWithFilter(func(key string, val interface{}) pbxobj.IterateAction {
		if label, ok := val.(string); ok && label == name {
			obj = section.GetObject(FromCommentKey(key))
			return pbxobj.IterateBreak
		}
		return pbxobj.IterateContinue
	}, OnlyComments)
	return obj
}

// createGroup materializes a named group and hangs it off the main group.
func (p *Project) createGroup(name string) pbxobj.Object {
	key := p.generateUuid()
	group := pbxobj.NewWithItems(
		pbxobj.Item{Key: "isa", Value: "PBXGroup"},
		pbxobj.Item{Key: "children", Value: []interface{}{}},
		pbxobj.Item{Key: "name", Value: name},
		pbxobj.Item{Key: "sourceTree", Value: defaultSourceTree},
	)
	section := p.section("PBXGroup")
	section.Set(key, group)
	section.Set(ToCommentKey(key), name)
	if main := p.mainGroup(); !main.IsEmpty() {
		addToList(main, "children", pbxobj.NewWithItems(
			pbxobj.Item{Key: "value", Value: key},
			pbxobj.Item{Key: "comment", Value: name},
		))
	}
	return group
}

func (p *Project) mainGroup() pbxobj.Object {
	project := p.firstProject()
	return p.section("PBXGroup").GetObject(project.GetString("mainGroup"))
}

func (p *Project) firstProject() pbxobj.Object {
	obj := pbxobj.New()
	p.section("PBXProject").ForeachWithFilter(func(_ string, val interface{}) pbxobj.IterateAction {
		if o, ok := val.(pbxobj.Object); ok {
			obj = o
			return pbxobj.IterateBreak
		}
		return pbxobj.IterateContinue
	}, NonComments)
	return obj
}

func (p *Project) buildPhaseObject(isa, name string) pbxobj.Object {
	obj := pbxobj.New()
	section := p.section(isa)
	section.ForeachWithFilter(func(key string, val interface{}) pbxobj.IterateAction {
		if label, ok := val.(string); ok && label == name {
			obj = section.GetObject(FromCommentKey(key))
			return pbxobj.IterateBreak
		}
		return pbxobj.IterateContinue
	}, OnlyComments)
	return obj
}
