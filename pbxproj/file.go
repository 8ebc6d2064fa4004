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
	"path/filepath"
	"regexp"
	"strings"
)

const (
	defaultSourceTree   = `"<group>"`
	defaultFileEncoding = 4
	defaultFileType     = "text"
	resourcesGroup      = "Resources"
)

var fileTypeByExtension = map[string]string{
	"entitlements": "text.plist.entitlements",
	"json":         "text.json",
	"plist":        "text.plist.xml",
	"png":          "image.png",
	"storyboard":   "file.storyboard",
	"strings":      "text.plist.strings",
	"xcassets":     "folder.assetcatalog",
	"xcconfig":     "text.xcconfig",
	"xib":          "file.xib",
}

var unquotedRegex = regexp.MustCompile(`(^")|("$)`)

func unquoted(text string) string {
	if text == "" {
		return text
	}
	return unquotedRegex.ReplaceAllString(text, "")
}

func quoted(text string) string {
	return `"` + text + `"`
}

// resourceFile describes one file reference about to be inserted. The
// identifiers are allocated by the project when it is added.
type resourceFile struct {
	Basename          string
	Path              string
	LastKnownFileType string
	SourceTree        string
	FileEncoding      int
	Group             string
	FileRef           string
	Uuid              string
}

func newResourceFile(filePath string) *resourceFile {
	return &resourceFile{
		Basename:          filepath.Base(filePath),
		Path:              filepath.ToSlash(filePath),
		LastKnownFileType: detectFileType(filePath),
		SourceTree:        defaultSourceTree,
		FileEncoding:      defaultFileEncoding,
		Group:             resourcesGroup,
	}
}

func detectFileType(filePath string) string {
	extension := strings.TrimPrefix(filepath.Ext(filePath), ".")
	filetype, found := fileTypeByExtension[unquoted(extension)]
	if !found {
		return defaultFileType
	}
	return filetype
}
