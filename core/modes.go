// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"strings"
)

// IndexMode selects the index family a query is run against.
type IndexMode int

const (
	IndexAuto IndexMode = iota
	IndexNormal
	IndexReverse
	IndexInflection
	IndexGrade
	IndexAnnot
)

var indexModeNames = [...]string{"auto", "normal", "reverse", "inflection", "grade", "annot"}

func (m IndexMode) String() string {
	if m < 0 || int(m) >= len(indexModeNames) {
		return fmt.Sprintf("IndexMode(%d)", int(m))
	}
	return indexModeNames[m]
}

// Valid reports whether m is a known mode.
func (m IndexMode) Valid() bool {
	return m >= 0 && int(m) < len(indexModeNames)
}

// ParseIndexMode parses an index mode token. The empty string means auto.
func ParseIndexMode(s string) (IndexMode, error) {
	i, err := parseMode(s, indexModeNames[:], "index")
	return IndexMode(i), err
}

// SearchMode selects the matching algorithm.
type SearchMode int

const (
	SearchAuto SearchMode = iota
	SearchExact
	SearchPrefix
	SearchSuffix
	SearchContain
	SearchWord
	SearchEdit
	SearchRelated
)

var searchModeNames = [...]string{"auto", "exact", "prefix", "suffix", "contain", "word", "edit", "related"}

func (m SearchMode) String() string {
	if m < 0 || int(m) >= len(searchModeNames) {
		return fmt.Sprintf("SearchMode(%d)", int(m))
	}
	return searchModeNames[m]
}

// Valid reports whether m is a known mode.
func (m SearchMode) Valid() bool {
	return m >= 0 && int(m) < len(searchModeNames)
}

// ParseSearchMode parses a search mode token. The empty string means auto.
func ParseSearchMode(s string) (SearchMode, error) {
	i, err := parseMode(s, searchModeNames[:], "search")
	return SearchMode(i), err
}

// ViewMode selects how much of each entry is rendered.
type ViewMode int

const (
	ViewAuto ViewMode = iota
	ViewFull
	ViewSimple
	ViewList
)

var viewModeNames = [...]string{"auto", "full", "simple", "list"}

func (m ViewMode) String() string {
	if m < 0 || int(m) >= len(viewModeNames) {
		return fmt.Sprintf("ViewMode(%d)", int(m))
	}
	return viewModeNames[m]
}

// Valid reports whether m is a known mode.
func (m ViewMode) Valid() bool {
	return m >= 0 && int(m) < len(viewModeNames)
}

// ParseViewMode parses a view mode token. The empty string means auto.
func ParseViewMode(s string) (ViewMode, error) {
	i, err := parseMode(s, viewModeNames[:], "view")
	return ViewMode(i), err
}

func parseMode(s string, names []string, kind string) (int, error) {
	token := strings.ToLower(strings.TrimSpace(s))
	if token == "" {
		return 0, nil
	}
	for i, name := range names {
		if token == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %s mode %q (want one of %s)",
		ErrInvalidMode, kind, s, strings.Join(names, ", "))
}

// Script is the writing system detected in a string.
type Script int

const (
	ScriptLatin Script = iota
	ScriptCJK
)

func (s Script) String() string {
	if s == ScriptCJK {
		return "cjk"
	}
	return "latin"
}
