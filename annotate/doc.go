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

// Package annotate overlays documents with dictionary glosses.
//
// Each paragraph is split into word and separator tokens and scanned once,
// left to right, without backtracking. At every word the Annotator tries
// phrase windows of K words down to one and keeps the longest window the
// dictionary knows, even when a shorter window would have a more probable
// entry. Windows never cross punctuation.
//
// A match carries ruby text (the leading translations of the most probable
// entry) and a popup with its full senses. Pages are annotated
// independently on a worker pool; a page's scan always runs on a single
// goroutine.
//
// Latin text is split on letters, digits, apostrophes and inner hyphens.
// Japanese text is split with kagome and the IPA dictionary; base forms of
// conjugated tokens are tried when the surface form has no entry.
package annotate
