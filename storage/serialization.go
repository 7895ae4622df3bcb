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


package storage

import (
	"fmt"
	"math"
	"slices"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/lexidict/core"
)

// recordVersion prefixes every encoded record.
const recordVersion = 1

// MarshalEntries serializes an ordered forward record.
func MarshalEntries(entries []core.Entry) []byte {
	e := &encoder{}
	e.int(recordVersion)
	e.int(len(entries))
	for i := range entries {
		e.entry(&entries[i])
	}
	return e.buf
}

// UnmarshalEntries deserializes a forward record. Any decoding failure is
// reported as ErrMalformedRecord.
func UnmarshalEntries(data []byte) ([]core.Entry, error) {
	d := &decoder{bs: data}
	d.version()
	count := d.count()
	var entries []core.Entry
	if count > 0 {
		entries = make([]core.Entry, 0, count)
	}
	for i := 0; i < count && d.err == nil; i++ {
		entries = append(entries, d.entry())
	}
	if err := d.finish(); err != nil {
		return nil, err
	}
	return entries, nil
}

// MarshalStrings serializes an ordered reverse or inflection record.
func MarshalStrings(values []string) []byte {
	e := &encoder{}
	e.int(recordVersion)
	e.strings(values)
	return e.buf
}

// UnmarshalStrings deserializes a reverse or inflection record.
func UnmarshalStrings(data []byte) ([]string, error) {
	d := &decoder{bs: data}
	d.version()
	values := d.strings()
	if err := d.finish(); err != nil {
		return nil, err
	}
	return values, nil
}

// MarshalCount serializes a non-negative counter such as a ranked list length.
func MarshalCount(n int) []byte {
	e := &encoder{}
	e.int(n)
	return e.buf
}

// UnmarshalCount deserializes a counter written by MarshalCount.
func UnmarshalCount(data []byte) (int, error) {
	d := &decoder{bs: data}
	n := d.int()
	if err := d.finish(); err != nil {
		return 0, err
	}
	return n, nil
}

type encoder struct {
	buf []byte
}

func (e *encoder) grow(n int) []byte {
	l := len(e.buf)
	e.buf = slices.Grow(e.buf, n)[:l+n]
	return e.buf[l:]
}

func (e *encoder) int(v int) {
	varint.Int.Marshal(v, e.grow(varint.Int.Size(v)))
}

func (e *encoder) float(v float64) {
	bits := math.Float64bits(v)
	varint.Uint64.Marshal(bits, e.grow(varint.Uint64.Size(bits)))
}

func (e *encoder) string(v string) {
	ord.String.Marshal(v, e.grow(ord.String.Size(v)))
}

func (e *encoder) strings(vs []string) {
	e.int(len(vs))
	for _, v := range vs {
		e.string(v)
	}
}

func (e *encoder) entry(en *core.Entry) {
	e.string(en.Word)
	e.string(en.Key)
	e.string(en.Pronunciation)
	in := &en.Inflections
	for _, s := range [...]string{
		in.NounPlural, in.VerbSingular, in.VerbPresentParticiple, in.VerbPast,
		in.VerbPastParticiple, in.AdjectiveComparative, in.AdjectiveSuperlative,
		in.AdverbComparative, in.AdverbSuperlative,
	} {
		e.string(s)
	}
	e.int(len(en.Senses))
	for i := range en.Senses {
		s := &en.Senses[i]
		e.string(string(s.Label))
		e.string(string(s.POS))
		e.string(s.Text)
		e.strings(s.Synonyms)
		e.strings(s.Antonyms)
		e.strings(s.Hypernyms)
		e.strings(s.Hyponyms)
	}
	e.float(en.Probability)
	e.strings(en.Translations)
	e.strings(en.Related)
	e.strings(en.Parents)
	e.strings(en.Children)
	e.strings(en.Cooccurrence)
}

// decoder reads fields sequentially and latches the first error.
type decoder struct {
	bs  []byte
	n   int
	err error
}

func (d *decoder) version() {
	v := d.int()
	if d.err == nil && v != recordVersion {
		d.err = fmt.Errorf("unsupported record version %d", v)
	}
}

func (d *decoder) int() int {
	if d.err != nil {
		return 0
	}
	v, n, err := varint.Int.Unmarshal(d.bs[d.n:])
	d.n += n
	d.err = err
	return v
}

// count reads a length prefix and rejects values that cannot fit in the remaining bytes.
func (d *decoder) count() int {
	c := d.int()
	if d.err == nil && (c < 0 || c > len(d.bs)-d.n) {
		d.err = fmt.Errorf("%w: length %d exceeds %d remaining bytes", ErrTruncatedData, c, len(d.bs)-d.n)
		return 0
	}
	return c
}

func (d *decoder) float() float64 {
	if d.err != nil {
		return 0
	}
	bits, n, err := varint.Uint64.Unmarshal(d.bs[d.n:])
	d.n += n
	d.err = err
	return math.Float64frombits(bits)
}

func (d *decoder) string() string {
	if d.err != nil {
		return ""
	}
	v, n, err := ord.String.Unmarshal(d.bs[d.n:])
	d.n += n
	d.err = err
	return v
}

func (d *decoder) strings() []string {
	c := d.count()
	if c == 0 || d.err != nil {
		return nil
	}
	vs := make([]string, 0, c)
	for i := 0; i < c && d.err == nil; i++ {
		vs = append(vs, d.string())
	}
	return vs
}

func (d *decoder) entry() core.Entry {
	var en core.Entry
	en.Word = d.string()
	en.Key = d.string()
	en.Pronunciation = d.string()
	in := &en.Inflections
	for _, slot := range [...]*string{
		&in.NounPlural, &in.VerbSingular, &in.VerbPresentParticiple, &in.VerbPast,
		&in.VerbPastParticiple, &in.AdjectiveComparative, &in.AdjectiveSuperlative,
		&in.AdverbComparative, &in.AdverbSuperlative,
	} {
		*slot = d.string()
	}
	if c := d.count(); c > 0 {
		en.Senses = make([]core.Sense, 0, c)
		for i := 0; i < c && d.err == nil; i++ {
			en.Senses = append(en.Senses, core.Sense{
				Label:     core.Label(d.string()),
				POS:       core.PartOfSpeech(d.string()),
				Text:      d.string(),
				Synonyms:  d.strings(),
				Antonyms:  d.strings(),
				Hypernyms: d.strings(),
				Hyponyms:  d.strings(),
			})
		}
	}
	en.Probability = d.float()
	en.Translations = d.strings()
	en.Related = d.strings()
	en.Parents = d.strings()
	en.Children = d.strings()
	en.Cooccurrence = d.strings()
	return en
}

// finish reports the latched error, or trailing garbage, as ErrMalformedRecord.
func (d *decoder) finish() error {
	if d.err == nil && d.n != len(d.bs) {
		d.err = fmt.Errorf("%d trailing bytes", len(d.bs)-d.n)
	}
	if d.err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedRecord, d.err)
	}
	return nil
}
