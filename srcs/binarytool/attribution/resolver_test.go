// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

package attribution

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bloattool/srcs/binarytool/archive"
	"bloattool/srcs/binarytool/symbols"
)

func legacy(mangled, complete string) symbols.RawSymbol {
	return symbols.RawSymbol{
		MangledName:   mangled,
		DemangledName: complete,
		TrimmedName:   symbols.StripHash(complete),
		Scheme:        symbols.Legacy,
	}
}

func TestResolve(t *testing.T) {
	const traitImpl = "<euclid::rect::TypedRect<f64> as resvg::geom::RectExt>::x"

	index := archive.NewIndex(
		[]symbols.UnitName{"serde", "resvg", "cc", "fern"},
		map[symbols.UnitName][]string{
			"serde": {"_ZN5serde3ser9Serialize9serialize17h0123456789abcdefE"},
			"resvg": {traitImpl},
			"cc":    {"<std::collections::hash::map::DefaultHasher as core::hash::Hasher>::finish"},
			"fern":  {"<std::collections::hash::map::DefaultHasher as core::hash::Hasher>::finish"},
		})
	r := NewResolver(index,
		[]symbols.UnitName{"std", "core", "alloc"},
		[]symbols.UnitName{"serde", "resvg", "euclid", "cc", "fern", "regex"})

	tests := []struct {
		name string
		sym  symbols.RawSymbol
		want Result
	}{
		{
			name: "index hit",
			sym: legacy("_ZN5serde3ser9Serialize9serialize17h0123456789abcdefE",
				"serde::ser::Serialize::serialize::h0123456789abcdef"),
			want: Result{Unit: "serde", Exact: true},
		},
		{
			name: "ambiguous trait impl corroborated by the index",
			sym:  legacy("_ZN81_$LT$euclid..rect..TypedRect$LT$f64$GT$$u20$as$u20$resvg..geom..RectExt$GT$1xE", traitImpl),
			want: Result{Unit: "resvg", Exact: true},
		},
		{
			name: "ambiguous trait impl not corroborated",
			sym: legacy("m1",
				"<std::collections::hash::map::DefaultHasher as core::hash::Hasher>::finish"),
			want: Result{Unit: "std", Exact: false},
		},
		{
			name: "ambiguous trait impl absent from the index",
			sym:  legacy("m2", "<regex::Regex as core::fmt::Debug>::fmt::h0123456789abcdef"),
			want: Result{Unit: "regex", Exact: false},
		},
		{
			name: "type parameter",
			sym:  legacy("m3", "<T as core::fmt::Display>::fmt::h92003a61120a7e1a"),
			want: Result{Unit: "core", Exact: true},
		},
		{
			name: "same unit on both sides",
			sym:  legacy("m4", "<&alloc::vec::Vec<T> as alloc::vec::SpecExtend>::spec_extend"),
			want: Result{Unit: "alloc", Exact: true},
		},
		{
			name: "plain path",
			sym:  legacy("m5", "regex::compile::Compiler::new::h0123456789abcdef"),
			want: Result{Unit: "regex", Exact: true},
		},
		{
			name: "reference decoration",
			sym:  legacy("m6", "<&mut regex::Regex>::fmt"),
			want: Result{Unit: "regex", Exact: true},
		},
		{
			name: "no path",
			sym:  legacy("local_fn", "local_fn"),
			want: Result{Unit: symbols.UnknownUnit, Exact: true},
		},
		{
			name: "trait impl without paths",
			sym:  legacy("_ZN23_$LT$T$u20$as$u20$U$GT$3fmt17h0123456789abcdefE", "<T as U>::fmt"),
			want: Result{Unit: symbols.UnknownUnit, Exact: true},
		},
		{
			name: "versioned with embedded unit",
			sym: symbols.RawSymbol{MangledName: "_RNvCs1_5mylib3foo", TrimmedName: "mylib::foo",
				Scheme: symbols.Versioned, EmbeddedUnit: "mylib"},
			want: Result{Unit: "mylib", Exact: true},
		},
		{
			name: "versioned known unit",
			sym: symbols.RawSymbol{MangledName: "_RNvMs_x", TrimmedName: "regex::Regex::new",
				Scheme: symbols.Versioned},
			want: Result{Unit: "regex", Exact: false},
		},
		{
			name: "versioned std unit",
			sym: symbols.RawSymbol{MangledName: "_RNvMs_y", TrimmedName: "core::fmt::write",
				Scheme: symbols.Versioned},
			want: Result{Unit: "core", Exact: false},
		},
		{
			name: "versioned unknown unit",
			sym: symbols.RawSymbol{MangledName: "_RNvMs_z", TrimmedName: "random::thing",
				Scheme: symbols.Versioned},
			want: Result{Unit: symbols.UnknownUnit, Exact: true},
		},
		{
			name: "unknown scheme",
			sym:  symbols.RawSymbol{MangledName: "memcpy", DemangledName: "memcpy", Scheme: symbols.Unknown},
			want: Result{Unit: symbols.UnknownUnit, Exact: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Resolve(tt.sym)
			assert.Equal(t, tt.want, got)
			// Resolution is deterministic.
			assert.Equal(t, got, r.Resolve(tt.sym))
		})
	}
}

func TestMergeStd(t *testing.T) {
	r := NewResolver(nil, []symbols.UnitName{"std", "core", "alloc"}, []symbols.UnitName{"serde"})

	assert.Equal(t, symbols.StdUnit, r.MergeStd("core"))
	assert.Equal(t, symbols.StdUnit, r.MergeStd("std"))
	assert.Equal(t, symbols.UnitName("serde"), r.MergeStd("serde"))
	assert.Equal(t, symbols.UnknownUnit, r.MergeStd(symbols.UnknownUnit))

	got := r.ResolveMerged(legacy("m", "alloc::raw_vec::finish_grow::h0123456789abcdef"))
	assert.Equal(t, Result{Unit: symbols.StdUnit, Exact: true}, got)
}

func TestUnitFromPath(t *testing.T) {
	tests := map[string]string{
		"core::ptr::drop_in_place":                 "core",
		"<euclid::rect::TypedRect<f64>":            "euclid",
		"<&&[u8] as core::fmt::Debug>::fmt":        "core",
		"<<alloc::vec::Vec<T> as Clone>::clone":    "alloc",
		"main":                                     "",
		"<impl core::fmt::Debug for u32>::fmt":     "core",
		"resvg::geom::RectExt>::x":                 "resvg",
		"<dyn core::any::Any as core::fmt::Debug>": "core",
	}
	for in, want := range tests {
		assert.Equal(t, want, unitFromPath(in), in)
	}
}
