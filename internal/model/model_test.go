package model

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in     string
		want   Category
		wantOK bool
	}{
		{in: "Federal", want: CategoryFederal, wantOK: true},
		{in: "state", want: CategoryState, wantOK: true},
		{in: " CORPORATE ", want: CategoryCorporate, wantOK: true},
		{in: "other", want: CategoryOther, wantOK: true},
		{in: "all", want: CategoryAll, wantOK: true},
		{in: "local", want: "", wantOK: false},
		{in: "", want: "", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseCategory(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("category (-want +got):\n%s", diff)
			}
			if ok != tt.wantOK {
				t.Errorf("ok = %v, want %v", ok, tt.wantOK)
			}
		})
	}
}

func TestNormalizeCategory(t *testing.T) {
	tests := map[string]Category{
		"Federal":    CategoryFederal,
		"state":      CategoryState,
		"Foundation": CategoryOther,
		"All":        CategoryOther,
		"":           CategoryOther,
	}
	for in, want := range tests {
		if diff := cmp.Diff(want, NormalizeCategory(in)); diff != "" {
			t.Errorf("NormalizeCategory(%q) (-want +got):\n%s", in, diff)
		}
	}
}

func TestLookupState(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{in: "Texas", want: "Texas", wantOK: true},
		{in: "texas", want: "Texas", wantOK: true},
		{in: "  new   york ", want: "New York", wantOK: true},
		{in: "Puerto Rico", wantOK: false},
		{in: "", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := LookupState(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("state (-want +got):\n%s", diff)
			}
			if ok != tt.wantOK {
				t.Errorf("ok = %v, want %v", ok, tt.wantOK)
			}
		})
	}

	if diff := cmp.Diff(50, len(USStates)); diff != "" {
		t.Errorf("state count (-want +got):\n%s", diff)
	}
}
