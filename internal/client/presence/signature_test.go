package presence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name    string
		in      []int64
		want    []int64
		wantSig string
	}{
		{name: "nil", in: nil, want: []int64{}, wantSig: ""},
		{name: "empty", in: []int64{}, want: []int64{}, wantSig: ""},
		{name: "sorted", in: []int64{1, 2, 3}, want: []int64{1, 2, 3}, wantSig: "1,2,3"},
		{name: "unsorted", in: []int64{3, 1, 2}, want: []int64{1, 2, 3}, wantSig: "1,2,3"},
		{name: "duplicates", in: []int64{2, 2, 1, 1}, want: []int64{1, 2}, wantSig: "1,2"},
		{name: "single", in: []int64{42}, want: []int64{42}, wantSig: "42"},
		{name: "negatives", in: []int64{5, -1}, want: []int64{-1, 5}, wantSig: "-1,5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, sig := Canonicalize(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantSig, sig)
		})
	}
}

func TestCanonicalize_IdentityEqualSetsShareSignature(t *testing.T) {
	_, a := Canonicalize([]int64{1, 2, 3})
	_, b := Canonicalize([]int64{3, 2, 1, 2})
	assert.Equal(t, a, b)

	_, c := Canonicalize([]int64{1, 2, 3, 4})
	assert.NotEqual(t, a, c)
}
