package strings_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	pstrings "merx/pkg/platform/strings"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"nil input", nil, nil},
		{"empty input", []string{}, []string{}},
		{"trims whitespace", []string{"  books ", "\ttoys\n"}, []string{"books", "toys"}},
		{"drops empties", []string{"books", "", "   "}, []string{"books"}},
		{"first occurrence wins", []string{"books", "toys", "books"}, []string{"books", "toys"}},
		{"duplicate after trim", []string{" books", "books "}, []string{"books"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := pstrings.DedupeAndTrim(tc.in)
			if len(tc.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tc.want, got)
		})
	}
}
