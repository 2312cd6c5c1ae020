package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithIdentifiers(t *testing.T) {
	sources := []DependencySource{
		{Kind: SourceScan, Root: "libs"},
		{Kind: SourceNamed, ID: "com.squareup.okio:okio:3.6.0"},
		{Kind: SourceScan, Root: "vendor"},
		{Kind: SourceScan, Root: "libs", Include: []string{"**/*.aar"}},
		{Kind: SourceScan, Root: "libs", ID: "android-libs"},
	}

	got := WithIdentifiers(sources)

	ids := make([]string, 0, len(got))
	for _, s := range got {
		ids = append(ids, s.Identifier())
	}
	assert.Equal(t, []string{
		"scan[0]:libs",
		"com.squareup.okio:okio:3.6.0",
		"scan:vendor",
		"scan[3]:libs",
		"android-libs",
	}, ids)
	assert.Empty(t, sources[0].ID)
}
