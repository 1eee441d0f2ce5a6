package svn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const svnDiffSample = `Index: greeting.txt
===================================================================
--- greeting.txt	(.../trunk)	(revision 100)
+++ greeting.txt	(.../merge)	(working copy)
@@ -1,4 +1,5 @@
 hello
-old line
+new line
+another new line
 world
 tail
@@ -10,2 +11,2 @@
 context
-gone
+replaced
`

func TestParseUnifiedChanged(t *testing.T) {
	oldSet, newSet, err := parseUnifiedChanged(svnDiffSample)
	require.NoError(t, err)

	// Old side: "-old line" at old line 2, "-gone" at old line 11.
	assert.True(t, oldSet.Has(2))
	assert.True(t, oldSet.Has(11))
	assert.Len(t, oldSet, 2)

	// New side: "+new line" at 2, "+another new line" at 3, "+replaced" at 12.
	assert.True(t, newSet.Has(2))
	assert.True(t, newSet.Has(3))
	assert.True(t, newSet.Has(12))
	assert.Len(t, newSet, 3)
}

func TestParseUnifiedChangedHeaderVariants(t *testing.T) {
	// Headers with a plain timestamp, with no tab field at all, and a body
	// line that itself starts with "---" must all survive parsing.
	sample := "--- a.txt\t2024-05-01 10:00:00 +0800\n" +
		"+++ b.txt\n" +
		"@@ -1,2 +1,2 @@\n" +
		" keep\n" +
		"--- ruled line\twith tab\n" +
		"+--- ruled line\twith tab\n"
	oldSet, newSet, err := parseUnifiedChanged(sample)
	require.NoError(t, err)
	assert.True(t, oldSet.Has(2))
	assert.True(t, newSet.Has(2))
	assert.Len(t, oldSet, 1)
	assert.Len(t, newSet, 1)
}

func TestParseUnifiedChangedEmptyDiff(t *testing.T) {
	oldSet, newSet, err := parseUnifiedChanged("")
	require.NoError(t, err)
	assert.Empty(t, oldSet)
	assert.Empty(t, newSet)
	assert.NotNil(t, oldSet, "identical files are an empty set, not unknown")
	assert.NotNil(t, newSet)
}

func TestLineSetSemantics(t *testing.T) {
	var unknown LineSet
	assert.False(t, unknown.Has(1))

	full := FullRange(3)
	assert.Len(t, full, 3)
	assert.True(t, full.Has(1))
	assert.True(t, full.Has(3))
	assert.False(t, full.Has(4))
}

func TestParseBlameLine(t *testing.T) {
	b := parseBlameLine("  4564   alice 2024-05-01 10:00:00 +0800 (Wed, 01 May 2024) some code")
	assert.Equal(t, "4564", b.Rev)
	assert.Equal(t, "alice", b.Author)
	assert.Equal(t, "2024-05-01 10:00:00 +0800", b.Date)
	assert.True(t, b.Valid())

	assert.False(t, parseBlameLine("").Valid())
	assert.False(t, parseBlameLine("   -").Valid())
}

func TestParseInfoFields(t *testing.T) {
	fields := parseInfoFields("Path: src/a.go\nLast Changed Rev: 4564\nURL: https://example/repo\n")
	assert.Equal(t, "src/a.go", fields["path"])
	assert.Equal(t, "4564", fields["last_changed_rev"])
	assert.Equal(t, "https://example/repo", fields["url"])
}

func TestParseLogXML(t *testing.T) {
	raw := `<?xml version="1.0"?>
<log>
  <logentry revision="102">
    <author>bob</author>
    <date>2024-05-02T08:00:00.000000Z</date>
    <paths><path action="M">/branches/feat/a.go</path></paths>
    <msg>feat: add thing r101</msg>
  </logentry>
  <logentry revision="101">
    <author>alice</author>
    <date>2024-05-01T08:00:00.000000Z</date>
    <paths><path action="A">/branches/feat/b.go</path></paths>
    <msg>[payment] initial</msg>
  </logentry>
</log>`
	entries, ok := parseLogXML(raw)
	require.True(t, ok)
	require.Len(t, entries, 2)
	assert.Equal(t, "102", entries[0].Revision)
	assert.Equal(t, "bob", entries[0].Author)
	assert.Equal(t, []string{"/branches/feat/a.go"}, entries[0].Paths)
	assert.Equal(t, "[payment] initial", entries[1].Msg)

	_, ok = parseLogXML("not xml")
	assert.False(t, ok)
}
