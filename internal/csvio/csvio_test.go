package csvio

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/activityfilter/internal/domain"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadParsesHeaderAndRows(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "in.csv", "activity_type,hr,note\nRunning,120,\"easy, steady\"\n\nWalking,80,\n")

	ds, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"activity_type", "hr", "note"}, ds.Columns)
	require.Equal(t, [][]string{
		{"Running", "120", "easy, steady"},
		{"Walking", "80", ""},
	}, ds.Rows)
}

func TestLoadStripsByteOrderMark(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bom.csv", "\ufeffactivity_type,hr\nRunning,120\n")

	ds, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 0, ds.ColumnIndex("activity_type"))
}

func TestDecodeKeepsQuotedCRLF(t *testing.T) {
	ds, err := Decode(strings.NewReader("activity_type,note\nRunning,\"line1\r\nline2\"\nRunning,\"only\nlf\"\n"))
	require.NoError(t, err)
	require.Equal(t, "line1\r\nline2", ds.Rows[0][1])
	require.Equal(t, "only\nlf", ds.Rows[1][1])
}

func TestDecodeCRLFRecordsAreNotFieldData(t *testing.T) {
	ds, err := Decode(strings.NewReader("activity_type,hr\r\nRunning,120\r\nWalking,80\r\n"))
	require.NoError(t, err)
	require.Equal(t, []string{"activity_type", "hr"}, ds.Columns)
	require.Equal(t, [][]string{{"Running", "120"}, {"Walking", "80"}}, ds.Rows)
}

func TestDecodeParseErrorLineAfterQuotedCRLF(t *testing.T) {
	_, err := Decode(strings.NewReader("activity_type,note\nRunning,\"a\r\nb\"\nRunning,x,extra\n"))
	require.ErrorIs(t, err, domain.ErrParse)
	require.Contains(t, err.Error(), "line 4")
}

func TestSaveRoundTripKeepsQuotedCRLF(t *testing.T) {
	dir := t.TempDir()
	content := "activity_type,note\nRunning,\"line1\r\nline2\"\n"
	in := writeFile(t, dir, "in.csv", content)
	out := filepath.Join(dir, "out.csv")

	ds, err := Load(in)
	require.NoError(t, err)
	require.NoError(t, Save(out, ds))

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, content, string(raw))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	require.ErrorIs(t, err, domain.ErrFileNotFound)
}

func TestLoadRejectsMalformedInput(t *testing.T) {
	cases := map[string]string{
		"empty":           "",
		"ragged row":      "activity_type,hr\nRunning,120,extra\n",
		"bare quote":      "activity_type,hr\nRun\"ning,120\n",
		"duplicate names": "hr,hr\n1,2\n",
		"blank header":    "\n\n",
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "bad.csv", content)
			_, err := Load(path)
			require.ErrorIs(t, err, domain.ErrParse)
		})
	}
}

func TestEncodeQuotesOnlyWhenNeeded(t *testing.T) {
	ds := domain.Dataset{
		Columns: []string{"activity_type", "note"},
		Rows: [][]string{
			{"Running", "plain"},
			{"Running", "has, comma"},
			{"Running", "say \"hi\""},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, ds))
	require.Equal(t, "activity_type,note\nRunning,plain\nRunning,\"has, comma\"\nRunning,\"say \"\"hi\"\"\"\n", buf.String())
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := domain.Dataset{
		Columns: []string{"activity_type", "hr"},
		Rows:    [][]string{{"Running", "120"}, {"Running", "130"}},
	}
	out := filepath.Join(dir, "running_only.csv")

	require.NoError(t, Save(out, in))

	got, err := Load(out)
	require.NoError(t, err)
	require.Equal(t, in, got)

	info, err := os.Stat(out)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(outputMode), info.Mode().Perm())
}

func TestSaveOverwritesExistingOutput(t *testing.T) {
	dir := t.TempDir()
	out := writeFile(t, dir, "running_only.csv", strings.Repeat("stale,data\n", 100))

	require.NoError(t, Save(out, domain.Dataset{Columns: []string{"activity_type"}, Rows: [][]string{}}))

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, "activity_type\n", string(raw))
}

func TestSaveFailsForMissingDirectory(t *testing.T) {
	out := filepath.Join(t.TempDir(), "missing", "running_only.csv")

	err := Save(out, domain.Dataset{Columns: []string{"activity_type"}})
	require.ErrorIs(t, err, domain.ErrWrite)
	_, statErr := os.Stat(out)
	require.True(t, os.IsNotExist(statErr))
}

func TestSaveLeavesNoTempFileOnFailure(t *testing.T) {
	dir := t.TempDir()
	// A directory at the destination makes the final rename fail.
	out := filepath.Join(dir, "running_only.csv")
	require.NoError(t, os.Mkdir(out, 0o755))

	err := Save(out, domain.Dataset{Columns: []string{"activity_type"}})
	require.ErrorIs(t, err, domain.ErrWrite)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "running_only.csv", entries[0].Name())
}
