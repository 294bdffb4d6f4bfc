package sales

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTable_SortsStably(t *testing.T) {
	table := NewTable([]Record{
		rec(t, "1", "2021-01-02", "south"),
		rec(t, "2", "2021-01-01", "west"),
		rec(t, "3", "2021-01-02", "north"),
		rec(t, "4", "2021-01-01", "east"),
		rec(t, "5", "2021-01-02", "north"),
	})

	got := make([]string, 0, table.Len())
	for _, r := range table.Records() {
		got = append(got, r.Date.Format(DateLayout)+" "+r.Region+" "+r.Amount.String())
	}
	assert.Equal(t, []string{
		"2021-01-01 east 4",
		"2021-01-01 west 2",
		"2021-01-02 north 3",
		"2021-01-02 north 5",
		"2021-01-02 south 1",
	}, got)

	first, last, ok := table.Bounds()
	require.True(t, ok)
	assert.Equal(t, "2021-01-01", first.Format(DateLayout))
	assert.Equal(t, "2021-01-02", last.Format(DateLayout))
}

func TestLocalStorage(t *testing.T) {
	storage := NewLocalStorage()

	_, err := storage.Load()
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, storage.Save(nil), ErrNilTable)

	table := scenarioTable(t)
	require.NoError(t, storage.Save(table))
	loaded, err := storage.Load()
	require.NoError(t, err)
	assert.Same(t, table, loaded)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, scenarioTable(t)))

	assert.Equal(t, "sales,date,region\n6.00,2021-01-10,north\n9.00,2021-01-20,north\n", buf.String())
}

func TestReadCSV(t *testing.T) {
	table, err := ReadCSV(strings.NewReader("sales,date,region\n9.00,2021-01-20,North\n6.00,2021-01-10,north\n"))
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())

	records := table.Records()
	assert.Equal(t, "2021-01-10", records[0].Date.Format(DateLayout))
	assert.Equal(t, "north", records[1].Region)
	assert.Equal(t, "9.00", records[1].Amount.StringFixed(2))
}

func TestReadCSV_Malformed(t *testing.T) {
	cases := map[string]string{
		"empty":      "",
		"bad header": "amount,date,region\n1,2021-01-01,north\n",
		"bad amount": "sales,date,region\nabc,2021-01-01,north\n",
		"bad date":   "sales,date,region\n1.00,01/01/2021,north\n",
		"short row":  "sales,date,region\n1.00,2021-01-01\n",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(input))
			assert.ErrorIs(t, err, ErrMalformedArtifact)
		})
	}
}

func TestFileStorage_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "sales.csv")
	storage := NewFileStorage(path)

	_, err := storage.Load()
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, storage.Save(mixedTable(t)))
	loaded, err := storage.Load()
	require.NoError(t, err)
	assert.Equal(t, mixedTable(t).Len(), loaded.Len())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "Temporary files must not be left behind")
}

func TestFileStorage_SaveIsByteIdentical(t *testing.T) {
	dir := t.TempDir()
	a, b := filepath.Join(dir, "a.csv"), filepath.Join(dir, "b.csv")

	require.NoError(t, NewFileStorage(a).Save(mixedTable(t)))
	require.NoError(t, NewFileStorage(b).Save(mixedTable(t)))

	first, err := os.ReadFile(a)
	require.NoError(t, err)
	second, err := os.ReadFile(b)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
