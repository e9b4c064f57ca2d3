// internal/output/excel_test.go
package output

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExcelWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.xlsx")

	w, err := NewExcelWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.Write(context.Background(), sampleRun()))
	require.NoError(t, w.Write(context.Background(), failedRun()))
	require.NoError(t, w.Close())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{ExcelProfileSheet, ExcelPostSheet}, f.GetSheetList())

	profiles, err := f.GetRows(ExcelProfileSheet)
	require.NoError(t, err)
	require.Len(t, profiles, 3)
	assert.Equal(t, excelProfileHeader, profiles[0])
	assert.Equal(t, "creator", profiles[1][2])
	assert.Equal(t, "1500", profiles[1][4])
	assert.Equal(t, "ghost", profiles[2][2])

	posts, err := f.GetRows(ExcelPostSheet)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, "7234567890123456789", posts[1][3])
	assert.Equal(t, "#beach #sun", posts[1][9])
}

func TestExcelWriter_RequiresPath(t *testing.T) {
	_, err := NewExcelWriter("")
	assert.Error(t, err)
}
