package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndexStatsCmd_PrintsCounts(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"index", "stats"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Documents: 2")
	assert.Contains(t, buf.String(), "Chunks:    12")
}

func TestIndexClearCmd_ForceSkipsConfirmation(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	mock := retrieverService.(*mockRetrieverService)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"index", "clear", "--force"})
	defer func() {
		rootCmd.SetArgs(nil)
		indexClearForce = false
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.True(t, mock.cleared)
	assert.Contains(t, buf.String(), "Index cleared")
}

func TestIndexClearCmd_AbortsWithoutConfirmation(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	mock := retrieverService.(*mockRetrieverService)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetIn(bytes.NewBufferString("n\n"))
	rootCmd.SetArgs([]string{"index", "clear"})
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.False(t, mock.cleared)
	assert.Contains(t, buf.String(), "Aborted")
}

func TestIndexDeleteCmd_DeletesDocument(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	mock := retrieverService.(*mockRetrieverService)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"index", "delete", "handbook.txt"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Equal(t, []string{"handbook.txt"}, mock.deleted)
}
