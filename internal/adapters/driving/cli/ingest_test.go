package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnly-labs/learnly-engine/internal/core/domain"
)

func TestIngestCmd_File(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("ingest", "--course", "4", "/tmp/notes/Cell Biology.pdf")

	require.NoError(t, err)
	assert.Equal(t, "/tmp/notes/Cell Biology.pdf", ts.ingest.gotPath)
	assert.Equal(t, "Cell Biology", ts.ingest.gotTitle)
	assert.Contains(t, out, "Indexed course_4_Cell_Biology")
}

func TestIngestCmd_TitleFlag(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("ingest", "-c", "4", "-t", "Week 1", "notes.md")

	require.NoError(t, err)
	assert.Equal(t, "Week 1", ts.ingest.gotTitle)
}

func TestIngestCmd_Text(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("ingest", "--course", "2", "--document", "9", "--title", "Intro", "--text", "Cells are small.")

	require.NoError(t, err)
	assert.Equal(t, domain.IngestRequest{CourseID: 2, DocumentID: 9, Title: "Intro", Text: "Cells are small."}, ts.ingest.gotReq)
	assert.Contains(t, out, "Indexed course_2_Intro")
}

func TestIngestCmd_TextNeedsTitle(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("ingest", "--course", "2", "--text", "Cells are small.")

	assert.EqualError(t, err, "--title is required with --text")
}

func TestIngestCmd_NeedsInput(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("ingest", "--course", "2")

	assert.EqualError(t, err, "a file or --text is required")
}

func TestIngestCmd_Failure(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.ingest.err = &domain.IngestError{StoreID: "course_2_x", Err: domain.ErrNoExtractableText}

	_, err := executeCommand("ingest", "--course", "2", "x.bin")

	assert.ErrorIs(t, err, domain.ErrNoExtractableText)
}

func TestTitleFromPath(t *testing.T) {
	assert.Equal(t, "report", titleFromPath("/a/b/report.pdf"))
	assert.Equal(t, "archive.tar", titleFromPath("archive.tar.gz"))
	assert.Equal(t, "README", titleFromPath("README"))
}
