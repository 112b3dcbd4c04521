package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBank = `questions:
  - question_text: Which organelle makes ATP?
    question_type: multiple_choice
    options: [Nucleus, Mitochondria]
    correct_answer: Mitochondria
    points: 1
  - question_text: Name the green pigment.
    question_type: short_answer
    correct_answer: chlorophyll
  - question_text: Plants release oxygen.
    question_type: true_false
    correct_answer: "true"
    points: 0
`

const testSheet = `answers:
  - question_id: 1
    student_answer: mitochondria
  - question_id: 2
    student_answer: carotene
  - question_id: 3
    student_answer: "True"
`

func writeGradeFiles(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	bank := filepath.Join(dir, "bank.yaml")
	sheet := filepath.Join(dir, "answers.yaml")
	require.NoError(t, os.WriteFile(bank, []byte(testBank), 0o600))
	require.NoError(t, os.WriteFile(sheet, []byte(testSheet), 0o600))
	return bank, sheet
}

func TestGradeCmd_Grades(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	bank, sheet := writeGradeFiles(t)

	out, err := executeCommand("grade", bank, sheet)

	require.NoError(t, err)
	require.Len(t, ts.grading.gotQuestions, 3)
	assert.Equal(t, int64(2), ts.grading.gotQuestions[1].ID)
	assert.InDelta(t, 1.0, ts.grading.gotQuestions[1].Points, 0.001)
	assert.Zero(t, ts.grading.gotQuestions[2].Points)
	assert.False(t, ts.grading.recorded)
	assert.Contains(t, out, "1. correct")
	assert.Contains(t, out, "2. wrong, expected chlorophyll")
	assert.Contains(t, out, "3. correct")
	assert.Contains(t, out, "Score: 1.00/2.00 (50.0%)")
	assert.NotContains(t, out, "Competency")
}

func TestGradeCmd_Records(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.grading.competency = 61
	bank, sheet := writeGradeFiles(t)

	out, err := executeCommand("grade", "--student", "5", "--quiz", "12", bank, sheet)

	require.NoError(t, err)
	assert.True(t, ts.grading.recorded)
	assert.Contains(t, out, "Competency: 61")
}

func TestGradeCmd_JSON(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	bank, sheet := writeGradeFiles(t)

	out, err := executeCommand("grade", "--json", bank, sheet)

	require.NoError(t, err)
	assert.Contains(t, out, `"percentage": 50`)
	assert.NotContains(t, out, `"competency"`)
}

func TestGradeCmd_MissingFile(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("grade", "/nonexistent/bank.yaml", "/nonexistent/answers.yaml")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}

func TestGradeCmd_BadYAML(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("questions: [unclosed"), 0o600))

	_, err := executeCommand("grade", path, path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
}
