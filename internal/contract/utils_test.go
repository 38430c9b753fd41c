package contract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/huangsam/healthmerge/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetStatusLabel(t *testing.T) {
	assert.Equal(t, "ok", GetStatusLabel(schema.MetricOK, false))
	assert.Equal(t, "no_qualifying_days", GetStatusLabel(schema.NoQualifyingDays, false))

	orig := color.NoColor
	color.NoColor = false
	defer func() { color.NoColor = orig }()
	colored := GetStatusLabel(schema.MetricOK, true)
	assert.Contains(t, colored, "ok")
	assert.NotEqual(t, "ok", colored, "expected ANSI escape codes")
}

func TestGetReasonLabel(t *testing.T) {
	for _, reason := range schema.AllRejectReasons {
		t.Run(string(reason), func(t *testing.T) {
			assert.Equal(t, string(reason), GetReasonLabel(reason, false))
			assert.Contains(t, GetReasonLabel(reason, true), string(reason))
		})
	}
	assert.Contains(t, GetReasonLabel("Other", true), "Other")
}

func TestSelectOutputFile(t *testing.T) {
	t.Run("empty path returns stdout", func(t *testing.T) {
		file, err := SelectOutputFile("")
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, file)
	})

	t.Run("valid path creates file", func(t *testing.T) {
		tempFile := filepath.Join(t.TempDir(), "test_output.txt")

		file, err := SelectOutputFile(tempFile)
		require.NoError(t, err)
		assert.NotNil(t, file)
		_ = file.Close()

		_, err = os.Stat(tempFile)
		assert.NoError(t, err)
	})
}

func TestGetHistoryDBFilePath(t *testing.T) {
	path := GetHistoryDBFilePath()
	assert.NotEmpty(t, path)
	assert.Contains(t, path, ".healthmerge_history.db")

	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, homeDir), "path %s should start with home dir %s", path, homeDir)
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "short", TruncateText("short", 10))
	assert.Equal(t, "abcdefg...", TruncateText("abcdefghijklmnop", 10))
	assert.Equal(t, "abcdef", TruncateText("abcdef", 3), "too narrow to truncate")
}

func TestParseBoolString(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
		wantErr  bool
	}{
		{"yes", true, false},
		{"TRUE", true, false},
		{"1", true, false},
		{"no", false, false},
		{"False", false, false},
		{"0", false, false},
		{"maybe", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseBoolString(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
