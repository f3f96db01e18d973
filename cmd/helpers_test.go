package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fields.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFieldMapFlat(t *testing.T) {
	path := writeTempJSON(t, `{"bill_of_lading_number": "ABC12345", "line_items_count": 3}`)

	fields, err := loadFieldMap(path)
	require.NoError(t, err)
	assert.Equal(t, "ABC12345", fields["bill_of_lading_number"])
	assert.Equal(t, float64(3), fields["line_items_count"])
}

func TestLoadFieldMapRecord(t *testing.T) {
	path := writeTempJSON(t, `{
		"fields": {
			"bill_of_lading_number": {"value": "ABC12345", "source": "rule"},
			"container_number": {"value": null, "source": "none"}
		}
	}`)

	fields, err := loadFieldMap(path)
	require.NoError(t, err)
	assert.Equal(t, "ABC12345", fields["bill_of_lading_number"])
	assert.Nil(t, fields["container_number"])
}

func TestLoadFieldMapDocument(t *testing.T) {
	path := writeTempJSON(t, `{
		"id": "doc-1",
		"record": {
			"fields": {
				"consignee_name": {"value": "Acme Logistics", "source": "llm", "llm_provider": "openai"}
			}
		}
	}`)

	fields, err := loadFieldMap(path)
	require.NoError(t, err)
	assert.Equal(t, "Acme Logistics", fields["consignee_name"])
}

func TestLoadFieldMapMissingFile(t *testing.T) {
	_, err := loadFieldMap(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadFieldMapInvalidJSON(t *testing.T) {
	path := writeTempJSON(t, `not json`)
	_, err := loadFieldMap(path)
	assert.Error(t, err)
}
