package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Load(t *testing.T) {
	testCases := []struct {
		name      string
		env       map[string]string
		envFile   string
		expect    Config
		expectErr bool
	}{
		{
			name: "defaults",
			expect: Config{
				Port:              "8080",
				Container:         "FieldMates",
				StoreBackend:      BackendDynamoDB,
				QueryResultsLimit: 100,
				SettingsDB:        "settings.db",
			},
		},
		{
			name: "from environment",
			env: map[string]string{
				"PORT":                  "9000",
				"FIELD_MATES_CONTAINER": "iCloud.com.fieldmates",
				"STORE_BACKEND":         "memory",
				"QUERY_RESULTS_LIMIT":   "25",
			},
			expect: Config{
				Port:              "9000",
				Container:         "iCloud.com.fieldmates",
				StoreBackend:      BackendMemory,
				QueryResultsLimit: 25,
				SettingsDB:        "settings.db",
			},
		},
		{
			name:    "from env file",
			envFile: "S3_BUCKET_NAME=pictures\nSTORE_BACKEND=memory\n",
			expect: Config{
				Port:              "8080",
				Container:         "FieldMates",
				StoreBackend:      BackendMemory,
				S3Bucket:          "pictures",
				QueryResultsLimit: 100,
				SettingsDB:        "settings.db",
			},
		},
		{
			name:      "unknown backend",
			env:       map[string]string{"STORE_BACKEND": "cloudkit"},
			expectErr: true,
		},
		{
			name:      "zero limit",
			env:       map[string]string{"QUERY_RESULTS_LIMIT": "0"},
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for _, name := range []string{"PORT", "FIELD_MATES_CONTAINER", "STORE_BACKEND", "QUERY_RESULTS_LIMIT", "S3_BUCKET_NAME", "AWS_REGION", "SETTINGS_DB"} {
				t.Setenv(name, "")
				os.Unsetenv(name)
			}
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			envFile := filepath.Join(t.TempDir(), ".env")
			if tc.envFile != "" {
				require.NoError(t, os.WriteFile(envFile, []byte(tc.envFile), 0o600))
			}

			actual, err := Load(envFile)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expect, actual)
		})
	}
}

func Test_Config_TableName(t *testing.T) {
	cfg := Config{Container: "FieldMates"}
	assert.Equal(t, "FieldMates_User", cfg.TableName("User"))
}
