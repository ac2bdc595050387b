package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettings(t *testing.T) {
	tests := map[string]struct {
		yaml    string
		env     map[string]string
		want    Settings
		wantErr bool
	}{
		"defaults without config file": {
			want: DefaultSettings(),
		},
		"file overrides defaults": {
			yaml: "base_url: https://git.example.com\nstrict_lookup: true\nfetch_timeout: 30s\n",
			want: Settings{
				BaseURL:            "https://git.example.com",
				DefaultInterpreter: "sh",
				StrictLookup:       true,
				FetchTimeout:       30 * time.Second,
			},
		},
		"environment overrides file": {
			yaml: "base_url: https://git.example.com\n",
			env: map[string]string{
				"SPM_BASE_URL":                  "https://codeberg.org",
				"SPM_REFRESH_CONTINUE_ON_ERROR": "true",
				"SPM_DEFAULT_INTERPRETER":       "bash",
			},
			want: Settings{
				BaseURL:                "https://codeberg.org",
				DefaultInterpreter:     "bash",
				RefreshContinueOnError: true,
			},
		},
		"empty base url rejected": {
			yaml:    "base_url: \"  \"\n",
			wantErr: true,
		},
		"malformed yaml": {
			yaml:    "base_url: [unterminated\n",
			wantErr: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			paths := NewPaths(t.TempDir())
			if tt.yaml != "" {
				require.NoError(t, os.WriteFile(paths.ConfigFile(), []byte(tt.yaml), 0644))
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			got, err := LoadSettings(paths)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestEnvTransform(t *testing.T) {
	assert.Equal(t, "base_url", envTransform("SPM_BASE_URL"))
	assert.Equal(t, "strict_lookup", envTransform("SPM_STRICT_LOOKUP"))
	assert.Equal(t, "", envTransform("SPM_ROOT"))
}
