package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		names []string
		want  []string
	}{
		{
			name:  "short flag with separate value",
			args:  []string{"-c", "conf.json", "-a", ":8080"},
			names: []string{"c"},
			want:  []string{"-c", "conf.json"},
		},
		{
			name:  "double dash with equals",
			args:  []string{"--config=alt.json", "-a", ":8080"},
			names: []string{"c", "config"},
			want:  []string{"--config=alt.json"},
		},
		{
			name:  "order is preserved",
			args:  []string{"-s", "k", "-x", "1", "-a", ":9000"},
			names: []string{"a", "s"},
			want:  []string{"-s", "k", "-a", ":9000"},
		},
		{
			name:  "unknown flags and positionals dropped",
			args:  []string{"-x", "1", "--y=2", "positional"},
			names: []string{"c"},
			want:  []string{},
		},
		{
			name:  "trailing flag without value",
			args:  []string{"-c"},
			names: []string{"c"},
			want:  []string{"-c"},
		},
		{
			name:  "next flag is not swallowed as value",
			args:  []string{"-c", "-a", ":1"},
			names: []string{"c"},
			want:  []string{"-c"},
		},
		{
			name:  "lone dash is not a flag",
			args:  []string{"-", "-c", "x"},
			names: []string{"c"},
			want:  []string{"-c", "x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.names...))
		})
	}
}

func TestConfigFilePath(t *testing.T) {
	assert.Equal(t, "a.json", ConfigFilePath([]string{"-c", "a.json"}))
	assert.Equal(t, "b.json", ConfigFilePath([]string{"-s", "x", "-config=b.json"}))
	assert.Equal(t, "", ConfigFilePath([]string{"-s", "x"}))
	assert.Equal(t, "", ConfigFilePath(nil))
}
