package flagx

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "short flag with separate value",
			args:    []string{"-c", "conf.json", "-a", "localhost"},
			allowed: []string{"-c"},
			want:    []string{"-c", "conf.json"},
		},
		{
			name:    "double dash matches single dash entry",
			args:    []string{"--config=alt.json", "-a", "localhost"},
			allowed: []string{"-config"},
			want:    []string{"--config=alt.json"},
		},
		{
			name:    "unknown flags and positionals ignored",
			args:    []string{"-x", "1", "--y=2", "positional"},
			allowed: []string{"-c"},
			want:    []string{},
		},
		{
			name:    "flag without value at end is kept",
			args:    []string{"-c"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:    "next dash token is not a value",
			args:    []string{"-c", "-d", "dsn"},
			allowed: []string{"-c", "-d"},
			want:    []string{"-c", "-d", "dsn"},
		},
		{
			name:    "repeated flag preserved in order",
			args:    []string{"-s", "one", "-s", "two"},
			allowed: []string{"-s"},
			want:    []string{"-s", "one", "-s", "two"},
		},
		{
			name:    "test runner flags dropped",
			args:    []string{"-test.v", "-test.run=TestX", "-a", ":8080"},
			allowed: []string{"-a"},
			want:    []string{"-a", ":8080"},
		},
		{
			name:    "empty args",
			args:    []string{},
			allowed: []string{"-c"},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterArgs(tt.args, tt.allowed)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("FilterArgs() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestConfigFile(t *testing.T) {
	t.Run("short -c", func(t *testing.T) {
		t.Setenv(ConfigFileEnv, "")
		assert.Equal(t, "/etc/petnest.json", ConfigFile([]string{"-c", "/etc/petnest.json"}))
	})

	t.Run("long -config wins when last", func(t *testing.T) {
		t.Setenv(ConfigFileEnv, "")
		assert.Equal(t, "/b.yaml", ConfigFile([]string{"-c", "/a.json", "-config", "/b.yaml"}))
	})

	t.Run("env fallback", func(t *testing.T) {
		t.Setenv(ConfigFileEnv, "/from/env.yaml")
		assert.Equal(t, "/from/env.yaml", ConfigFile([]string{"-a", ":8080"}))
	})

	t.Run("flag beats env", func(t *testing.T) {
		t.Setenv(ConfigFileEnv, "/from/env.yaml")
		assert.Equal(t, "/from/flag.json", ConfigFile([]string{"-config=/from/flag.json"}))
	})

	t.Run("nothing set", func(t *testing.T) {
		t.Setenv(ConfigFileEnv, "")
		assert.Empty(t, ConfigFile(nil))
	})
}
