package yamlwrapper

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type testStruct struct {
	Name    string            `json:"name"`
	Enabled bool              `json:"enabled"`
	Users   []testUser        `json:"users"`
	Extra   map[string]string `json:"extra"`
}

type testUser struct {
	Name string `json:"name"`
	Key  string `json:"key"`
}

func TestUnmarshal(t *testing.T) {
	var dest testStruct
	err := Unmarshal([]byte(
		"name: test\n"+
			"enabled: yes\n"+
			"users:\n"+
			"- name: mystream\n"+
			"  key: mykey\n"+
			"extra:\n"+
			"  a: b\n"), &dest)
	require.NoError(t, err)
	require.Equal(t, testStruct{
		Name:    "test",
		Enabled: true,
		Users:   []testUser{{Name: "mystream", Key: "mykey"}},
		Extra:   map[string]string{"a": "b"},
	}, dest)
}

func TestUnmarshalEmpty(t *testing.T) {
	dest := testStruct{Name: "default"}
	err := Unmarshal([]byte(""), &dest)
	require.NoError(t, err)
	require.Equal(t, "default", dest.Name)
}

func TestUnmarshalErrors(t *testing.T) {
	for _, ca := range []struct {
		name string
		enc  string
		err  string
	}{
		{
			"duplicate key",
			"name: a\nname: b\n",
			"already set in map",
		},
		{
			"integer key",
			"extra:\n  1: b\n",
			"integer keys are not supported (1)",
		},
		{
			"unknown field",
			"other: a\n",
			`json: unknown field "other"`,
		},
	} {
		t.Run(ca.name, func(t *testing.T) {
			var dest testStruct
			err := Unmarshal([]byte(ca.enc), &dest)
			require.ErrorContains(t, err, ca.err)
		})
	}
}
