package env

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type myDuration int

func (d *myDuration) UnmarshalEnv(_ string, v string) error {
	*d = myDuration(len(v))
	return nil
}

type mySubStruct struct {
	Name string `json:"name"`
	Key  string `json:"key"`
}

type testStruct struct {
	// string
	MyString string `json:"myString"`

	// int
	MyInt int `json:"myInt"`

	// uint
	MyUint uint64 `json:"myUint"`

	// bool
	MyBool bool `json:"myBool"`

	// custom unmarshaler
	MyDuration myDuration `json:"myDuration"`

	// slice of strings
	MySlice []string `json:"mySlice"`

	// slice of structs
	MyStructs []mySubStruct `json:"myStructs"`

	unexported string
}

func TestLoad(t *testing.T) {
	env := map[string]string{
		"MYPREFIX_MYSTRING":          "testcontent",
		"MYPREFIX_MYINT":             "123",
		"MYPREFIX_MYUINT":            "8192",
		"MYPREFIX_MYBOOL":            "yes",
		"MYPREFIX_MYDURATION":        "abcd",
		"MYPREFIX_MYSLICE":           "el1,el2",
		"MYPREFIX_MYSTRUCTS_0_NAME":  "stream1",
		"MYPREFIX_MYSTRUCTS_0_KEY":   "key1",
		"MYPREFIX_MYSTRUCTS_1_NAME":  "stream2",
		"MYPREFIX_OTHER":             "ignored",
		"OTHERPREFIX_MYSTRING":       "ignored",
		"MYPREFIX_MYSTRUCTS_3_NAME":  "not contiguous",
		"MYPREFIX_MYSTRUCTSX_0_NAME": "ignored",
	}

	s := testStruct{
		MyStructs: []mySubStruct{{Name: "default"}},
	}

	err := loadWithEnv(env, "MYPREFIX", &s)
	require.NoError(t, err)

	require.Equal(t, testStruct{
		MyString:   "testcontent",
		MyInt:      123,
		MyUint:     8192,
		MyBool:     true,
		MyDuration: 4,
		MySlice:    []string{"el1", "el2"},
		MyStructs: []mySubStruct{
			{Name: "stream1", Key: "key1"},
			{Name: "stream2"},
		},
	}, s)
}

func TestLoadEmptySlices(t *testing.T) {
	env := map[string]string{
		"MYPREFIX_MYSLICE":   "",
		"MYPREFIX_MYSTRUCTS": "",
	}

	s := testStruct{
		MySlice:   []string{"a"},
		MyStructs: []mySubStruct{{Name: "default"}},
	}

	err := loadWithEnv(env, "MYPREFIX", &s)
	require.NoError(t, err)
	require.Equal(t, []string{}, s.MySlice)
	require.Equal(t, []mySubStruct{}, s.MyStructs)
}

func TestLoadErrors(t *testing.T) {
	for _, ca := range []struct {
		name string
		env  map[string]string
		err  string
	}{
		{
			"invalid bool",
			map[string]string{"MYPREFIX_MYBOOL": "maybe"},
			"MYPREFIX_MYBOOL: invalid value 'maybe'",
		},
		{
			"invalid int",
			map[string]string{"MYPREFIX_MYINT": "abc"},
			"MYPREFIX_MYINT: strconv.ParseInt: parsing \"abc\": invalid syntax",
		},
	} {
		t.Run(ca.name, func(t *testing.T) {
			var s testStruct
			err := loadWithEnv(ca.env, "MYPREFIX", &s)
			require.EqualError(t, err, ca.err)
		})
	}
}
