package conf

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCredentialUnmarshal(t *testing.T) {
	var cred Credential
	err := cred.UnmarshalJSON([]byte(`"password"`))
	require.NoError(t, err)
	require.Equal(t, Credential("password"), cred)

	err = cred.UnmarshalEnv("", "otherpassword")
	require.NoError(t, err)
	require.Equal(t, Credential("otherpassword"), cred)

	enc, err := cred.MarshalJSON()
	require.NoError(t, err)
	require.Equal(t, []byte(`"otherpassword"`), enc)
}

func TestCredentialKind(t *testing.T) {
	for _, ca := range []struct {
		name     string
		cred     Credential
		isSha256 bool
		isArgon2 bool
	}{
		{
			"empty",
			"",
			false,
			false,
		},
		{
			"plain",
			"mykey",
			false,
			false,
		},
		{
			"sha256",
			"sha256:j1tsRqDEw9xvq/D7/9tMx6Jh/jMhk3UfjwIB2f1zgMo=",
			true,
			false,
		},
		{
			"argon2",
			"argon2:$argon2id$v=19$m=65536,t=1," +
				"p=4$WXJGqwIB2qd+pRmxMOw9Dg$X4gvR0ZB2DtQoN8vOnJPR2SeFdUhH9TyVzfV98sfWeE",
			false,
			true,
		},
	} {
		t.Run(ca.name, func(t *testing.T) {
			require.Equal(t, ca.isSha256, ca.cred.IsSha256())
			require.Equal(t, ca.isArgon2, ca.cred.IsArgon2())
			require.Equal(t, ca.isSha256 || ca.isArgon2, ca.cred.IsHashed())
		})
	}
}

func TestCredentialCheck(t *testing.T) {
	for _, ca := range []struct {
		name string
		cred Credential
	}{
		{
			"plain",
			"testuser",
		},
		{
			"sha256",
			"sha256:rl3rgi4NcZkpAEcacZnQ2VuOfJ0FxAqCRaKB/SwdZoQ=",
		},
		{
			"argon2",
			"argon2:$argon2id$v=19$m=4096,t=3," +
				"p=1$MTIzNDU2Nzg$Ux/LWeTgJQPyfMMJo1myR64+o8rALHoPmlE1i/TR+58",
		},
	} {
		t.Run(ca.name, func(t *testing.T) {
			require.Equal(t, true, ca.cred.Check("testuser"))
			require.Equal(t, false, ca.cred.Check("notestuser"))
		})
	}

	require.Equal(t, false, Credential("").Check(""))
}

func TestCredentialValidate(t *testing.T) {
	for _, ca := range []struct {
		name    string
		cred    Credential
		wantErr bool
	}{
		{"empty", "", false},
		{"valid plain", "validPlain123", false},
		{"invalid plain", "invalid/Plain", true},
		{"valid sha256", "sha256:validBase64EncodedHash==", false},
		{"invalid sha256", "sha256:inval*idBase64", true},
		{
			"valid argon2",
			"argon2:$argon2id$v=19$m=4096," +
				"t=3,p=1$MTIzNDU2Nzg$zarsL19s86GzUWlAkvwt4gJBFuU/A9CVuCjNI4fksow",
			false,
		},
		{"invalid argon2", "argon2:invalid", true},
	} {
		t.Run(ca.name, func(t *testing.T) {
			err := ca.cred.validate()
			if ca.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
