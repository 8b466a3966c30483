package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessDefaults(t *testing.T) {
	conf, err := Process()
	require.NoError(t, err)

	assert.Equal(t, "info", conf.LogLevel)
	assert.Equal(t, "0.0.0.0:9000", conf.Web.Addr)
	assert.Equal(t, 1500*time.Millisecond, conf.Mail.SendDelay)
	assert.Equal(t, 2500*time.Millisecond, conf.Mail.BulkDelay)
	assert.Equal(t, time.Second, conf.Announce.SubmitDelay)
	assert.Empty(t, conf.Auth.Admins, "no admin may be compiled in")
}

func TestProcessAdmins(t *testing.T) {
	t.Setenv("CAMPUSMAIL_AUTH_ADMINS", "Root@Example.com:s3cret, ops@example.com:pw:with:colons")

	conf, err := Process()
	require.NoError(t, err)

	want := AdminList{
		{Address: "root@example.com", Password: "s3cret"},
		{Address: "ops@example.com", Password: "pw:with:colons"},
	}
	assert.Equal(t, want, conf.Auth.Admins)
}

func TestAdminListDecodeErrors(t *testing.T) {
	tcs := []string{
		"nocolon",
		":password",
		"user@example.com:",
	}
	for _, tc := range tcs {
		t.Run(tc, func(t *testing.T) {
			al := AdminList{}
			assert.Error(t, al.Decode(tc))
		})
	}
}
