package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadReadsGatewayAndDefaults(t *testing.T) {
	t.Setenv("RAZORPAY_KEY_ID", " rzp_test ")
	t.Setenv("RAZORPAY_BASE_URL", "http://gateway.local/v1/")
	t.Setenv("GATEWAY_TIMEOUT", "3s")
	t.Setenv("CURRENCY", "inr")
	t.Setenv("AUTH_TOKEN_TTL", "not-a-duration")

	cfg := Load()

	assert.Equal(t, "rzp_test", cfg.Gateway.KeyID)
	assert.Equal(t, "http://gateway.local/v1", cfg.Gateway.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Gateway.Timeout)
	assert.Equal(t, "INR", cfg.Gateway.Currency)
	assert.Equal(t, 30*24*time.Hour, cfg.AuthTokenTTL)
}

func TestLocationFallsBackToLocal(t *testing.T) {
	assert.Equal(t, time.Local, Config{Timezone: "Nowhere/Invalid"}.Location())
	assert.Equal(t, time.Local, Config{}.Location())

	loc := Config{Timezone: "UTC"}.Location()
	require.NotNil(t, loc)
	assert.Equal(t, "UTC", loc.String())
}

func TestValidateMembershipConfig(t *testing.T) {
	cfg := DefaultMembershipConfig()
	require.NoError(t, validateMembershipConfig(cfg))

	bad := cfg
	bad.ExpiryRunHour = 24
	assert.Error(t, validateMembershipConfig(bad))

	bad = cfg
	bad.Reminder.Subject = " "
	assert.Error(t, validateMembershipConfig(bad))

	bad = cfg
	bad.DashboardMonths = DashboardRange{Default: 12, Max: 6}
	assert.Error(t, validateMembershipConfig(bad))
}

func TestNilHolderReturnsDefaults(t *testing.T) {
	var holder *MembershipConfigHolder
	assert.Equal(t, DefaultMembershipConfig(), holder.Get())
}
