package config_test

import (
	"fmt"
	"testing"
	"time"

	"vitamart/internal/config"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(v *viper.Viper) {
	v.Set("JWT_SECRET", "test_jwt_secret")
	v.Set("MOMO_PARTNER_CODE", "MOMO")
	v.Set("MOMO_ACCESS_KEY", "F8BBA842ECF85")
	v.Set("MOMO_SECRET_KEY", "K951B6PE1waDMi640xX08PD3vg6EkVlz")
}

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	setRequired(v)

	cfg, err := config.Load(v)
	require.NoError(t, err)

	assert.Equal(t, ":5000", cfg.AppPort)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, "captureMoMoWallet", cfg.MoMo.RequestType)
	assert.Equal(t, 10*time.Second, cfg.MoMo.Timeout)
	assert.Equal(t, "http://localhost:5000/api/payment-notify", cfg.MoMo.NotifyURL)
	assert.Equal(t, "MOMO", cfg.MoMo.PartnerCode)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("MOMO_TIMEOUT", "3s")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("MOMO_SECRET_KEY", "from-env")

	v := viper.New()
	v.Set("JWT_SECRET", "test_jwt_secret")
	v.Set("MOMO_PARTNER_CODE", "MOMO")
	v.Set("MOMO_ACCESS_KEY", "access")

	cfg, err := config.Load(v)
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, cfg.MoMo.Timeout)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, "from-env", cfg.MoMo.SecretKey)
}

func TestLoad_MissingSecrets(t *testing.T) {
	_, err := config.Load(viper.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SecretKey")
	assert.Contains(t, err.Error(), "JWTSecret")
}

func TestLoad_InvalidDriver(t *testing.T) {
	v := viper.New()
	setRequired(v)
	v.Set("DATABASE_DRIVER", "mongodb")

	_, err := config.Load(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DatabaseDriver")
}

func TestConfig_LogFieldsOmitSecrets(t *testing.T) {
	v := viper.New()
	setRequired(v)
	cfg, err := config.Load(v)
	require.NoError(t, err)

	rendered := fmt.Sprint(cfg.LogFields()...)
	assert.NotContains(t, rendered, cfg.MoMo.SecretKey)
	assert.NotContains(t, rendered, cfg.MoMo.AccessKey)
	assert.NotContains(t, rendered, cfg.JWTSecret)
}
