package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	assert.Equal(t, "Presenze.xlsx", cfg.Source.Presenze)
	assert.Equal(t, "Delivery TIM.xlsx", cfg.Source.DeliveryTIM)
	assert.Equal(t, "Assurance TIM.xlsx", cfg.Source.AssuranceTIM)
	assert.Equal(t, "Delivery OF.xlsx", cfg.Source.DeliveryOF)
	assert.Equal(t, "Avanzamento.xlsx", cfg.Source.Avanzamento)
	assert.Equal(t, 30, cfg.Source.TimeoutSecs)
	assert.Equal(t, 600, cfg.Source.CacheTTLSecs)

	assert.Equal(t, 100.0, cfg.Rates.DeliveryTIMFTTH)
	assert.Equal(t, 40.0, cfg.Rates.DeliveryTIMNonFTTH)
	assert.Equal(t, 20.0, cfg.Rates.AssuranceTIM)
	assert.Equal(t, 100.0, cfg.Rates.DeliveryOF)

	assert.Equal(t, "mail.euroirte.it", cfg.SMTP.Host)
	assert.Equal(t, "EUROIRTE - Avanzamento Economico", cfg.SMTP.Subject)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("AVANZAMENTO_LOG_LEVEL", "debug")
	t.Setenv("AVANZAMENTO_RATES_DELIVERY_TIM_FTTH", "120")
	t.Setenv("AVANZAMENTO_SMTP_USER", "noreply@euroirte.it")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 120.0, cfg.Rates.DeliveryTIMFTTH)
	assert.Equal(t, "noreply@euroirte.it", cfg.SMTP.User)
}

func TestSMTPConfig_Sender(t *testing.T) {
	assert.Equal(t, "user@x.it", SMTPConfig{User: "user@x.it"}.Sender())
	assert.Equal(t, "from@x.it", SMTPConfig{User: "user@x.it", From: "from@x.it"}.Sender())
}
