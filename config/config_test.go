package config

import (
	"os"
	"testing"
	"time"

	"github.com/gurre/ctrader-fix/constants"
)

func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"CTRADER_FIX_HOST",
		"CTRADER_FIX_SENDER_COMP_ID",
		"CTRADER_FIX_USERNAME",
		"CTRADER_FIX_PASSWORD",
		"CTRADER_FIX_HEARTBEAT_S",
		"CTRADER_FIX_USE_TLS",
		"CTRADER_FIX_REQUEST_TIMEOUT_MS",
		"CTRADER_FIX_MARKET_PORT",
		"CTRADER_FIX_TRADE_PORT",
	}
	for _, k := range keys {
		t.Setenv(k, "")
		_ = os.Unsetenv(k)
	}
}

// TestLoad_Defaults verifies that with no environment variables set, Load
// falls back to the documented defaults for both channels.
func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load("/nonexistent/path/to/.env")

	if cfg.Market.Port != 5211 {
		t.Errorf("expected default market port 5211, got %d", cfg.Market.Port)
	}
	if cfg.Trade.Port != 5212 {
		t.Errorf("expected default trade port 5212, got %d", cfg.Trade.Port)
	}
	if cfg.Market.SenderSubID != constants.SenderSubIDQuote {
		t.Errorf("expected market SenderSubID=%s, got %s", constants.SenderSubIDQuote, cfg.Market.SenderSubID)
	}
	if cfg.Trade.SenderSubID != constants.SenderSubIDTrade {
		t.Errorf("expected trade SenderSubID=%s, got %s", constants.SenderSubIDTrade, cfg.Trade.SenderSubID)
	}
	if cfg.Market.HeartBtIntSeconds != 30 {
		t.Errorf("expected default heartbeat 30s, got %d", cfg.Market.HeartBtIntSeconds)
	}
	if !cfg.Market.UseTLS {
		t.Error("expected UseTLS to default to true")
	}
	if cfg.Market.RequestTimeout != 5000*time.Millisecond {
		t.Errorf("expected default request timeout 5000ms, got %v", cfg.Market.RequestTimeout)
	}
}

// TestLoad_EnvOverrides verifies that explicit environment variables take
// precedence over defaults, and that both channels share the common fields
// while keeping distinct ports and SenderSubIDs.
func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)

	t.Setenv("CTRADER_FIX_HOST", "demo-uk-eqx-01.p.ctrader.com")
	t.Setenv("CTRADER_FIX_SENDER_COMP_ID", "demo.icmarkets.1234567")
	t.Setenv("CTRADER_FIX_USERNAME", "1234567")
	t.Setenv("CTRADER_FIX_PASSWORD", "secret")
	t.Setenv("CTRADER_FIX_HEARTBEAT_S", "20")
	t.Setenv("CTRADER_FIX_USE_TLS", "false")
	t.Setenv("CTRADER_FIX_REQUEST_TIMEOUT_MS", "2500")
	t.Setenv("CTRADER_FIX_MARKET_PORT", "6211")
	t.Setenv("CTRADER_FIX_TRADE_PORT", "6212")

	cfg := Load("/nonexistent/path/to/.env")

	if cfg.Market.Host != "demo-uk-eqx-01.p.ctrader.com" {
		t.Errorf("unexpected host: %s", cfg.Market.Host)
	}
	if cfg.Market.SenderCompID != "demo.icmarkets.1234567" {
		t.Errorf("unexpected SenderCompID: %s", cfg.Market.SenderCompID)
	}
	if cfg.Market.Username != "1234567" || cfg.Trade.Username != "1234567" {
		t.Error("expected username to be shared across both channel configs")
	}
	if cfg.Market.Password != "secret" {
		t.Errorf("unexpected password: %s", cfg.Market.Password)
	}
	if cfg.Market.HeartBtIntSeconds != 20 {
		t.Errorf("expected heartbeat 20s, got %d", cfg.Market.HeartBtIntSeconds)
	}
	if cfg.Market.UseTLS {
		t.Error("expected UseTLS=false override to apply")
	}
	if cfg.Market.RequestTimeout != 2500*time.Millisecond {
		t.Errorf("expected request timeout 2500ms, got %v", cfg.Market.RequestTimeout)
	}
	if cfg.Market.Port != 6211 {
		t.Errorf("expected market port 6211, got %d", cfg.Market.Port)
	}
	if cfg.Trade.Port != 6212 {
		t.Errorf("expected trade port 6212, got %d", cfg.Trade.Port)
	}
}

// TestLoad_InvalidNumericFallsBack verifies that an unparsable integer or
// boolean value falls back to the default instead of panicking or zeroing
// the field.
func TestLoad_InvalidNumericFallsBack(t *testing.T) {
	clearEnv(t)

	t.Setenv("CTRADER_FIX_HEARTBEAT_S", "not-a-number")
	t.Setenv("CTRADER_FIX_USE_TLS", "not-a-bool")

	cfg := Load("/nonexistent/path/to/.env")

	if cfg.Market.HeartBtIntSeconds != 30 {
		t.Errorf("expected fallback heartbeat 30s for invalid input, got %d", cfg.Market.HeartBtIntSeconds)
	}
	if !cfg.Market.UseTLS {
		t.Error("expected fallback UseTLS=true for invalid input")
	}
}
