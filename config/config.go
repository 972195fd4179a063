// Package config loads session.Config values for the Market and Trade
// channels from CTRADER_FIX_* environment variables, optionally populated
// from a .env file.
//
// Grounded on uhyunpark-hyperlicked's params.LoadFromEnv: optional
// godotenv.Load, then os.Getenv overrides on top of defaults.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/gurre/ctrader-fix/constants"
	"github.com/gurre/ctrader-fix/session"
)

// Config bundles the two independent session configs the library needs:
// one for the Market channel (SenderSubID=QUOTE) and one for the Trade
// channel (SenderSubID=TRADE).
type Config struct {
	Market session.Config
	Trade  session.Config
}

// Load reads CTRADER_FIX_* environment variables, optionally populated
// from a .env file at envPath (pass "" to look for .env in the working
// directory; godotenv.Load failing silently is intentional — missing
// credential storage is out of scope, this only resolves the file into
// os.Environ()).
func Load(envPath string) Config {
	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	host := getEnv("CTRADER_FIX_HOST", "")
	senderCompID := getEnv("CTRADER_FIX_SENDER_COMP_ID", "")
	username := getEnv("CTRADER_FIX_USERNAME", "")
	password := getEnv("CTRADER_FIX_PASSWORD", "")
	heartBtInt := getEnvInt("CTRADER_FIX_HEARTBEAT_S", 30)
	useTLS := getEnvBool("CTRADER_FIX_USE_TLS", true)
	requestTimeoutMS := getEnvInt("CTRADER_FIX_REQUEST_TIMEOUT_MS", 5000)

	base := session.Config{
		Host:              host,
		SenderCompID:      senderCompID,
		Username:          username,
		Password:          password,
		HeartBtIntSeconds: heartBtInt,
		UseTLS:            useTLS,
		RequestTimeout:    time.Duration(requestTimeoutMS) * time.Millisecond,
	}

	market := base
	market.Port = getEnvInt("CTRADER_FIX_MARKET_PORT", 5211)
	market.SenderSubID = constants.SenderSubIDQuote

	trade := base
	trade.Port = getEnvInt("CTRADER_FIX_TRADE_PORT", 5212)
	trade.SenderSubID = constants.SenderSubIDTrade

	return Config{Market: market, Trade: trade}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
