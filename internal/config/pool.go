package config

import (
	"os"
	"strconv"
	"time"
)

type PoolConfig struct {
	// UnitTimeout bounds the whole protocol run of one execution unit;
	// zero disables the deadline.
	UnitTimeout      time.Duration
	AcceptRetryDelay time.Duration
	ShutdownTimeout  time.Duration
}

func NewPoolConfig() *PoolConfig {
	unitTimeoutSec, err := strconv.Atoi(os.Getenv("UNIT_TIMEOUT_SEC"))
	if err != nil || unitTimeoutSec < 0 {
		unitTimeoutSec = 30
	}
	acceptRetryMs, err := strconv.Atoi(os.Getenv("ACCEPT_RETRY_DELAY_MS"))
	if err != nil || acceptRetryMs <= 0 {
		acceptRetryMs = 1000
	}
	shutdownSec, err := strconv.Atoi(os.Getenv("SHUTDOWN_TIMEOUT_SEC"))
	if err != nil || shutdownSec <= 0 {
		shutdownSec = 5
	}
	return &PoolConfig{
		UnitTimeout:      time.Duration(unitTimeoutSec) * time.Second,
		AcceptRetryDelay: time.Duration(acceptRetryMs) * time.Millisecond,
		ShutdownTimeout:  time.Duration(shutdownSec) * time.Second,
	}
}
