package scheduler

import (
	"os"
	"testing"

	"pennywise/internal/logger"
)

func TestMain(m *testing.M) {
	logger.Init("test")
	os.Exit(m.Run())
}
