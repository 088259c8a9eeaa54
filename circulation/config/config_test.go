package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/Astemirdum/library-circulation/circulation/internal/model"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(WithLogLevel(zapcore.DebugLevel), WithWriteTimeout(time.Minute))
	require.NoError(t, err)

	require.Equal(t, StoragePostgres, cfg.Storage)
	require.Equal(t, zapcore.DebugLevel, cfg.Log.LogLevel)
	require.Equal(t, time.Minute, cfg.Server.WriteTimeout)
	require.Equal(t, "8080", cfg.Server.Port)
	require.Equal(t, 5, cfg.Service.MaxAttempts)
	require.Equal(t, 100, cfg.Service.SweepBatch)
	require.Equal(t, time.Hour, cfg.Sweep.OverdueInterval)
	require.Equal(t, 30*time.Second, cfg.Redis.TTL)
	require.False(t, cfg.Kafka.Enabled())

	policies := cfg.Policy.ByClass()
	require.Len(t, policies, len(model.MembershipClasses))
	require.Equal(t, 14*24*time.Hour, policies[model.ClassStudent].LoanPeriod)
	require.Equal(t, 0, policies[model.ClassGuest].MaxRenewals)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("STORAGE", StorageMemory)
	t.Setenv("KAFKA_ADDRS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("POLICY_STUDENT_LOAN_PERIOD", "168h")
	t.Setenv("POLICY_STUDENT_MAX_LOANS", "3")
	t.Setenv("POLICY_TEACHER_FINE_PER_DAY", "0")
	t.Setenv("LIBRARY_TIMEZONE", "Europe/Moscow")
	t.Setenv("SWEEP_HOLDS_INTERVAL", "1m")

	cfg, err := load(WithStorage(StoragePostgres))
	require.NoError(t, err)

	require.Equal(t, StorageMemory, cfg.Storage)
	require.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Addrs)
	require.Equal(t, "Europe/Moscow", cfg.Timezone)
	require.Equal(t, time.Minute, cfg.Sweep.HoldsInterval)

	require.Equal(t, 7*24*time.Hour, cfg.Policy.Student.LoanPeriod)
	require.Equal(t, 3, cfg.Policy.Student.MaxLoans)
	require.Equal(t, int64(0), cfg.Policy.Teacher.FinePerDay)
	// untouched classes keep their defaults
	require.Equal(t, 28*24*time.Hour, cfg.Policy.Teacher.LoanPeriod)
	require.Equal(t, 5, cfg.Policy.Staff.MaxReservations)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("STORAGE", "sqlite")
	_, err := load()
	require.Error(t, err)

	t.Setenv("STORAGE", StorageMemory)
	t.Setenv("POLICY_GUEST_MAX_LOANS", "0")
	_, err = load()
	require.Error(t, err)
}
