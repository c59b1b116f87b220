package config

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"railway/internal/domain"

	"github.com/joho/godotenv"
)

type Env struct {
	AppAddr string
	GinMode string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
}

var loadDotenv sync.Once

// LoadEnv reads process configuration, loading .env once when present.
func LoadEnv() Env {
	loadDotenv.Do(func() { _ = godotenv.Load() })

	return Env{
		AppAddr:    envOr("APP_ADDR", ":8080"),
		GinMode:    strings.TrimSpace(os.Getenv("GIN_MODE")),
		DBHost:     envOr("DB_HOST", "127.0.0.1"),
		DBPort:     envOr("DB_PORT", "3306"),
		DBUser:     envOr("DB_USER", "railway_user"),
		DBPassword: envOr("DB_PASSWORD", "railway_password"),
		DBName:     envOr("DB_NAME", "railway_reservation"),
	}
}

// TicketLimits returns the capacity constants, env-overridden on top of the
// single-coach defaults.
func TicketLimits() domain.Limits {
	loadDotenv.Do(func() { _ = godotenv.Load() })

	l := domain.DefaultLimits()
	l.TotalConfirmedBerths = intEnv("TOTAL_CONFIRMED_BERTHS", l.TotalConfirmedBerths)
	l.TotalRACTickets = intEnv("TOTAL_RAC_TICKETS", l.TotalRACTickets)
	l.MaxWaitingList = intEnv("MAX_WAITING_LIST", l.MaxWaitingList)
	l.RACSharingLimit = intEnv("RAC_SHARING_LIMIT", l.RACSharingLimit)
	l.ChildAgeLimit = intEnv("CHILD_AGE_LIMIT", l.ChildAgeLimit)
	l.SeniorCitizenAge = intEnv("SENIOR_CITIZEN_AGE", l.SeniorCitizenAge)
	return l
}

func envOr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func intEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
