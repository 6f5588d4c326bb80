package kafka

import (
	"strings"
	"time"

	"github.com/claudiaareneee/viewer-backend/internal/core/config"
)

type Driver string

const (
	DriverNone  Driver = "none"
	DriverKafka Driver = "kafka"
)

type Config struct {
	Enabled bool
	Driver  Driver

	Brokers []string
	Topic   string
	GroupID string

	SessionTimeout   time.Duration
	Heartbeat        time.Duration
	RebalanceTimeout time.Duration
	InitialOldest    bool
}

// FromApp translates the service-level invalidation settings into a
// consumer config with sane group timeouts.
func FromApp(ic config.InvalidationCfg) Config {
	driver := Driver(strings.TrimSpace(ic.Driver))
	if driver == "" {
		driver = DriverNone
	}
	return Config{
		Enabled:          ic.Enabled,
		Driver:           driver,
		Brokers:          split(ic.Brokers),
		Topic:            ic.Topic,
		GroupID:          ic.GroupID,
		SessionTimeout:   30 * time.Second,
		Heartbeat:        3 * time.Second,
		RebalanceTimeout: 30 * time.Second,
		InitialOldest:    true,
	}
}

func split(s string) []string {
	var out []string
	for p := range strings.SplitSeq(s, ",") {
		if x := strings.TrimSpace(p); x != "" {
			out = append(out, x)
		}
	}
	return out
}
