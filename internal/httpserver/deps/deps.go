package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/linkstash/internal/bridge"
	"github.com/MrSnakeDoc/linkstash/internal/logger"
	"github.com/MrSnakeDoc/linkstash/internal/service"
)

// Pinger is an optional backing service checked by /infra.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Logger         logger.Logger
	StartTime      time.Time
	Version        string
	Commit         string
	BuildDate      string
	GoVersion      string
	TimeNow        func() time.Time // for testing, defaults to time.Now
	AllowedHosts   []string         // Host headers allowed to access the server
	AllowedCIDRS   []string         // IPs allowed to access the API and probes
	TrustProxy     bool             // true if running behind a trusted reverse proxy (e.g., cloudflared)
	Service        *service.Service // link pipelines
	Bridge         *bridge.Bridge   // JSON boundary over Service
	DataFile       string           // path of the collection file, reported by /infra
	FetchCache     Pinger           // Redis fetch cache, nil when disabled
	ImportTrigger  chan struct{}    // manual import trigger, nil when no import file is configured
	RefreshTrigger chan struct{}    // manual status refresh trigger
	MaxBodyBytes   int64            // max accepted request body
	WriteBurst     int              // rate limit burst for write endpoints
	WritePerMin    int              // rate limit refill for write endpoints
}
