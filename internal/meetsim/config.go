// Package meetsim drives a running liftboard server with a simulated meet
// and checks the served leaderboard against a local ranking.
package meetsim

import "time"

// Default simulation settings.
const (
	DefaultBaseURL  = "http://localhost:9080"
	DefaultAthletes = 24
	DefaultWorkers  = 8
	DefaultTimeout  = 10 * time.Second
	DefaultSettle   = 30 * time.Second
	DefaultDupRate  = 0.1
)

// Config holds configuration for one simulation run.
type Config struct {
	BaseURL    string        // base URL of the service
	Athletes   int           // roster size
	Workers    int           // concurrent event submitters
	Timeout    time.Duration // per request timeout
	Settle     time.Duration // how long to wait for the board to converge
	DupRate    float64       // fraction of events resubmitted to exercise dedupe
	Seed       uint64        // generator seed, 0 picks one from the clock
	OutputFile string        // optional meet file written with the expected state
	Verbose    bool
}

func (c *Config) withDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Athletes <= 0 {
		c.Athletes = DefaultAthletes
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Settle <= 0 {
		c.Settle = DefaultSettle
	}
	if c.DupRate < 0 || c.DupRate > 1 {
		c.DupRate = DefaultDupRate
	}
	if c.Seed == 0 {
		c.Seed = uint64(time.Now().UnixNano())
	}
}

// Stats holds run statistics.
type Stats struct {
	AthletesCreated  int
	EventsGenerated  int
	EventsSubmitted  int
	EventsAccepted   int
	EventsDuplicate  int
	EventsRetried    int
	EventsFailed     int
	LeaderboardPolls int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
