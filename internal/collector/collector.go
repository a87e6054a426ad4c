package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/iapioniers/evasion-backend/internal/clients/moodle"
	"github.com/iapioniers/evasion-backend/internal/platform/envutil"
	"github.com/iapioniers/evasion-backend/internal/platform/logger"
	"github.com/iapioniers/evasion-backend/internal/types"
)

// UnknownCourse is stamped onto events whose payload omitted the course name.
const UnknownCourse = "Unknown Course"

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

type Config struct {
	Concurrency  int
	RequestDelay time.Duration
}

func ConfigFromEnv() Config {
	return Config{
		Concurrency:  envutil.Int("COLLECTOR_CONCURRENCY", 5),
		RequestDelay: envutil.Duration("COLLECTOR_REQUEST_DELAY", 500*time.Millisecond),
	}
}

// Collector fans one log fetch per student out over a bounded pool and merges
// the results into a flat event table. A student whose fetch fails after the
// client's retries contributes zero events; only the token exchange and the
// user listing are fatal.
type Collector struct {
	client moodle.Client
	log    *logger.Logger
	cfg    Config
}

func New(client moodle.Client, baseLog *logger.Logger, cfg Config) *Collector {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 5
	}
	if cfg.RequestDelay < 0 {
		cfg.RequestDelay = 0
	}
	return &Collector{
		client: client,
		log:    baseLog.With("component", "Collector"),
		cfg:    cfg,
	}
}

func (c *Collector) Collect(ctx context.Context) ([]types.RawEvent, error) {
	token, err := c.client.GetToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("get token: %w", err)
	}

	users, err := c.client.ListUsers(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("user listing returned no students")
	}
	c.log.Info("Collecting logs", "students", len(users), "concurrency", c.cfg.Concurrency)

	// One result slot per student, filled by identity rather than by
	// completion order.
	results := make([][]moodle.LogEntry, len(users))
	sem := semaphore.NewWeighted(int64(c.cfg.Concurrency))
	var wg sync.WaitGroup

	for i, user := range users {
		if user.UserID == "" {
			c.log.Warn("Skipping student without user_id", "name", user.Name)
			continue
		}
		wg.Add(1)
		go func(i int, userID string) {
			defer wg.Done()
			if err := sem.Acquire(ctx, 1); err != nil {
				return
			}
			defer sem.Release(1)

			// Fixed pause before every request, even below the concurrency
			// cap, to stay under the API's implicit rate limit.
			if c.cfg.RequestDelay > 0 {
				select {
				case <-ctx.Done():
					return
				case <-time.After(c.cfg.RequestDelay):
				}
			}

			logs, err := c.client.GetUserLogs(ctx, token, userID)
			if err != nil {
				c.log.Warn("Log fetch failed after retries, skipping student",
					"user_id", userID,
					"error", err,
				)
				return
			}
			results[i] = logs
		}(i, user.UserID)
	}
	wg.Wait()

	events := make([]types.RawEvent, 0)
	dropped := 0
	for i, logs := range results {
		user := users[i]
		lastAccess := parseTimestamp(user.LastAccess)
		for _, entry := range logs {
			date := parseTimestamp(entry.Date)
			if date == nil {
				dropped++
				continue
			}
			course := entry.CourseFullname
			if course == "" {
				course = UnknownCourse
			}
			events = append(events, types.RawEvent{
				UserID:         user.UserID,
				UserName:       user.Name,
				CourseFullname: course,
				Action:         entry.Action,
				Date:           *date,
				UserLastAccess: lastAccess,
			})
		}
	}
	if dropped > 0 {
		c.log.Warn("Dropped events with unparseable dates", "dropped", dropped)
	}
	c.log.Info("Collection finished", "events", len(events))
	return events, nil
}

func parseTimestamp(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
