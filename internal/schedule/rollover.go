package schedule

import (
	"context"
	"log"
	"time"

	"peakform/coaching-app/internal/service"

	"github.com/robfig/cron"
)

// Rollover runs consume this budget per pass.
const rolloverTimeout = 5 * time.Minute

// StartCycleRollover schedules the nightly job that flips cycle
// active/completed flags on roadmaps whose date windows have passed. The
// returned cron is already started; stop it during shutdown.
func StartCycleRollover(spec string, roadmapService service.RoadmapService) (*cron.Cron, error) {
	c := cron.New()
	err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), rolloverTimeout)
		defer cancel()

		touched, err := roadmapService.Rollover(ctx, time.Now().UTC())
		if err != nil {
			log.Printf("ERROR: cycle rollover pass failed: %v", err)
			return
		}
		if touched > 0 {
			log.Printf("Cycle rollover advanced %d roadmap(s)", touched)
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
