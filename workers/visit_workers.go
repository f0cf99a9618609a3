package workers

import (
	"context"

	"go.uber.org/zap"

	"linklytics/models"
	"linklytics/services"
)

// StartVisitWorkers launches a pool of goroutines draining the visit
// event channel. The redirect handler only ever enqueues; recording and
// its failures stay on this side of the channel.
func StartVisitWorkers(count int, events <-chan models.VisitEvent, visits *services.VisitService, log *zap.Logger) {
	log.Info("starting visit workers", zap.Int("count", count))
	for i := 0; i < count; i++ {
		go visitWorker(i, events, visits, log)
	}
}

func visitWorker(id int, events <-chan models.VisitEvent, visits *services.VisitService, log *zap.Logger) {
	for event := range events {
		// No caller is waiting; a failed event is logged and dropped.
		if err := visits.Record(context.Background(), event); err != nil {
			log.Error("failed to record visit",
				zap.Int("worker", id),
				zap.String("alias", event.Alias),
				zap.Error(err))
		}
	}
}
