package usecase

import (
	"context"

	"grouporder/internal/domain"

	"github.com/sirupsen/logrus"
)

// publish announces a committed mutation. A failed publish is logged only.
func publish(ctx context.Context, feed domain.ChangeFeed, log *logrus.Logger, change domain.Change) {
	if feed == nil {
		return
	}
	if err := feed.Publish(ctx, change); err != nil {
		log.WithFields(logrus.Fields{
			"collection": change.Collection,
			"op":         change.Op,
			"id":         change.ID,
		}).Warnf("Use Case: Failed to publish change: %v", err)
	}
}
