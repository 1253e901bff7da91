package board

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"taskboard/internal/model"
)

// notifyAssignment creates exactly one notification for a qualifying
// assignment change. Dispatch is fire-and-forget with respect to the
// triggering write: a failure here is logged and never rolls back or
// fails the task operation, and it is not retried.
func (e *Engine) notifyAssignment(ctx context.Context, taskID int64, recipientID, title string) {
	n := model.Notification{
		RecipientID: recipientID,
		TaskID:      taskID,
		Message:     fmt.Sprintf("%s assigned you a task: %q", e.actorLabel, title),
	}

	if _, err := e.store.InsertNotification(ctx, n); err != nil {
		e.logger.Error("notification dispatch failed",
			zap.Int64("task_id", taskID),
			zap.String("recipient", recipientID),
			zap.Error(err))
	}
}
