package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/y2750/cross-org-talent-manager-sub000/internal/logger"
	"github.com/y2750/cross-org-talent-manager-sub000/internal/repos"
	"github.com/y2750/cross-org-talent-manager-sub000/internal/types"
)

// Notifier delivers fire-and-forget notifications. A failed delivery is
// logged and never propagated: notification failures must not roll back the
// operation that triggered them.
type Notifier interface {
	Notify(ctx context.Context, recipientUserID uuid.UUID, kind, title, body string, relatedID *uuid.UUID)
}

type notifier struct {
	db   *gorm.DB
	log  *logger.Logger
	repo repos.NotificationRepo
}

func NewNotifier(db *gorm.DB, baseLog *logger.Logger, repo repos.NotificationRepo) Notifier {
	return &notifier{
		db:   db,
		log:  baseLog.With("service", "Notifier"),
		repo: repo,
	}
}

func (n *notifier) Notify(ctx context.Context, recipientUserID uuid.UUID, kind, title, body string, relatedID *uuid.UUID) {
	if recipientUserID == uuid.Nil {
		return
	}
	row := &types.Notification{
		ID:              uuid.New(),
		RecipientUserID: recipientUserID,
		Kind:            kind,
		Title:           title,
		Body:            body,
		RelatedID:       relatedID,
		CreatedAt:       time.Now().UTC(),
	}
	// Deliberately outside any caller transaction.
	if _, err := n.repo.Create(ctx, nil, []*types.Notification{row}); err != nil {
		n.log.Warn("Failed to deliver notification",
			"recipient_user_id", recipientUserID,
			"kind", kind,
			"error", err,
		)
	}
}
