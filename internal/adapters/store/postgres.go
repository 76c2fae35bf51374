// Package store implements the persistence gateway over the relational
// schema the CRUD service owns.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BradMoyetones/chat-backend-go/internal/core"
	"github.com/BradMoyetones/chat-backend-go/internal/domain"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrConversationNotFound wraps the shared not-found error so adapter
// boundaries collapse it into the caller-facing "not found" string.
var ErrConversationNotFound = fmt.Errorf("conversation: %w", core.ErrNotFound)

// Row types mirror the tables the CRUD service migrates; the realtime
// layer never migrates them itself.

type Participant struct {
	ID             int64 `gorm:"primaryKey"`
	UserID         int64
	ConversationID int64
}

func (Participant) TableName() string { return "participants" }

type MessageRow struct {
	ID             int64 `gorm:"primaryKey"`
	ConversationID int64
	SenderID       int64
	Content        string
	CreatedAt      time.Time
}

func (MessageRow) TableName() string { return "messages" }

type MessageReadRow struct {
	MessageID int64 `gorm:"primaryKey"`
	UserID    int64 `gorm:"primaryKey"`
}

func (MessageReadRow) TableName() string { return "message_reads" }

type ContactRow struct {
	ID         int64 `gorm:"primaryKey"`
	SenderID   int64
	ReceiverID int64
	Status     string
}

func (ContactRow) TableName() string { return "contact_requests" }

type PostgresGateway struct {
	db *gorm.DB
}

func NewPostgresGateway(dsn string) (*PostgresGateway, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	return &PostgresGateway{db: db}, nil
}

func (g *PostgresGateway) ConversationIDsForUser(ctx context.Context, uid domain.UserID) ([]domain.ConversationID, error) {
	var ids []int64
	err := g.db.WithContext(ctx).
		Model(&Participant{}).
		Where("user_id = ?", int64(uid)).
		Pluck("conversation_id", &ids).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.ConversationID, len(ids))
	for i, id := range ids {
		out[i] = domain.ConversationID(id)
	}
	return out, nil
}

func (g *PostgresGateway) IsParticipant(ctx context.Context, uid domain.UserID, cid domain.ConversationID) (bool, error) {
	var count int64
	err := g.db.WithContext(ctx).
		Model(&Participant{}).
		Where("user_id = ? AND conversation_id = ?", int64(uid), int64(cid)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (g *PostgresGateway) CreateMessage(ctx context.Context, uid domain.UserID, cid domain.ConversationID, content string) (*domain.Message, error) {
	row := MessageRow{
		ConversationID: int64(cid),
		SenderID:       int64(uid),
		Content:        content,
		CreatedAt:      time.Now().UTC(),
	}
	if err := g.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, err
	}
	return &domain.Message{
		ID:             domain.MessageID(row.ID),
		ConversationID: cid,
		SenderID:       uid,
		Content:        content,
		CreatedAt:      row.CreatedAt,
	}, nil
}

func (g *PostgresGateway) MarkMessagesRead(ctx context.Context, uid domain.UserID, ids []domain.MessageID) (domain.ConversationID, error) {
	if len(ids) == 0 {
		return 0, ErrConversationNotFound
	}
	raw := make([]int64, len(ids))
	for i, id := range ids {
		raw[i] = int64(id)
	}

	var msg MessageRow
	err := g.db.WithContext(ctx).
		Where("id IN ?", raw).
		First(&msg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrConversationNotFound
		}
		return 0, err
	}

	rows := make([]MessageReadRow, len(raw))
	for i, id := range raw {
		rows[i] = MessageReadRow{MessageID: id, UserID: int64(uid)}
	}
	// Duplicate receipts are expected on reconnect; skip them.
	err = g.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
	if err != nil {
		return 0, err
	}
	return domain.ConversationID(msg.ConversationID), nil
}

func (g *PostgresGateway) ContactUserIDs(ctx context.Context, uid domain.UserID) ([]domain.UserID, error) {
	var rows []ContactRow
	err := g.db.WithContext(ctx).
		Where("status = ? AND (sender_id = ? OR receiver_id = ?)", "accepted", int64(uid), int64(uid)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.UserID, 0, len(rows))
	for _, r := range rows {
		other := r.SenderID
		if other == int64(uid) {
			other = r.ReceiverID
		}
		out = append(out, domain.UserID(other))
	}
	return out, nil
}
