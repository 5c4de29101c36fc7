package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Message struct {
	Sender   string
	Receiver string
	Body     string
	SentAt   time.Time
}

type MessageStore struct {
	db *pgxpool.Pool
}

func NewMessageStore(db *pgxpool.Pool) *MessageStore {
	return &MessageStore{db: db}
}

func (s *MessageStore) Send(ctx context.Context, sender, receiver, body string) error {
	if err := userExists(ctx, s.db, receiver); err != nil {
		return err
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO messages (sender, receiver, body) VALUES ($1, $2, $3)`,
		sender, receiver, body,
	)
	return err
}

// Between returns the two users' conversation in send order.
func (s *MessageStore) Between(ctx context.Context, userID, friendID string) ([]Message, error) {
	rows, err := s.db.Query(ctx,
		`SELECT sender, receiver, body, sent_at FROM messages
		 WHERE (sender = $1 AND receiver = $2) OR (sender = $2 AND receiver = $1)
		 ORDER BY sent_at`,
		userID, friendID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.Sender, &m.Receiver, &m.Body, &m.SentAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
