package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrRequestExists    = errors.New("friend request already exists")
	ErrNoPendingRequest = errors.New("no pending friend request")
)

// FriendStore persists friendship edges. A row (user_id, friend_id, pending)
// is a request from user_id; confirming flips it to accepted. Friendship is
// symmetric once accepted, so reads look at both directions.
type FriendStore struct {
	db *pgxpool.Pool
}

func NewFriendStore(db *pgxpool.Pool) *FriendStore {
	return &FriendStore{db: db}
}

func (s *FriendStore) Request(ctx context.Context, userID, friendID string) error {
	if err := userExists(ctx, s.db, friendID); err != nil {
		return err
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO friendships (user_id, friend_id, status) VALUES ($1, $2, 'pending')`,
		userID, friendID,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrRequestExists
	}
	return err
}

// Confirm accepts the pending request friendID sent to userID.
func (s *FriendStore) Confirm(ctx context.Context, userID, friendID string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE friendships SET status = 'accepted'
		 WHERE user_id = $1 AND friend_id = $2 AND status = 'pending'`,
		friendID, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoPendingRequest
	}
	return nil
}

// Reject drops the pending request friendID sent to userID.
func (s *FriendStore) Reject(ctx context.Context, userID, friendID string) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM friendships
		 WHERE user_id = $1 AND friend_id = $2 AND status = 'pending'`,
		friendID, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoPendingRequest
	}
	return nil
}

// PendingFor lists usernames with an open request addressed to userID.
func (s *FriendStore) PendingFor(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.Query(ctx,
		`SELECT user_id FROM friendships
		 WHERE friend_id = $1 AND status = 'pending'
		 ORDER BY created_at`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStrings(rows)
}

// FriendsOf lists accepted friends in either direction.
func (s *FriendStore) FriendsOf(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.Query(ctx,
		`SELECT CASE WHEN user_id = $1 THEN friend_id ELSE user_id END
		 FROM friendships
		 WHERE (user_id = $1 OR friend_id = $1) AND status = 'accepted'
		 ORDER BY 1`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStrings(rows)
}

func scanStrings(rows pgx.Rows) ([]string, error) {
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
