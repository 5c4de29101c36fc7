package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"example.com/crossword-server/internal/auth"
	"example.com/crossword-server/internal/proto"
	"example.com/crossword-server/internal/puzzle"
	"example.com/crossword-server/internal/store"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Store interfaces consumed by the handlers. The pgx stores satisfy them;
// tests substitute in-memory fakes. This is the full Persistence Gateway
// surface: handlers never issue raw queries.

type UserStore interface {
	Create(ctx context.Context, u store.User) error
	GetByUsername(ctx context.Context, username string) (store.User, error)
}

type PuzzleStore interface {
	List(ctx context.Context) ([]store.PuzzleSummary, error)
	Get(ctx context.Context, id int64) (store.Puzzle, error)
	Save(ctx context.Context, p store.Puzzle) (int64, error)
}

type SolutionStore interface {
	SaveSolution(ctx context.Context, username string, puzzleID int64, timeTaken float64) (store.SolveResult, error)
	History(ctx context.Context, username string) ([]store.SolveRecord, error)
}

type StatsStore interface {
	CurrentUser(ctx context.Context, username string) (store.UserStats, error)
	AllUsers(ctx context.Context) ([]store.LeaderboardRow, error)
}

type FriendStore interface {
	Request(ctx context.Context, userID, friendID string) error
	Confirm(ctx context.Context, userID, friendID string) error
	Reject(ctx context.Context, userID, friendID string) error
	PendingFor(ctx context.Context, userID string) ([]string, error)
	FriendsOf(ctx context.Context, userID string) ([]string, error)
}

type MessageStore interface {
	Send(ctx context.Context, sender, receiver, body string) error
	Between(ctx context.Context, userID, friendID string) ([]store.Message, error)
}

// Client-visible response texts. Frozen protocol surface, same as the field
// names in types.go.
const (
	msgLoginOK        = "Login successful"
	msgRegistered     = "New user registered successfully"
	msgRegisterOK     = "Registration successful"
	msgBadPassword    = "Incorrect password"
	msgPuzzleNotFound = "Puzzle not found"
	msgPuzzleAdded    = "Puzzle added successfully"
	msgCorrect        = "Correct answer!"
	msgIncorrect      = "Incorrect answer, please try again"
	msgUserNotFound   = "User not found"
	msgUsernameTaken  = "Username already exists"
	msgRequestSent    = "Friend request sent"
	msgRequestOK      = "Friend request confirmed"
	msgRequestGone    = "Friend request rejected"
	msgMessageSent    = "Message sent"
)

// Handlers binds the action table to the stores.
type Handlers struct {
	Users     UserStore
	Puzzles   PuzzleStore
	Solutions SolutionStore
	Stats     StatsStore
	Friends   FriendStore
	Messages  MessageStore

	JWTSecret []byte
	TokenTTL  time.Duration
}

func (h *Handlers) Register(d *Dispatcher) {
	d.Handle("login", h.handleLogin)
	d.Handle("register", h.handleRegister)
	d.Handle("get_puzzles", h.handleGetPuzzles)
	d.Handle("get_puzzle_detail", h.handleGetPuzzleDetail)
	d.Handle("add_puzzle", h.handleAddPuzzle)
	d.Handle("submit_solution", h.handleSubmitSolution)
	d.Handle("get_statistics", h.handleGetStatistics)
	d.Handle("get_historical_rankings", h.handleGetHistoricalRankings)
	d.Handle("add_friend", h.handleAddFriend)
	d.Handle("confirm_friend", h.handleConfirmFriend)
	d.Handle("reject_friend", h.handleRejectFriend)
	d.Handle("get_friend_requests", h.handleGetFriendRequests)
	d.Handle("get_friends", h.handleGetFriends)
	d.Handle("send_message", h.handleSendMessage)
	d.Handle("get_messages", h.handleGetMessages)
}

// login authenticates or auto-registers. Unknown usernames are created on
// the spot; a known username with the wrong password is the only rejection.
func (h *Handlers) handleLogin(ctx context.Context, sess *Session, raw json.RawMessage) (any, error) {
	var req loginRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, err
	}
	if req.Username == "" || req.Password == "" {
		return nil, errors.New("username and password are required")
	}

	msg := msgLoginOK
	u, err := h.Users.GetByUsername(ctx, req.Username)
	switch {
	case errors.Is(err, store.ErrUserNotFound):
		if err := h.createUser(ctx, req.Username, req.Password); err != nil {
			return nil, err
		}
		msg = msgRegistered
	case err != nil:
		return nil, err
	default:
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
			return nil, errors.New(msgBadPassword)
		}
	}

	token, err := auth.Sign(h.JWTSecret, req.Username, h.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	if sess != nil {
		sess.username = req.Username
	}
	return loginResponse{Status: proto.StatusOK, Message: msg, Token: token}, nil
}

func (h *Handlers) handleRegister(ctx context.Context, sess *Session, raw json.RawMessage) (any, error) {
	var req loginRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, err
	}
	if req.Username == "" || req.Password == "" {
		return nil, errors.New("username and password are required")
	}

	if err := h.createUser(ctx, req.Username, req.Password); err != nil {
		if errors.Is(err, store.ErrUsernameTaken) {
			return nil, errors.New(msgUsernameTaken)
		}
		return nil, err
	}
	if sess != nil {
		sess.username = req.Username
	}
	return messageResponse{Status: proto.StatusOK, Message: msgRegisterOK}, nil
}

func (h *Handlers) createUser(ctx context.Context, username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return h.Users.Create(ctx, store.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
	})
}

func (h *Handlers) handleGetPuzzles(ctx context.Context, _ *Session, _ json.RawMessage) (any, error) {
	list, err := h.Puzzles.List(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]puzzleTuple, len(list))
	for i, p := range list {
		rows[i] = puzzleTuple(p)
	}
	return puzzleListResponse{Status: proto.StatusOK, Puzzles: rows}, nil
}

// get_puzzle_detail loads the puzzle and derives each clue's geometry with
// the numbering policy matching the puzzle's origin: grid-scan numbering for
// system puzzles, authoring order for builder puzzles.
func (h *Handlers) handleGetPuzzleDetail(ctx context.Context, _ *Session, raw json.RawMessage) (any, error) {
	var req puzzleDetailRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, err
	}

	p, err := h.Puzzles.Get(ctx, req.PuzzleID)
	if errors.Is(err, store.ErrPuzzleNotFound) {
		return nil, errors.New(msgPuzzleNotFound)
	}
	if err != nil {
		return nil, err
	}

	if err := puzzle.ForOrigin(p.IsSystem).Apply(p.Grid, &p.Clues); err != nil {
		return nil, fmt.Errorf("puzzle %d: %w", p.ID, err)
	}

	return puzzleDetailResponse{
		Status:         proto.StatusOK,
		Grid:           p.Grid,
		Clues:          p.Clues,
		IsSystemPuzzle: p.IsSystem,
	}, nil
}

// add_puzzle validates a builder puzzle and persists it. Builder clues are
// numbered by authoring order and must describe at least one Across word,
// one Down word and one crossing.
func (h *Handlers) handleAddPuzzle(ctx context.Context, _ *Session, raw json.RawMessage) (any, error) {
	var req addPuzzleRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, err
	}
	if req.Title == "" || req.Author == "" {
		return nil, errors.New("title and author are required")
	}
	if err := req.Grid.Validate(); err != nil {
		return nil, err
	}
	if !req.Grid.SameShape(req.Answer) {
		return nil, errors.New("answer grid does not match puzzle grid dimensions")
	}

	clues := req.Clues
	if err := (puzzle.AuthoringOrder{}).Apply(req.Grid, &clues); err != nil {
		return nil, err
	}
	if err := puzzle.ValidateStructure(clues); err != nil {
		return nil, err
	}

	_, err := h.Puzzles.Save(ctx, store.Puzzle{
		Title:  req.Title,
		Author: req.Author,
		Grid:   req.Grid,
		Answer: req.Answer,
		Clues:  clues,
	})
	if err != nil {
		return nil, err
	}
	return messageResponse{Status: proto.StatusOK, Message: msgPuzzleAdded}, nil
}

// submit_solution grades the full grid against the stored answer. A wrong
// submission mutates nothing; a correct one records the solve and reports
// the competitive rank at this moment.
func (h *Handlers) handleSubmitSolution(ctx context.Context, _ *Session, raw json.RawMessage) (any, error) {
	var req submitSolutionRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, err
	}

	p, err := h.Puzzles.Get(ctx, req.PuzzleID)
	if errors.Is(err, store.ErrPuzzleNotFound) {
		return nil, errors.New(msgPuzzleNotFound)
	}
	if err != nil {
		return nil, err
	}

	if !puzzle.Correct(p.Answer, req.Solution) {
		return nil, errors.New(msgIncorrect)
	}

	res, err := h.Solutions.SaveSolution(ctx, req.Username, req.PuzzleID, req.TimeTaken)
	if err != nil {
		return nil, err
	}
	return submitSolutionResponse{
		Status:       proto.StatusOK,
		Message:      msgCorrect,
		Rank:         res.Rank,
		TotalSolvers: res.TotalSolvers,
	}, nil
}

func (h *Handlers) handleGetStatistics(ctx context.Context, _ *Session, raw json.RawMessage) (any, error) {
	var req statisticsRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, err
	}

	me, err := h.Stats.CurrentUser(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	all, err := h.Stats.AllUsers(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]userStatsRow, len(all))
	for i, r := range all {
		rows[i] = userStatsRow{
			Username:       r.Username,
			PuzzlesSolved:  r.PuzzlesSolved,
			FastestTime:    naOr(r.FastestTime),
			AverageTime:    naOr(r.AverageTime),
			PuzzlesCreated: r.PuzzlesCreated,
		}
	}
	return statisticsResponse{
		Status: proto.StatusOK,
		CurrentUserStats: currentUserStats{
			PuzzlesSolved:  me.PuzzlesSolved,
			PuzzlesCreated: me.PuzzlesCreated,
			LatestTime:     me.LatestTime,
		},
		AllUsersStats: rows,
	}, nil
}

func (h *Handlers) handleGetHistoricalRankings(ctx context.Context, _ *Session, raw json.RawMessage) (any, error) {
	var req historyRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, err
	}

	recs, err := h.Solutions.History(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	out := make([]historyRecord, len(recs))
	for i, r := range recs {
		out[i] = historyRecord{
			PuzzleID:     r.PuzzleID,
			Title:        r.Title,
			TimeTaken:    round2(r.TimeTaken),
			Rank:         r.Rank,
			TotalSolvers: r.TotalSolvers,
			SolvedAt:     r.SolvedAt,
		}
	}
	return historyResponse{Status: proto.StatusOK, Records: out}, nil
}

func (h *Handlers) handleAddFriend(ctx context.Context, _ *Session, raw json.RawMessage) (any, error) {
	var req friendRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, err
	}
	if err := h.Friends.Request(ctx, req.UserID, req.FriendID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, errors.New(msgUserNotFound)
		}
		return nil, err
	}
	return messageResponse{Status: proto.StatusOK, Message: msgRequestSent}, nil
}

func (h *Handlers) handleConfirmFriend(ctx context.Context, _ *Session, raw json.RawMessage) (any, error) {
	var req friendRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, err
	}
	if err := h.Friends.Confirm(ctx, req.UserID, req.FriendID); err != nil {
		return nil, err
	}
	return messageResponse{Status: proto.StatusOK, Message: msgRequestOK}, nil
}

func (h *Handlers) handleRejectFriend(ctx context.Context, _ *Session, raw json.RawMessage) (any, error) {
	var req friendRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, err
	}
	if err := h.Friends.Reject(ctx, req.UserID, req.FriendID); err != nil {
		return nil, err
	}
	return messageResponse{Status: proto.StatusOK, Message: msgRequestGone}, nil
}

func (h *Handlers) handleGetFriendRequests(ctx context.Context, _ *Session, raw json.RawMessage) (any, error) {
	var req friendRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, err
	}
	pending, err := h.Friends.PendingFor(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	out := make([]pendingRequest, len(pending))
	for i, from := range pending {
		out[i] = pendingRequest{UserID: from}
	}
	return pendingRequestsResponse{Status: proto.StatusOK, PendingRequests: out}, nil
}

func (h *Handlers) handleGetFriends(ctx context.Context, _ *Session, raw json.RawMessage) (any, error) {
	var req friendRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, err
	}
	friends, err := h.Friends.FriendsOf(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if friends == nil {
		friends = []string{}
	}
	return friendsResponse{Status: proto.StatusOK, Friends: friends}, nil
}

func (h *Handlers) handleSendMessage(ctx context.Context, _ *Session, raw json.RawMessage) (any, error) {
	var req sendMessageRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, err
	}
	if req.Message == "" {
		return nil, errors.New("message body is required")
	}
	if err := h.Messages.Send(ctx, req.SenderID, req.ReceiverID, req.Message); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, errors.New(msgUserNotFound)
		}
		return nil, err
	}
	return messageResponse{Status: proto.StatusOK, Message: msgMessageSent}, nil
}

func (h *Handlers) handleGetMessages(ctx context.Context, _ *Session, raw json.RawMessage) (any, error) {
	var req getMessagesRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, err
	}
	msgs, err := h.Messages.Between(ctx, req.UserID, req.FriendID)
	if err != nil {
		return nil, err
	}
	out := make([]messageItem, len(msgs))
	for i, m := range msgs {
		out[i] = messageItem{
			SenderID:   m.Sender,
			ReceiverID: m.Receiver,
			Message:    m.Body,
			SentAt:     m.SentAt,
		}
	}
	return messagesResponse{Status: proto.StatusOK, Messages: out}, nil
}
