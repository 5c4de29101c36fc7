package server

import (
	"encoding/json"
	"math"
	"time"

	"example.com/crossword-server/internal/puzzle"
	"example.com/crossword-server/internal/store"
)

// Wire shapes. Each action has a typed request and response; every response
// carries status "ok" (failures are proto.ErrorResponse). Field names are
// frozen protocol surface.

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
}

type messageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// puzzleTuple flattens a summary to the [id, title, author] row shape the
// client indexes positionally.
type puzzleTuple store.PuzzleSummary

func (p puzzleTuple) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{p.ID, p.Title, p.Author})
}

type puzzleListResponse struct {
	Status  string        `json:"status"`
	Puzzles []puzzleTuple `json:"puzzles"`
}

type puzzleDetailRequest struct {
	PuzzleID int64 `json:"puzzle_id"`
}

type puzzleDetailResponse struct {
	Status         string       `json:"status"`
	Grid           puzzle.Grid  `json:"grid"`
	Clues          puzzle.Clues `json:"clues"`
	IsSystemPuzzle bool         `json:"is_system_puzzle"`
}

type addPuzzleRequest struct {
	Title  string       `json:"title"`
	Author string       `json:"author"`
	Grid   puzzle.Grid  `json:"grid"`
	Answer puzzle.Grid  `json:"answer"`
	Clues  puzzle.Clues `json:"clues"`
}

type submitSolutionRequest struct {
	Username  string      `json:"username"`
	PuzzleID  int64       `json:"puzzle_id"`
	Solution  puzzle.Grid `json:"solution"`
	TimeTaken float64     `json:"time_taken"`
}

type submitSolutionResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	Rank         int    `json:"rank"`
	TotalSolvers int    `json:"total_solvers"`
}

type statisticsRequest struct {
	Username string `json:"username"`
}

type currentUserStats struct {
	PuzzlesSolved  int      `json:"puzzles_solved"`
	PuzzlesCreated int      `json:"puzzles_created"`
	LatestTime     *float64 `json:"latest_time"`
}

// userStatsRow reports "N/A" for users without solve times, matching the
// client's display expectations.
type userStatsRow struct {
	Username       string `json:"username"`
	PuzzlesSolved  int    `json:"puzzles_solved"`
	FastestTime    any    `json:"fastest_time"`
	AverageTime    any    `json:"average_time"`
	PuzzlesCreated int    `json:"puzzles_created"`
}

type statisticsResponse struct {
	Status           string           `json:"status"`
	CurrentUserStats currentUserStats `json:"current_user_stats"`
	AllUsersStats    []userStatsRow   `json:"all_users_stats"`
}

type friendRequest struct {
	UserID   string `json:"user_id"`
	FriendID string `json:"friend_id"`
}

type friendsResponse struct {
	Status  string   `json:"status"`
	Friends []string `json:"friends"`
}

type pendingRequest struct {
	UserID string `json:"user_id"`
}

type pendingRequestsResponse struct {
	Status          string           `json:"status"`
	PendingRequests []pendingRequest `json:"pending_requests"`
}

type sendMessageRequest struct {
	SenderID   string `json:"sender_id"`
	ReceiverID string `json:"receiver_id"`
	Message    string `json:"message"`
}

type getMessagesRequest struct {
	UserID   string `json:"user_id"`
	FriendID string `json:"friend_id"`
}

type messageItem struct {
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	Message    string    `json:"message"`
	SentAt     time.Time `json:"sent_at"`
}

type messagesResponse struct {
	Status   string        `json:"status"`
	Messages []messageItem `json:"messages"`
}

type historyRequest struct {
	Username string `json:"username"`
}

type historyRecord struct {
	PuzzleID     int64     `json:"puzzle_id"`
	Title        string    `json:"title"`
	TimeTaken    float64   `json:"time_taken"`
	Rank         int       `json:"rank"`
	TotalSolvers int       `json:"total_solvers"`
	SolvedAt     time.Time `json:"solved_at"`
}

type historyResponse struct {
	Status  string          `json:"status"`
	Records []historyRecord `json:"records"`
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// naOr maps a nullable solve time to a rounded number or the literal "N/A".
func naOr(v *float64) any {
	if v == nil {
		return "N/A"
	}
	return round2(*v)
}
