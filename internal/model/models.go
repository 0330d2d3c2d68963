package model

import (
	"time"
)

// SessionStatus 投票会话状态
type SessionStatus string

const (
	SessionOpen   SessionStatus = "OPEN"
	SessionClosed SessionStatus = "CLOSED"
)

// VoteOption 投票选项，对外暴露为 YES / NO
type VoteOption string

const (
	OptionAffirm VoteOption = "YES"
	OptionReject VoteOption = "NO"
)

// Outcome 会话结果
type Outcome string

const (
	OutcomeInProgress Outcome = "SESSION_IN_PROGRESS"
	OutcomeApproved   Outcome = "APPROVED"
	OutcomeRejected   Outcome = "REJECTED"
	OutcomeTie        Outcome = "TIE"
)

// Eligibility 外部资格校验结果
type Eligibility string

const (
	AbleToVote   Eligibility = "ABLE_TO_VOTE"
	UnableToVote Eligibility = "UNABLE_TO_VOTE"
)

// Agenda 议题
type Agenda struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Associate 会员，NationalID 为规范化后的CPF
type Associate struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	NationalID string    `json:"cpf"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Session 投票会话，Status 仅为存储值，实际状态由结束时间推导
type Session struct {
	ID              string        `json:"id"`
	AgendaID        string        `json:"agendaId"`
	StartTime       time.Time     `json:"startTime"`
	EndTime         time.Time     `json:"endTime"`
	DurationMinutes int64         `json:"durationMinutes"`
	Status          SessionStatus `json:"sessionStatus"`
}

// Vote 投票记录，(AssociateID, SessionID) 唯一
type Vote struct {
	ID          string     `json:"id"`
	AssociateID string     `json:"associateId"`
	SessionID   string     `json:"sessionId"`
	Option      VoteOption `json:"option"`
	VotedAt     time.Time  `json:"votedAt"`
}

// VoteConfirmation 投票成功回执
type VoteConfirmation struct {
	AssociateID string `json:"associateId"`
	SessionID   string `json:"sessionId"`
	Option      string `json:"option"`
	Message     string `json:"message"`
}

// SessionResult 会话计票结果
type SessionResult struct {
	SessionID   string        `json:"sessionId"`
	AgendaID    string        `json:"agendaId"`
	AgendaTitle string        `json:"agendaTitle"`
	YesVotes    int64         `json:"yesVotes"`
	NoVotes     int64         `json:"noVotes"`
	TotalVotes  int64         `json:"totalVotes"`
	Status      SessionStatus `json:"sessionStatus"`
	Result      Outcome       `json:"result"`
}

// VoteEvent Kafka投票事件
type VoteEvent struct {
	VoteID      string     `json:"voteId"`
	SessionID   string     `json:"sessionId"`
	AssociateID string     `json:"associateId"`
	Option      VoteOption `json:"option"`
	VotedAt     time.Time  `json:"votedAt"`
}

// NewVoteEvent 由已提交的投票构造事件
func NewVoteEvent(v Vote) *VoteEvent {
	return &VoteEvent{
		VoteID:      v.ID,
		SessionID:   v.SessionID,
		AssociateID: v.AssociateID,
		Option:      v.Option,
		VotedAt:     v.VotedAt,
	}
}
