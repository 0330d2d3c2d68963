package apperr

// 面向用户的错误消息
const (
	MsgAgendaNotFound     = "Agenda not found."
	MsgSessionNotFound    = "Voting session not found"
	MsgAssociateNotFound  = "Associate not found"
	MsgAssociateExists    = "Associate already exists"
	MsgAlreadyVoted       = "Associate has already voted in this session"
	MsgNotAbleToVote      = "Associate is not able to vote"
	MsgSessionClosed      = "The voting session is closed"
	MsgInvalidVoteOption  = "Invalid vote option. Use 'YES' or 'NO'"
	MsgInvalidCPF         = "Invalid CPF"
	MsgInvalidCPFFormat   = "Invalid CPF format"
	MsgInvalidBody        = "Body is empty or invalid"
	MsgVoteCast           = "Vote successfully cast"
	MsgTitleRequired      = "Title is required"
	MsgDescRequired       = "Description is required"
	MsgNameRequired       = "Name is required"
	MsgCPFRequired        = "CPF is required"
	MsgAgendaIDRequired   = "Agenda ID is required"
	MsgSessionIDRequired  = "Session ID cannot be null"
	MsgVoteCPFRequired    = "CPF cannot be blank"
)
