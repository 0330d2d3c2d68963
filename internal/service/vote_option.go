package service

import (
	"strings"

	"github.com/lvdashuaibi/agendavote/internal/apperr"
	"github.com/lvdashuaibi/agendavote/internal/model"
)

// ParseVoteOption 不区分大小写地解析 YES / NO
func ParseVoteOption(text string) (model.VoteOption, error) {
	switch strings.ToUpper(strings.TrimSpace(text)) {
	case string(model.OptionAffirm):
		return model.OptionAffirm, nil
	case string(model.OptionReject):
		return model.OptionReject, nil
	}
	return "", apperr.InvalidArgument(apperr.MsgInvalidVoteOption)
}
