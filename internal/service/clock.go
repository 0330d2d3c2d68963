package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/lvdashuaibi/agendavote/internal/apperr"
	"github.com/lvdashuaibi/agendavote/internal/model"
)

// Clock 当前时间来源
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock 使用系统时间
var SystemClock Clock = systemClock{}

// DeriveStatus 会话的实际状态：到达结束时间即为 CLOSED，否则沿用存储的状态
func DeriveStatus(s model.Session, now time.Time) model.SessionStatus {
	if !now.Before(s.EndTime) {
		return model.SessionClosed
	}
	return s.Status
}

func IsOpen(s model.Session, now time.Time) bool {
	return DeriveStatus(s, now) == model.SessionOpen
}

// validID 格式错误的ID等同于不存在
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func notFoundUnlessValid(id, message string) error {
	if !validID(id) {
		return apperr.NotFound(message)
	}
	return nil
}
