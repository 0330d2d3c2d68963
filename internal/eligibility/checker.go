// Package eligibility 封装外部投票资格校验能力
package eligibility

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/lvdashuaibi/agendavote/config"
	"github.com/lvdashuaibi/agendavote/internal/apperr"
	"github.com/lvdashuaibi/agendavote/internal/model"
)

// Checker 外部资格校验服务
type Checker interface {
	IsValidIdentifier(ctx context.Context, nationalID string) (bool, error)
	CheckEligibility(ctx context.Context, nationalID string) (model.Eligibility, error)
}

// Validator 将校验结果转换为投票前的判定
type Validator struct {
	checker Checker
}

func NewValidator(checker Checker) *Validator {
	return &Validator{checker: checker}
}

// ValidateForVoting CPF无效时返回 NotFound，否则返回资格结果
// 外部服务出错时原样返回错误，不做本地兜底
func (v *Validator) ValidateForVoting(ctx context.Context, nationalID string) (model.Eligibility, error) {
	valid, err := v.checker.IsValidIdentifier(ctx, nationalID)
	if err != nil {
		return "", fmt.Errorf("校验CPF失败: %w", err)
	}
	if !valid {
		return "", apperr.NotFound(apperr.MsgInvalidCPF)
	}

	result, err := v.checker.CheckEligibility(ctx, nationalID)
	if err != nil {
		return "", fmt.Errorf("查询投票资格失败: %w", err)
	}
	return result, nil
}

// Blocklist 不可投票名单
type Blocklist interface {
	IsBlocked(ctx context.Context, nationalID string) (bool, error)
}

// CPFChecker 本地校验CPF校验位，资格由黑名单决定
type CPFChecker struct {
	blocklist Blocklist
}

// NewCPFChecker blocklist 为 nil 时所有有效CPF均可投票
func NewCPFChecker(blocklist Blocklist) *CPFChecker {
	return &CPFChecker{blocklist: blocklist}
}

func (c *CPFChecker) IsValidIdentifier(ctx context.Context, nationalID string) (bool, error) {
	return ValidCPF(nationalID), nil
}

func (c *CPFChecker) CheckEligibility(ctx context.Context, nationalID string) (model.Eligibility, error) {
	if c.blocklist == nil {
		return model.AbleToVote, nil
	}
	blocked, err := c.blocklist.IsBlocked(ctx, NormalizeCPF(nationalID))
	if err != nil {
		return "", err
	}
	if blocked {
		return model.UnableToVote, nil
	}
	return model.AbleToVote, nil
}

// SimulatedChecker 随机模拟外部服务，仅用于演示环境
type SimulatedChecker struct {
	mu          sync.Mutex
	rnd         *rand.Rand
	invalidRate float64
	unableRate  float64
}

func NewSimulatedChecker(invalidRate, unableRate float64, seed int64) *SimulatedChecker {
	return &SimulatedChecker{
		rnd:         rand.New(rand.NewSource(seed)),
		invalidRate: invalidRate,
		unableRate:  unableRate,
	}
}

func (c *SimulatedChecker) IsValidIdentifier(ctx context.Context, nationalID string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rnd.Float64() >= c.invalidRate, nil
}

func (c *SimulatedChecker) CheckEligibility(ctx context.Context, nationalID string) (model.Eligibility, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rnd.Float64() < c.unableRate {
		return model.UnableToVote, nil
	}
	return model.AbleToVote, nil
}

// StaticChecker 确定性的校验实现，名单中的CPF分别视为无效或不可投票
type StaticChecker struct {
	invalid    map[string]struct{}
	ineligible map[string]struct{}
}

func NewStaticChecker(invalid, ineligible []string) *StaticChecker {
	c := &StaticChecker{
		invalid:    make(map[string]struct{}, len(invalid)),
		ineligible: make(map[string]struct{}, len(ineligible)),
	}
	for _, id := range invalid {
		c.invalid[NormalizeCPF(id)] = struct{}{}
	}
	for _, id := range ineligible {
		c.ineligible[NormalizeCPF(id)] = struct{}{}
	}
	return c
}

func (c *StaticChecker) IsValidIdentifier(ctx context.Context, nationalID string) (bool, error) {
	_, bad := c.invalid[NormalizeCPF(nationalID)]
	return !bad, nil
}

func (c *StaticChecker) CheckEligibility(ctx context.Context, nationalID string) (model.Eligibility, error) {
	if _, no := c.ineligible[NormalizeCPF(nationalID)]; no {
		return model.UnableToVote, nil
	}
	return model.AbleToVote, nil
}

// NewChecker 根据配置选择校验实现
func NewChecker(cfg config.EligibilityConfig, blocklist Blocklist) (Checker, error) {
	switch cfg.Mode {
	case "", "cpf":
		return NewCPFChecker(blocklist), nil
	case "simulated":
		return NewSimulatedChecker(cfg.InvalidRate, cfg.UnableRate, time.Now().UnixNano()), nil
	case "static":
		return NewStaticChecker(nil, cfg.Ineligible), nil
	default:
		return nil, fmt.Errorf("不支持的资格校验模式: %s", cfg.Mode)
	}
}
