package graph

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Long 64位整数标量，内置 Int 只有32位，会话时长和票数可能超出
type Long int64

func (Long) ImplementsGraphQLType(name string) bool { return name == "Long" }

func (l *Long) UnmarshalGraphQL(input interface{}) error {
	switch v := input.(type) {
	case int32:
		*l = Long(v)
	case int64:
		*l = Long(v)
	case int:
		*l = Long(v)
	case float64:
		if v != math.Trunc(v) || v < math.MinInt64 || v >= math.MaxInt64 {
			return fmt.Errorf("Long 超出范围或不是整数: %v", v)
		}
		*l = Long(v)
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("无效的 Long: %q", v)
		}
		*l = Long(n)
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return fmt.Errorf("无效的 Long: %q", v)
		}
		*l = Long(n)
	default:
		return fmt.Errorf("Long 不支持类型 %T", input)
	}
	return nil
}

func (l Long) MarshalJSON() ([]byte, error) {
	return strconv.AppendInt(nil, int64(l), 10), nil
}
