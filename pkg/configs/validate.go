package configs

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yeisme/docchat/pkg/rule"
)

// Validate 使用 rule 标签校验整个配置树，错误信息按字段路径排序.
func (c *AppConfig) Validate() error {
	if err := rule.ValidateStruct(c); err != nil {
		fields := rule.Errors(err)
		if len(fields) == 0 {
			return fmt.Errorf("validate config: %w", err)
		}

		msgs := make([]string, 0, len(fields))
		for field, msg := range fields {
			msgs = append(msgs, strings.TrimPrefix(field, "AppConfig.")+" "+msg)
		}

		sort.Strings(msgs)

		return fmt.Errorf("validate config: %s", strings.Join(msgs, "; "))
	}

	if c.Store.Type == StoreTypeDB && c.DB.GetDSN() == "" {
		return fmt.Errorf("validate config: store type %q requires a supported db type, got %q", c.Store.Type, c.DB.Type)
	}

	return nil
}
