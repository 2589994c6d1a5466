package apperr

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

// ItemFailure 级联处理中单条记录的失败
type ItemFailure struct {
	Collection string // postings, comments, likes, sessions
	ID         uint
	Err        error
}

func (f ItemFailure) Error() string {
	return fmt.Sprintf("%s#%d: %v", f.Collection, f.ID, f.Err)
}

func (f ItemFailure) Unwrap() error {
	return f.Err
}

// PartialFailure 部分失败：已成功的变更保持提交，失败项汇总在这里
type PartialFailure struct {
	Operation string
	Items     []ItemFailure
}

func (p *PartialFailure) Error() string {
	parts := make([]string, 0, len(p.Items))
	for _, it := range p.Items {
		parts = append(parts, it.Error())
	}
	return fmt.Sprintf("%s partially failed (%d items): %s", p.Operation, len(p.Items), strings.Join(parts, "; "))
}

// Unwrap 暴露所有子错误，便于 errors.Is 穿透
func (p *PartialFailure) Unwrap() []error {
	return multierr.Errors(p.Combined())
}

// Combined 合并为一个 multierr
func (p *PartialFailure) Combined() error {
	var err error
	for _, it := range p.Items {
		err = multierr.Append(err, it)
	}
	return err
}

// Collector 收集级联失败项
type Collector struct {
	operation string
	items     []ItemFailure
}

func NewCollector(operation string) *Collector {
	return &Collector{operation: operation}
}

func (c *Collector) Add(collection string, id uint, err error) {
	if err == nil {
		return
	}
	c.items = append(c.items, ItemFailure{Collection: collection, ID: id, Err: err})
}

func (c *Collector) Operation() string {
	return c.operation
}

func (c *Collector) Len() int {
	return len(c.items)
}

// Err 没有失败项时返回 nil
func (c *Collector) Err() error {
	if len(c.items) == 0 {
		return nil
	}
	return &PartialFailure{Operation: c.operation, Items: append([]ItemFailure(nil), c.items...)}
}
