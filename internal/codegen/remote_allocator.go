package codegen

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// RemoteAllocator 远程计数服务客户端
// 计数器由独立服务维护时走这条路，原子性由服务端保证
type RemoteAllocator struct {
	client *resty.Client
}

// nextSequenceResp 计数服务响应
type nextSequenceResp struct {
	ItemTypeCode string `json:"item_type_code"`
	Sequence     int64  `json:"sequence"`
}

// NewRemoteAllocator 创建远程分配器
// baseURL 形如 http://counter-svc:8090
func NewRemoteAllocator(baseURL string, timeout time.Duration) *RemoteAllocator {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("User-Agent", "Taxonomy-Go-App/1.0")

	return &RemoteAllocator{client: client}
}

// Next 请求下一个序列号
// 瞬时失败由 Generator 层重试一次后降级，这里不做重试
func (a *RemoteAllocator) Next(ctx context.Context, itemTypeCode string) (int64, error) {
	var res nextSequenceResp
	resp, err := a.client.R().
		SetContext(ctx).
		SetResult(&res).
		Post(fmt.Sprintf("/api/counters/%s/next", itemTypeCode))

	if err != nil {
		return 0, fmt.Errorf("计数服务请求失败: %v", err)
	}
	if resp.StatusCode() != 200 {
		return 0, fmt.Errorf("计数服务异常 [%d]: %s", resp.StatusCode(), resp.String())
	}
	if res.Sequence <= 0 {
		return 0, fmt.Errorf("计数服务返回非法序列号: %d", res.Sequence)
	}
	return res.Sequence, nil
}
