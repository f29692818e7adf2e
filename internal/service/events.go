package service

import (
	"context"
	"time"

	"Trek_Community/internal/pkg"

	"github.com/rs/zerolog"
)

const (
	EventPostCreated    = "post.created"
	EventCommentCreated = "comment.created"
	EventMemberAdded    = "member.added"
)

// Producer 事件推送，nil 表示未启用
type Producer interface {
	Publish(ctx context.Context, e pkg.Event) error
}

// publish 尽力而为：推送失败只记日志，写路径不依赖 broker
func publish(ctx context.Context, log zerolog.Logger, p Producer, kind string, id uint64, data any) {
	if p == nil {
		return
	}
	e := pkg.Event{Kind: kind, ID: id, At: time.Now(), Data: data}
	if err := p.Publish(ctx, e); err != nil {
		log.Warn().Err(err).Str("kind", kind).Uint64("id", id).Msg("event publish failed")
	}
}
