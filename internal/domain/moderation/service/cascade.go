package service

import (
	"context"

	"footstep/pkg/apperr"

	"go.uber.org/zap"
)

// cascade 下架作者的足迹及其评论、失效作者的评论、删除作者的点赞
// 每一条在自己的保存点里执行，失败只回滚该条并继续
func (p *policy) cascade(ctx context.Context, operation string, userID uint) error {
	failures := apperr.NewCollector(operation)

	postingIDs, err := p.Postings.ListNormalIDsByOwner(ctx, userID)
	if err != nil {
		return err
	}
	for _, id := range postingIDs {
		p.item(ctx, failures, CollectionPostings, id, func(ctx context.Context) error {
			if _, err := p.Postings.Remove(ctx, id); err != nil {
				return err
			}
			_, err := p.Comments.DeactivateByPosting(ctx, id)
			return err
		})
	}

	commentIDs, err := p.Comments.ListNormalIDsByOwner(ctx, userID)
	if err != nil {
		return err
	}
	for _, id := range commentIDs {
		p.item(ctx, failures, CollectionComments, id, func(ctx context.Context) error {
			_, err := p.Comments.Deactivate(ctx, id)
			return err
		})
	}

	likeIDs, err := p.Likes.ListIDsByOwner(ctx, userID)
	if err != nil {
		return err
	}
	for _, id := range likeIDs {
		p.item(ctx, failures, CollectionLikes, id, func(ctx context.Context) error {
			return p.Likes.Delete(ctx, id)
		})
	}

	p.Log.Info("cascade finished",
		zap.String("operation", operation),
		zap.Uint("user_id", userID),
		zap.Int("postings", len(postingIDs)),
		zap.Int("comments", len(commentIDs)),
		zap.Int("likes", len(likeIDs)),
		zap.Int("failures", failures.Len()))
	return failures.Err()
}

func (p *policy) item(ctx context.Context, failures *apperr.Collector, collection string, id uint, fn func(ctx context.Context) error) {
	err := p.Tx.Transaction(ctx, fn)
	if err == nil {
		return
	}
	failures.Add(collection, id, err)
	p.Metrics.RecordCascadeFailure(failures.Operation(), collection)
	p.Log.Error("cascade item failed",
		zap.String("collection", collection),
		zap.Uint("id", id),
		zap.Error(err))
}
