package testkit

import (
	"context"
	"sort"
	"time"

	postingModel "footstep/internal/domain/posting/model"
	baseModel "footstep/pkg/model"

	"gorm.io/gorm"
)

// PostingRepo 内存版 PostingRepository
type PostingRepo struct{ s *Store }

func (r *PostingRepo) Create(_ context.Context, posting *postingModel.Posting) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	posting.ID = r.s.nextID()
	posting.CreatedAt = r.s.Now()
	posting.RecordDate = baseModel.TruncateDay(posting.RecordDate)
	cp := *posting
	r.s.postings[posting.ID] = &cp
	return nil
}

func (r *PostingRepo) GetByID(_ context.Context, id uint) (*postingModel.Posting, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.postings[id]
	if !ok {
		return nil, errNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *PostingRepo) Update(_ context.Context, posting *postingModel.Posting) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *posting
	r.s.postings[posting.ID] = &cp
	return nil
}

func (r *PostingRepo) Remove(_ context.Context, id uint) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("postings", id); err != nil {
		return false, err
	}
	p, ok := r.s.postings[id]
	if !ok || !p.Status.IsNormal() {
		return false, nil
	}
	p.Status = baseModel.StatusRemoved
	return true, nil
}

func (r *PostingRepo) find(match func(p *postingModel.Posting) bool) []postingModel.Posting {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []postingModel.Posting{}
	for _, p := range r.s.postings {
		if p.Status.IsNormal() && match(p) {
			out = append(out, *p)
		}
	}
	newestFirst(out)
	return out
}

func (r *PostingRepo) FindByOwner(_ context.Context, userID uint) ([]postingModel.Posting, error) {
	return r.find(func(p *postingModel.Posting) bool { return p.UserID == userID }), nil
}

func (r *PostingRepo) FindByOwnerOnDate(_ context.Context, userID uint, date time.Time) ([]postingModel.Posting, error) {
	day := baseModel.TruncateDay(date)
	return r.find(func(p *postingModel.Posting) bool {
		return p.UserID == userID && p.RecordDate.Equal(day)
	}), nil
}

func (r *PostingRepo) FindByOwnerInRange(_ context.Context, userID uint, start, end time.Time) ([]postingModel.Posting, error) {
	from, to := baseModel.TruncateDay(start), baseModel.TruncateDay(end)
	return r.find(func(p *postingModel.Posting) bool {
		return p.UserID == userID && !p.RecordDate.Before(from) && !p.RecordDate.After(to)
	}), nil
}

func (r *PostingRepo) FindFeed(_ context.Context, viewerID uint, bl *baseModel.Blacklist) ([]postingModel.Posting, error) {
	return r.find(func(p *postingModel.Posting) bool {
		return p.UserID != viewerID && p.IsPublic() && !bl.HasPosting(p.ID)
	}), nil
}

func (r *PostingRepo) FindPublicByUser(_ context.Context, userID uint, bl *baseModel.Blacklist) ([]postingModel.Posting, error) {
	return r.find(func(p *postingModel.Posting) bool {
		return p.UserID == userID && p.IsPublic() && !bl.HasPosting(p.ID)
	}), nil
}

func (r *PostingRepo) CountNormalByUser(ctx context.Context, userID uint) (int64, error) {
	postings, _ := r.FindByOwner(ctx, userID)
	return int64(len(postings)), nil
}

func (r *PostingRepo) ListNormalIDsByOwner(ctx context.Context, userID uint) ([]uint, error) {
	postings, _ := r.FindByOwner(ctx, userID)
	ids := make([]uint, 0, len(postings))
	for _, p := range postings {
		ids = append(ids, p.ID)
	}
	return sortedIDs(ids), nil
}

// CommentRepo 内存版 CommentRepository
type CommentRepo struct{ s *Store }

func (r *CommentRepo) Create(_ context.Context, comment *postingModel.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	comment.ID = r.s.nextID()
	comment.CreatedAt = r.s.Now()
	cp := *comment
	r.s.comments[comment.ID] = &cp
	return nil
}

func (r *CommentRepo) GetByID(_ context.Context, id uint) (*postingModel.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.comments[id]
	if !ok {
		return nil, errNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *CommentRepo) FindVisibleByPosting(_ context.Context, postingID uint, bl *baseModel.Blacklist) ([]postingModel.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []postingModel.Comment{}
	for _, c := range r.s.comments {
		if c.PostingID == postingID && c.VisibleTo(bl) {
			out = append(out, *c)
		}
	}
	sortComments(out)
	return out, nil
}

func (r *CommentRepo) CountNormalByPostings(_ context.Context, postingIDs []uint) (map[uint]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	wanted := make(map[uint]struct{}, len(postingIDs))
	for _, id := range postingIDs {
		wanted[id] = struct{}{}
	}
	counts := map[uint]int64{}
	for _, c := range r.s.comments {
		if _, ok := wanted[c.PostingID]; ok && c.Status.IsNormal() {
			counts[c.PostingID]++
		}
	}
	return counts, nil
}

func (r *CommentRepo) Deactivate(_ context.Context, id uint) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("comments", id); err != nil {
		return false, err
	}
	c, ok := r.s.comments[id]
	if !ok || !c.Status.IsNormal() {
		return false, nil
	}
	c.Status = baseModel.StatusInactive
	return true, nil
}

func (r *CommentRepo) DeactivateByPosting(_ context.Context, postingID uint) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, c := range r.s.comments {
		if c.PostingID == postingID && c.Status.IsNormal() {
			c.Status = baseModel.StatusInactive
			n++
		}
	}
	return n, nil
}

func (r *CommentRepo) ListNormalIDsByOwner(_ context.Context, userID uint) ([]uint, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := []uint{}
	for _, c := range r.s.comments {
		if c.UserID == userID && c.Status.IsNormal() {
			ids = append(ids, c.ID)
		}
	}
	return sortedIDs(ids), nil
}

func sortComments(comments []postingModel.Comment) {
	sort.Slice(comments, func(i, j int) bool { return comments[i].ID < comments[j].ID })
}

// LikeRepo 内存版 LikeRepository
type LikeRepo struct{ s *Store }

func (r *LikeRepo) GetByUserAndPosting(_ context.Context, userID, postingID uint) (*postingModel.Like, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range r.s.likes {
		if l.UserID == userID && l.PostingID == postingID {
			cp := *l
			return &cp, nil
		}
	}
	return nil, errNotFound
}

func (r *LikeRepo) Create(_ context.Context, like *postingModel.Like) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range r.s.likes {
		if l.UserID == like.UserID && l.PostingID == like.PostingID {
			return gorm.ErrDuplicatedKey
		}
	}
	like.ID = r.s.nextID()
	like.CreatedAt = r.s.Now()
	cp := *like
	r.s.likes[like.ID] = &cp
	return nil
}

func (r *LikeRepo) SetStatus(_ context.Context, id uint, status baseModel.Status) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if l, ok := r.s.likes[id]; ok {
		l.Status = status
	}
	return nil
}

func (r *LikeRepo) StatsFor(_ context.Context, postingIDs []uint, viewerID uint) (map[uint]postingModel.LikeStat, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stats := map[uint]postingModel.LikeStat{}
	for _, id := range postingIDs {
		var stat postingModel.LikeStat
		for _, l := range r.s.likes {
			if l.PostingID == id && l.Status.IsNormal() {
				stat.Count++
				if l.UserID == viewerID {
					stat.Liked = true
				}
			}
		}
		stats[id] = stat
	}
	return stats, nil
}

func (r *LikeRepo) CountNormal(ctx context.Context, postingID uint) (int64, error) {
	stats, _ := r.StatsFor(ctx, []uint{postingID}, 0)
	return stats[postingID].Count, nil
}

func (r *LikeRepo) ListIDsByOwner(_ context.Context, userID uint) ([]uint, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := []uint{}
	for _, l := range r.s.likes {
		if l.UserID == userID {
			ids = append(ids, l.ID)
		}
	}
	return sortedIDs(ids), nil
}

func (r *LikeRepo) Delete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("likes", id); err != nil {
		return err
	}
	delete(r.s.likes, id)
	return nil
}

// PlaceRepo 内存版 PlaceRepository
type PlaceRepo struct{ s *Store }

func (r *PlaceRepo) GetByCoordinates(_ context.Context, lat, lng float64) (*postingModel.Place, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.places {
		if p.Latitude == lat && p.Longitude == lng {
			cp := *p
			return &cp, nil
		}
	}
	return nil, errNotFound
}

func (r *PlaceRepo) GetByID(_ context.Context, id uint) (*postingModel.Place, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.places[id]
	if !ok {
		return nil, errNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *PlaceRepo) FindByIDs(_ context.Context, ids []uint) (map[uint]postingModel.Place, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[uint]postingModel.Place, len(ids))
	for _, id := range ids {
		if p, ok := r.s.places[id]; ok {
			out[id] = *p
		}
	}
	return out, nil
}

func (r *PlaceRepo) Create(_ context.Context, place *postingModel.Place) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.places {
		if p.Latitude == place.Latitude && p.Longitude == place.Longitude {
			return gorm.ErrDuplicatedKey
		}
	}
	place.ID = r.s.nextID()
	cp := *place
	r.s.places[place.ID] = &cp
	return nil
}
