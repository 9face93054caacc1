package persistence

import (
	"context"
	"time"

	"gorm.io/gorm"

	"videogen-service/ddd/domain/entity"
	"videogen-service/ddd/domain/repo"
	"videogen-service/ddd/domain/vo"
	"videogen-service/ddd/infrastructure/database/convertor"
	"videogen-service/ddd/infrastructure/database/dao"
	"videogen-service/pkg/errno"
)

type videoRepositoryImpl struct {
	videoDao  *dao.VideoDAO
	convertor *convertor.VideoConvertor
}

func NewVideoRepository(db *gorm.DB) repo.VideoRepository {
	return &videoRepositoryImpl{
		videoDao:  dao.NewVideoDAO(db),
		convertor: convertor.NewVideoConvertor(),
	}
}

func (r *videoRepositoryImpl) CreateVideo(ctx context.Context, video *entity.Video) error {
	return wrapErr(r.videoDao.Create(ctx, r.convertor.ToPO(video)), errno.ErrVideoNotFound)
}

func (r *videoRepositoryImpl) GetVideo(ctx context.Context, userUUID, videoUUID string) (*entity.Video, error) {
	if videoUUID == "" {
		return nil, errno.ErrVideoUUIDRequired
	}
	p, err := r.videoDao.FindOwned(ctx, userUUID, videoUUID)
	if err != nil {
		return nil, wrapErr(err, errno.ErrVideoNotFound)
	}
	return r.convertor.ToEntity(p), nil
}

func (r *videoRepositoryImpl) FindVideo(ctx context.Context, videoUUID string) (*entity.Video, error) {
	p, err := r.videoDao.FindByUUID(ctx, videoUUID)
	if err != nil {
		return nil, wrapErr(err, errno.ErrVideoNotFound)
	}
	return r.convertor.ToEntity(p), nil
}

func (r *videoRepositoryImpl) FindVideoByJob(ctx context.Context, provider vo.ProviderType, jobID string) (*entity.Video, error) {
	p, err := r.videoDao.FindByJob(ctx, provider.String(), jobID)
	if err != nil {
		return nil, wrapErr(err, errno.ErrVideoNotFound)
	}
	return r.convertor.ToEntity(p), nil
}

func (r *videoRepositoryImpl) TransitionVideo(ctx context.Context, userUUID, videoUUID string, t entity.VideoTransition) (*entity.Video, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{
		"status":     string(t.To),
		"progress":   t.Progress,
		"message":    t.Message,
		"updated_at": time.Now(),
	}
	if t.RemoteURL != "" {
		updates["remote_url"] = t.RemoteURL
	}
	if t.ErrorMessage != "" {
		updates["error_message"] = t.ErrorMessage
	}

	affected, err := r.videoDao.ConditionalUpdate(ctx, userUUID, videoUUID, vo.VideoStatusStrings(t.From...), updates)
	if err != nil {
		return nil, wrapErr(err, errno.ErrVideoNotFound)
	}
	if affected == 0 {
		current, err := r.GetVideo(ctx, userUUID, videoUUID)
		if err != nil {
			return nil, err
		}
		return nil, errno.Errorf(errno.ErrInvalidTransition, "video %s is %s, cannot move to %s", videoUUID, current.Status(), t.To)
	}
	return r.GetVideo(ctx, userUUID, videoUUID)
}

func (r *videoRepositoryImpl) AttachGenerationJob(ctx context.Context, videoUUID, jobID string) error {
	affected, err := r.videoDao.AttachJob(ctx, videoUUID, vo.VideoStatusGenerating.String(), jobID)
	if err != nil {
		return wrapErr(err, errno.ErrVideoNotFound)
	}
	if affected == 0 {
		return errno.Errorf(errno.ErrInvalidTransition, "video %s is no longer generating", videoUUID)
	}
	return nil
}

func (r *videoRepositoryImpl) ListVideosByStatus(ctx context.Context, status vo.VideoStatus, limit int) ([]*entity.Video, error) {
	pos, err := r.videoDao.QueryByStatus(ctx, status.String(), limit)
	if err != nil {
		return nil, wrapErr(err, errno.ErrVideoNotFound)
	}
	return r.convertor.ToEntities(pos), nil
}
