package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"videogen-service/ddd/domain/entity"
	"videogen-service/ddd/domain/gateway"
	"videogen-service/ddd/domain/repo"
	"videogen-service/ddd/domain/vo"
	"videogen-service/ddd/infrastructure/database/dao"
	"videogen-service/ddd/infrastructure/database/persistence"
	"videogen-service/ddd/infrastructure/database/po"
	"videogen-service/pkg/errno"
)

const (
	testUser        = "user-1"
	testCallbackURL = "http://cb.local/api/v1/callbacks/"
	testAccount     = "acct-1"
)

type fakeGateway struct {
	provider vo.ProviderType

	mu        sync.Mutex
	seq       int
	submitted []gateway.GenerationRequest
	// reject 返回非空错误时同步拒绝
	reject func(req gateway.GenerationRequest) error
	block  bool
}

func (g *fakeGateway) Provider() vo.ProviderType { return g.provider }

func (g *fakeGateway) Submit(ctx context.Context, req gateway.GenerationRequest) (vo.JobHandle, error) {
	g.mu.Lock()
	g.submitted = append(g.submitted, req)
	g.seq++
	id := fmt.Sprintf("%s-job-%d", g.provider, g.seq)
	reject, block := g.reject, g.block
	g.mu.Unlock()

	if block {
		<-ctx.Done()
		return vo.JobHandle{}, ctx.Err()
	}
	if reject != nil {
		if err := reject(req); err != nil {
			return vo.JobHandle{}, err
		}
	}
	return vo.JobHandle{JobID: id}, nil
}

func (g *fakeGateway) Poll(_ context.Context, jobID string) (*vo.JobResult, error) {
	return vo.StillRunning(jobID), nil
}

func (g *fakeGateway) NormalizeCallback(payload []byte) (*vo.JobResult, error) {
	var r vo.JobResult
	if err := json.Unmarshal(payload, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (g *fakeGateway) submissions() []gateway.GenerationRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]gateway.GenerationRequest(nil), g.submitted...)
}

type fakeRegistry map[vo.ProviderType]gateway.GenerationGateway

func (r fakeRegistry) Get(p vo.ProviderType) (gateway.GenerationGateway, error) {
	gw, ok := r[p]
	if !ok {
		return nil, fmt.Errorf("no gateway for %s", p)
	}
	return gw, nil
}

type fakePublisher struct {
	mu        sync.Mutex
	submitted []gateway.PublishRequest
	err       error
}

func (p *fakePublisher) Submit(_ context.Context, req gateway.PublishRequest) (vo.JobHandle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.submitted = append(p.submitted, req)
	if p.err != nil {
		return vo.JobHandle{}, p.err
	}
	return vo.JobHandle{JobID: fmt.Sprintf("pub-%d", len(p.submitted))}, nil
}

func (p *fakePublisher) Poll(_ context.Context, _, publishID string) (*vo.JobResult, error) {
	return vo.StillRunning(publishID), nil
}

func (p *fakePublisher) NormalizeCallback(payload []byte) (*vo.JobResult, error) {
	var r vo.JobResult
	if err := json.Unmarshal(payload, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

type recordingEvents struct {
	mu     sync.Mutex
	events []gateway.LifecycleEvent
}

func (e *recordingEvents) Publish(_ context.Context, evt gateway.LifecycleEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, evt)
	return nil
}

func (e *recordingEvents) statuses(entityName, uuid string) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []string
	for _, evt := range e.events {
		if evt.Entity == entityName && evt.EntityUUID == uuid {
			out = append(out, evt.Status)
		}
	}
	return out
}

type harness struct {
	db      *gorm.DB
	videos  repo.VideoRepository
	batches repo.BatchRepository
	posts   repo.PostRepository

	avatar    *fakeGateway
	text2     *fakeGateway
	publisher *fakePublisher
	events    *recordingEvents

	generation   GenerationService
	orchestrator BatchOrchestrator
	cancellation CancellationCoordinator
	publish      PublishService
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, persistence.AutoMigrate(db))
	return db
}

func newHarness(t *testing.T, opts OrchestratorOptions) *harness {
	t.Helper()
	db := openTestDB(t)
	h := &harness{
		db:        db,
		videos:    persistence.NewVideoRepository(db),
		batches:   persistence.NewBatchRepository(db),
		posts:     persistence.NewPostRepository(db),
		avatar:    &fakeGateway{provider: vo.ProviderAvatar},
		text2:     &fakeGateway{provider: vo.ProviderText2Video},
		publisher: &fakePublisher{},
		events:    &recordingEvents{},
	}
	registry := fakeRegistry{vo.ProviderAvatar: h.avatar, vo.ProviderText2Video: h.text2}
	h.generation = NewGenerationService(h.videos, registry, h.events, 100*time.Millisecond, testCallbackURL)
	h.orchestrator = NewBatchOrchestrator(h.batches, h.videos, h.generation, nil, nil, h.events, opts)
	h.cancellation = NewCancellationCoordinator(h.videos, h.orchestrator, h.events)
	h.publish = NewPublishService(h.posts, h.videos, persistence.NewAccountRepository(db), h.publisher, h.events,
		100*time.Millisecond, "SELF_ONLY")
	return h
}

func fixedConcurrency(n int) func(vo.ProviderType) int {
	return func(vo.ProviderType) int { return n }
}

func (h *harness) draftVideo(t *testing.T) *entity.Video {
	t.Helper()
	v, err := entity.NewVideo(testUser, vo.ProviderAvatar, vo.GenerationParams{Title: "Mug", Script: "buy this mug", AvatarID: "a1"}, "")
	require.NoError(t, err)
	require.NoError(t, h.videos.CreateVideo(context.Background(), v))
	return v
}

func (h *harness) generatingVideo(t *testing.T) *entity.Video {
	t.Helper()
	v, err := h.generation.Dispatch(context.Background(), h.draftVideo(t))
	require.NoError(t, err)
	return v
}

func (h *harness) readyVideo(t *testing.T) *entity.Video {
	t.Helper()
	v := h.generatingVideo(t)
	ready, err := h.generation.Resolve(context.Background(), vo.ProviderAvatar,
		&vo.JobResult{ReferenceID: v.VideoUUID(), Success: true, ResultURL: "https://cdn.local/" + v.VideoUUID() + ".mp4"})
	require.NoError(t, err)
	return ready
}

func (h *harness) linkAccount(t *testing.T, token string, expiresAt *time.Time) {
	t.Helper()
	require.NoError(t, dao.NewPostDAO(h.db).SaveAccount(context.Background(), &po.TikTokAccount{
		UserUUID:    testUser,
		AccountID:   testAccount,
		AccessToken: token,
		ExpiresAt:   expiresAt,
	}))
}

func (h *harness) video(t *testing.T, uuid string) *entity.Video {
	t.Helper()
	v, err := h.videos.GetVideo(context.Background(), testUser, uuid)
	require.NoError(t, err)
	return v
}

func (h *harness) batch(t *testing.T, uuid string) *entity.BatchJob {
	t.Helper()
	b, err := h.batches.GetBatch(context.Background(), testUser, uuid)
	require.NoError(t, err)
	return b
}

func prompts(ps ...string) []vo.GenerationParams {
	out := make([]vo.GenerationParams, 0, len(ps))
	for _, p := range ps {
		out = append(out, vo.GenerationParams{Prompt: p})
	}
	return out
}

func rejectPrompt(prompt string) func(gateway.GenerationRequest) error {
	return func(req gateway.GenerationRequest) error {
		if req.Params.Prompt == prompt {
			return errno.Errorf(errno.ErrAdapter, "prompt %q violates content policy", prompt)
		}
		return nil
	}
}

func countItems(b *entity.BatchJob, status vo.ItemStatus) int {
	n := 0
	for _, item := range b.Items() {
		if item.Status() == status {
			n++
		}
	}
	return n
}
