package app

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

	"videogen-service/ddd/application/cqe"
	"videogen-service/ddd/domain/gateway"
	"videogen-service/ddd/domain/vo"
	"videogen-service/ddd/infrastructure/database/dao"
	"videogen-service/ddd/infrastructure/database/persistence"
	"videogen-service/ddd/infrastructure/database/po"
	"videogen-service/pkg/config"
)

const testUser = "user-1"

type stubGateway struct {
	provider vo.ProviderType

	mu      sync.Mutex
	seq     int
	results map[string]*vo.JobResult
}

func (g *stubGateway) Provider() vo.ProviderType { return g.provider }

func (g *stubGateway) Submit(_ context.Context, _ gateway.GenerationRequest) (vo.JobHandle, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return vo.JobHandle{JobID: fmt.Sprintf("%s-%d", g.provider, g.seq)}, nil
}

func (g *stubGateway) Poll(_ context.Context, jobID string) (*vo.JobResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if r, ok := g.results[jobID]; ok {
		copied := *r
		return &copied, nil
	}
	return vo.StillRunning(jobID), nil
}

func (g *stubGateway) NormalizeCallback(payload []byte) (*vo.JobResult, error) {
	var r vo.JobResult
	if err := json.Unmarshal(payload, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (g *stubGateway) finish(jobID string, r *vo.JobResult) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.results == nil {
		g.results = make(map[string]*vo.JobResult)
	}
	g.results[jobID] = r
}

type stubRegistry map[vo.ProviderType]gateway.GenerationGateway

func (r stubRegistry) Get(p vo.ProviderType) (gateway.GenerationGateway, error) {
	gw, ok := r[p]
	if !ok {
		return nil, fmt.Errorf("no gateway for %s", p)
	}
	return gw, nil
}

type stubPublisher struct {
	mu      sync.Mutex
	seq     int
	tokens  []string
	results map[string]*vo.JobResult
	// onSubmit 在 Submit 返回前调用，模拟先于响应到达的 webhook
	onSubmit func(publishID string)
}

func (p *stubPublisher) Submit(_ context.Context, _ gateway.PublishRequest) (vo.JobHandle, error) {
	p.mu.Lock()
	p.seq++
	id := fmt.Sprintf("pub-%d", p.seq)
	hook := p.onSubmit
	p.mu.Unlock()
	if hook != nil {
		hook(id)
	}
	return vo.JobHandle{JobID: id}, nil
}

func (p *stubPublisher) Poll(_ context.Context, token, publishID string) (*vo.JobResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tokens = append(p.tokens, token)
	if r, ok := p.results[publishID]; ok {
		copied := *r
		return &copied, nil
	}
	return vo.StillRunning(publishID), nil
}

func (p *stubPublisher) NormalizeCallback(payload []byte) (*vo.JobResult, error) {
	var r vo.JobResult
	if err := json.Unmarshal(payload, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

type testEnv struct {
	db        *gorm.DB
	engine    *Engine
	avatar    *stubGateway
	text2     *stubGateway
	publisher *stubPublisher
	videos    VideoApp
	batches   BatchApp
	posts     PostApp
	status    *statusAppImpl
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, persistence.AutoMigrate(db))

	cfg := &config.Config{
		Provider: config.ProviderConfig{
			Timeout:     time.Second,
			CallbackURL: "http://localhost:8085/api/v1/callbacks",
			Avatar:      config.ProviderEndpoint{Concurrency: 2},
			Text2Video:  config.ProviderEndpoint{Concurrency: 2},
			TikTok:      config.TikTokProviderConfig{PrivacyLevel: "SELF_ONLY"},
		},
		Batch: config.BatchConfig{MaxItems: 10},
	}
	env := &testEnv{
		db:        db,
		avatar:    &stubGateway{provider: vo.ProviderAvatar},
		text2:     &stubGateway{provider: vo.ProviderText2Video},
		publisher: &stubPublisher{results: map[string]*vo.JobResult{}},
	}
	env.engine = NewEngine(cfg, db, EngineAdapters{
		Providers: stubRegistry{vo.ProviderAvatar: env.avatar, vo.ProviderText2Video: env.text2},
		Publisher: env.publisher,
	})
	env.videos = NewVideoAppWith(env.engine.Videos, env.engine.Generation, env.engine.Cancellation)
	env.batches = NewBatchAppWith(env.engine.Batches, env.engine.Orchestrator, env.engine.Cancellation)
	env.posts = NewPostAppWith(env.engine.Publish)
	env.status = NewStatusAppWith(env.engine, PollOptions{
		GenerationTimeout: 10 * time.Minute,
		PublishTimeout:    5 * time.Minute,
	}).(*statusAppImpl)
	return env
}

// generatingVideo 创建并派发一个数字人视频，返回视频UUID和外部任务ID
func (e *testEnv) generatingVideo(t *testing.T) (string, string) {
	t.Helper()
	ctx := context.Background()
	created, err := e.videos.CreateVideo(ctx, &cqe.CreateVideoReq{
		UserUUID: testUser,
		Provider: "avatar",
		Title:    "Mug",
		Script:   "buy this mug",
		AvatarID: "a1",
	})
	require.NoError(t, err)
	status, err := e.videos.GenerateVideo(ctx, &cqe.VideoActionReq{UserUUID: testUser, VideoUUID: created.VideoUUID})
	require.NoError(t, err)
	require.Equal(t, "generating", status.Status)

	v, err := e.engine.Videos.GetVideo(ctx, testUser, created.VideoUUID)
	require.NoError(t, err)
	return created.VideoUUID, v.GenerationJobID()
}

func (e *testEnv) readyVideo(t *testing.T) string {
	t.Helper()
	uuid, _ := e.generatingVideo(t)
	ack, err := e.status.ApplyResult(context.Background(), &cqe.ProviderResultMsg{
		Kind:     cqe.ResultKindGeneration,
		Provider: "avatar",
		Result:   vo.JobResult{ReferenceID: uuid, Success: true, ResultURL: "https://cdn.local/" + uuid + ".mp4"},
	})
	require.NoError(t, err)
	require.True(t, ack.Applied)
	return uuid
}

func (e *testEnv) linkAccount(t *testing.T, accountID, token string) {
	t.Helper()
	require.NoError(t, dao.NewPostDAO(e.db).SaveAccount(context.Background(), &po.TikTokAccount{
		UserUUID:    testUser,
		AccountID:   accountID,
		AccessToken: token,
	}))
}

func (e *testEnv) videoStatus(t *testing.T, uuid string) string {
	t.Helper()
	d, err := e.status.GetVideoStatus(context.Background(), &cqe.VideoActionReq{UserUUID: testUser, VideoUUID: uuid})
	require.NoError(t, err)
	return d.Status
}
