package service

import (
	"context"
	"sync"

	"dreambees-be/internal/dto"
	"dreambees-be/internal/entity"
	"dreambees-be/internal/metrics"
	"dreambees-be/internal/pkg/logger"
	"dreambees-be/internal/repository/memory"
	"dreambees-be/internal/repository/unitofwork"
	"dreambees-be/pkg/events"
	"dreambees-be/pkg/fal"
)

type testEnv struct {
	store      *memory.Store
	uowFactory unitofwork.RepositoryFactory
	metrics    *metrics.Metrics
	logger     logger.ILogger
}

func newTestEnv() *testEnv {
	store := memory.NewStore()
	return &testEnv{
		store:      store,
		uowFactory: unitofwork.NewMemoryRepositoryFactory(store),
		metrics:    metrics.New(),
		logger:     logger.NewNopLogger(),
	}
}

func (e *testEnv) mustChat(title string) *entity.Chat {
	chat, err := e.uowFactory.NewUnitOfWork(context.Background()).ChatRepository().Create(context.Background(), title)
	if err != nil {
		panic(err)
	}
	return chat
}

func (e *testEnv) message(id int64) *entity.Message {
	msg, err := e.uowFactory.NewUnitOfWork(context.Background()).MessageRepository().FindById(context.Background(), id)
	if err != nil {
		panic(err)
	}
	return msg
}

func strPtr(s string) *string { return &s }

type fakeEditor struct {
	mu     sync.Mutex
	calls  []fal.EditImageInput
	output *fal.EditImageOutput
	err    error
	block  bool
	panics bool
}

func (f *fakeEditor) EditImage(ctx context.Context, model string, input fal.EditImageInput) (*fal.EditImageOutput, error) {
	f.mu.Lock()
	f.calls = append(f.calls, input)
	f.mu.Unlock()

	if f.panics {
		panic("editor exploded")
	}
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.output, f.err
}

func (f *fakeEditor) Calls() []fal.EditImageInput {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]fal.EditImageInput(nil), f.calls...)
}

type fakeJobPublisher struct {
	mu   sync.Mutex
	jobs []dto.ImageEditJobMessage
	err  error
}

func (f *fakeJobPublisher) Publish(ctx context.Context, job dto.ImageEditJobMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, job)
	return nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []*dto.MessageEvent
}

func (n *recordingNotifier) NotifyMessageUpdated(chatId int64, event *dto.MessageEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) Statuses() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.Data.Metadata.Status)
	}
	return out
}

type recordingEventPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingEventPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingEventPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}
