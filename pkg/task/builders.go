package task

import (
	"context"
	"time"

	"github.com/sequentech/frestq-go/pkg/store"
	"github.com/sequentech/frestq-go/pkg/wire"
)

// Spec describes the fields needed to create any task node, the equivalent
// of the keyword arguments BaseTask.__init__ takes in the original.
type Spec struct {
	Label       string
	Action      string
	QueueName   string
	ReceiverURL string
	Data        any
	AsyncData   any
}

func newBaseTask(taskType store.TaskType, spec Spec, rootURL string) (*store.Task, error) {
	data, err := wire.Dumps(spec.Data)
	if err != nil {
		return nil, err
	}
	asyncData, err := wire.Dumps(spec.AsyncData)
	if err != nil {
		return nil, err
	}

	receiverURL := spec.ReceiverURL
	isLocal := receiverURL == "" || receiverURL == rootURL
	if receiverURL == "" {
		receiverURL = rootURL
	}

	now := time.Now()
	return &store.Task{
		ID:               newTaskID(),
		TaskType:         taskType,
		Label:            spec.Label,
		Action:           spec.Action,
		QueueName:        spec.QueueName,
		Status:           store.StatusCreated,
		IsLocal:          isLocal,
		ReceiverURL:      receiverURL,
		SenderURL:        rootURL,
		CreatedDate:      now,
		LastModifiedDate: now,
		InputData:        data,
		InputAsyncData:   asyncData,
	}, nil
}

// NewSimpleTask creates a single request/response task, the equivalent of
// SimpleTask(...).
func (e *Engine) NewSimpleTask(ctx context.Context, spec Spec) (*Handle, error) {
	t, err := newBaseTask(store.TaskTypeSimple, spec, e.RootURL)
	if err != nil {
		return nil, err
	}
	return e.persistRoot(ctx, t)
}

// NewExternalTask creates a placeholder task that only finishes when
// something calls Handle.Finish, the equivalent of ExternalTask(...).
func (e *Engine) NewExternalTask(ctx context.Context, spec Spec) (*Handle, error) {
	t, err := newBaseTask(store.TaskTypeExternal, spec, e.RootURL)
	if err != nil {
		return nil, err
	}
	return e.persistRoot(ctx, t)
}

// compositeBuilder is shared scaffolding for the three container task types,
// each of which owns an ordered or unordered set of child tasks added after
// construction via Add.
type compositeBuilder struct {
	engine *Engine
	handle *Handle
	order  int
}

// NewSequentialTask creates a container that runs its children one at a
// time, in the order they are added.
func (e *Engine) NewSequentialTask(ctx context.Context, spec Spec) (*compositeBuilder, error) {
	return e.newComposite(ctx, store.TaskTypeSequential, spec)
}

// NewParallelTask creates a container that runs all of its children at once.
func (e *Engine) NewParallelTask(ctx context.Context, spec Spec) (*compositeBuilder, error) {
	return e.newComposite(ctx, store.TaskTypeParallel, spec)
}

// NewSynchronizedTask creates a container whose children each wait at a
// reservation barrier until every sibling has reached it too.
func (e *Engine) NewSynchronizedTask(ctx context.Context, spec Spec) (*compositeBuilder, error) {
	return e.newComposite(ctx, store.TaskTypeSynchronized, spec)
}

func (e *Engine) newComposite(ctx context.Context, taskType store.TaskType, spec Spec) (*compositeBuilder, error) {
	t, err := newBaseTask(taskType, spec, e.RootURL)
	if err != nil {
		return nil, err
	}
	h, err := e.persistRoot(ctx, t)
	if err != nil {
		return nil, err
	}
	return &compositeBuilder{engine: e, handle: h}, nil
}

// Handle returns the container's own task handle.
func (b *compositeBuilder) Handle() *Handle { return b.handle }

// Add appends a child task under the container, the equivalent of
// CompositeTask.add(task). Children execute in the order they are added.
func (b *compositeBuilder) Add(ctx context.Context, taskType store.TaskType, spec Spec) (*Handle, error) {
	t, err := newBaseTask(taskType, spec, b.engine.RootURL)
	if err != nil {
		return nil, err
	}
	parentID := b.handle.Task.ID
	t.ParentID = &parentID
	order := b.order
	t.Order = &order
	b.order++

	if err := b.engine.Store.InsertTask(ctx, nil, t); err != nil {
		return nil, err
	}
	return &Handle{engine: b.engine, Task: t}, nil
}

func (e *Engine) persistRoot(ctx context.Context, t *store.Task) (*Handle, error) {
	if err := e.Store.InsertTask(ctx, nil, t); err != nil {
		return nil, err
	}
	return &Handle{engine: e, Task: t}, nil
}
