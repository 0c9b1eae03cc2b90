package gocommand

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-command"
	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	glog "github.com/goliatone/go-logger/glog"
)

const messageTypeResolverKey = "oauth1.message-types"

// ValidateMessageContract enforces Type() plus optional Validate() contract.
func ValidateMessageContract(msg any) error {
	if err := command.ValidateMessage(msg); err != nil {
		return err
	}
	m, ok := msg.(command.Message)
	if !ok {
		return fmt.Errorf("gocommand: message must implement Type() string")
	}
	if strings.TrimSpace(m.Type()) == "" {
		return fmt.Errorf("gocommand: message type is required")
	}
	return nil
}

// Bus registers handlers with a go-command registry and subscribes them to
// the process-wide dispatcher. Close releases every subscription.
type Bus struct {
	registry   *command.Registry
	logger     glog.Logger
	runnerOpts []runner.Option

	mu            sync.Mutex
	subscriptions []commanddispatcher.Subscription
	messageTypes  map[string]struct{}
}

func NewBus(registry *command.Registry, logger glog.Logger) (*Bus, error) {
	if registry == nil {
		registry = command.NewRegistry()
	}
	if logger == nil {
		logger = glog.Nop()
	}
	bus := &Bus{
		registry:     registry,
		logger:       logger,
		messageTypes: map[string]struct{}{},
	}
	// the runner's default error handler writes through the stdlib log package
	bus.runnerOpts = []runner.Option{
		runner.WithErrorHandler(func(err error) {
			bus.logger.Debug("command handler error", "error", err)
		}),
	}
	if err := registry.AddResolver(messageTypeResolverKey, bus.recordMessageType); err != nil {
		return nil, err
	}
	return bus, nil
}

func (b *Bus) Registry() *command.Registry {
	if b == nil {
		return nil
	}
	return b.registry
}

// Initialize runs the registry resolvers. Every handler must resolve to a
// non-empty message type.
func (b *Bus) Initialize() error {
	if b == nil || b.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return b.registry.Initialize()
}

// MessageTypes lists the message types seen by Initialize, sorted.
func (b *Bus) MessageTypes() []string {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.messageTypes))
	for messageType := range b.messageTypes {
		out = append(out, messageType)
	}
	sort.Strings(out)
	return out
}

func (b *Bus) Close() {
	if b == nil {
		return
	}
	b.mu.Lock()
	subscriptions := b.subscriptions
	b.subscriptions = nil
	b.mu.Unlock()
	for _, sub := range subscriptions {
		if sub != nil {
			sub.Unsubscribe()
		}
	}
}

func (b *Bus) recordMessageType(_ any, meta command.CommandMeta, _ *command.Registry) error {
	messageType := strings.TrimSpace(meta.MessageType)
	if messageType == "" {
		return fmt.Errorf("gocommand: handler has no message type")
	}
	b.mu.Lock()
	b.messageTypes[messageType] = struct{}{}
	b.mu.Unlock()
	return nil
}

func (b *Bus) track(sub commanddispatcher.Subscription) {
	b.mu.Lock()
	b.subscriptions = append(b.subscriptions, sub)
	b.mu.Unlock()
}

// HandleCommand registers cmd and subscribes it for messages of type T.
func HandleCommand[T any](b *Bus, cmd command.Commander[T]) error {
	if b == nil || b.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	if cmd == nil {
		return fmt.Errorf("gocommand: command is required")
	}
	if err := b.registry.RegisterCommand(cmd); err != nil {
		return err
	}
	b.track(commanddispatcher.SubscribeCommand[T](capturedCommand[T]{cmd: cmd}, b.runnerOpts...))
	return nil
}

// HandleQuery registers qry and subscribes it for messages of type T.
// The registry resolves queriers through RegisterCommand as well.
func HandleQuery[T any, R any](b *Bus, qry command.Querier[T, R]) error {
	if b == nil || b.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	if qry == nil {
		return fmt.Errorf("gocommand: query is required")
	}
	if err := b.registry.RegisterCommand(qry); err != nil {
		return err
	}
	b.track(commanddispatcher.SubscribeQuery[T, R](capturedQuery[T, R]{qry: qry}, b.runnerOpts...))
	return nil
}

// Dispatch sends msg to its command handlers. A handler failure is returned
// as the handler's own error, not the dispatcher's envelope around it.
func Dispatch[T any](ctx context.Context, msg T) error {
	ctx, slot := withErrorSlot(ctx)
	return slot.resolve(commanddispatcher.Dispatch(ctx, msg))
}

// Query runs the query handler for msg. Handler failures are returned as in
// Dispatch.
func Query[T any, R any](ctx context.Context, msg T) (R, error) {
	ctx, slot := withErrorSlot(ctx)
	result, err := commanddispatcher.Query[T, R](ctx, msg)
	return result, slot.resolve(err)
}

type errorSlotKey struct{}

type errorSlot struct {
	mu  sync.Mutex
	err error
}

func withErrorSlot(ctx context.Context) (context.Context, *errorSlot) {
	if ctx == nil {
		ctx = context.Background()
	}
	slot := &errorSlot{}
	return context.WithValue(ctx, errorSlotKey{}, slot), slot
}

// recordHandlerError keeps the first handler error for the current dispatch.
func recordHandlerError(ctx context.Context, err error) error {
	if err == nil || ctx == nil {
		return err
	}
	slot, ok := ctx.Value(errorSlotKey{}).(*errorSlot)
	if !ok || slot == nil {
		return err
	}
	slot.mu.Lock()
	if slot.err == nil {
		slot.err = err
	}
	slot.mu.Unlock()
	return err
}

func (s *errorSlot) resolve(dispatchErr error) error {
	if dispatchErr == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	return dispatchErr
}

type capturedCommand[T any] struct {
	cmd command.Commander[T]
}

func (c capturedCommand[T]) Execute(ctx context.Context, msg T) error {
	return recordHandlerError(ctx, c.cmd.Execute(ctx, msg))
}

type capturedQuery[T any, R any] struct {
	qry command.Querier[T, R]
}

func (c capturedQuery[T, R]) Query(ctx context.Context, msg T) (R, error) {
	result, err := c.qry.Query(ctx, msg)
	return result, recordHandlerError(ctx, err)
}
