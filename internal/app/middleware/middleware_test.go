package middleware

import (
	"context"
	"errors"
	"testing"

	"lendaround/internal/app/commands"
	"lendaround/internal/app/outbox"
	"lendaround/internal/app/uow"
	domainavailability "lendaround/internal/domain/availability"
	domainbooking "lendaround/internal/domain/booking"
	domainlistings "lendaround/internal/domain/listings"
)

type echoCommand struct {
	Value string
	IDKey string
}

func (c echoCommand) Key() string            { return "test.echo" }
func (c echoCommand) IdempotencyKey() string { return c.IDKey }
func (c echoCommand) ResultPrototype() any   { return &echoResult{} }

type echoResult struct {
	Value string `json:"value"`
	Runs  int    `json:"runs"`
}

type memIdempotencyStore map[string]IdempotencyRecord

func (s memIdempotencyStore) Get(ctx context.Context, key string) (IdempotencyRecord, bool, error) {
	rec, ok := s[key]
	return rec, ok, nil
}

func (s memIdempotencyStore) Save(ctx context.Context, rec IdempotencyRecord) error {
	s[rec.Key] = rec
	return nil
}

func echoBus(runs *int, fail error) commands.Bus {
	bus := commands.NewInMemoryBus()
	commands.RegisterHandler(bus, echoCommand{}.Key(),
		commands.HandlerFunc[echoCommand, *echoResult](func(ctx context.Context, cmd echoCommand) (*echoResult, error) {
			*runs++
			if fail != nil {
				return nil, fail
			}
			return &echoResult{Value: cmd.Value, Runs: *runs}, nil
		}))
	return bus
}

func TestIdempotencyReplaysStoredResult(t *testing.T) {
	runs := 0
	bus := ChainCommands(echoBus(&runs, nil), Idempotency(memIdempotencyStore{}, nil))

	first, err := commands.Dispatch[echoCommand, *echoResult](context.Background(), bus, echoCommand{Value: "a", IDKey: "k1"})
	if err != nil {
		t.Fatalf("first dispatch: %v", err)
	}
	second, err := commands.Dispatch[echoCommand, *echoResult](context.Background(), bus, echoCommand{Value: "a", IDKey: "k1"})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if runs != 1 {
		t.Fatalf("handler ran %d times, want 1", runs)
	}
	if second.Value != first.Value || second.Runs != first.Runs {
		t.Fatalf("replay returned %+v, want %+v", second, first)
	}
}

func TestIdempotencyReplaysStoredError(t *testing.T) {
	runs := 0
	boom := errors.New("boom")
	bus := ChainCommands(echoBus(&runs, boom), Idempotency(memIdempotencyStore{}, nil))

	if _, err := commands.Dispatch[echoCommand, *echoResult](context.Background(), bus, echoCommand{IDKey: "k1"}); err == nil {
		t.Fatalf("expected error on first dispatch")
	}
	if _, err := commands.Dispatch[echoCommand, *echoResult](context.Background(), bus, echoCommand{IDKey: "k1"}); err == nil || err.Error() != "boom" {
		t.Fatalf("expected replayed error, got %v", err)
	}
	if runs != 1 {
		t.Fatalf("handler ran %d times, want 1", runs)
	}
}

func TestIdempotencySkipsCommandsWithoutKey(t *testing.T) {
	runs := 0
	bus := ChainCommands(echoBus(&runs, nil), Idempotency(memIdempotencyStore{}, nil))

	for i := 0; i < 2; i++ {
		if _, err := commands.Dispatch[echoCommand, *echoResult](context.Background(), bus, echoCommand{Value: "a"}); err != nil {
			t.Fatal(err)
		}
	}
	if runs != 2 {
		t.Fatalf("handler ran %d times, want 2 without an idempotency key", runs)
	}
}

type guardedCommand struct {
	echoCommand
	missing bool
}

func (c guardedCommand) Validate() error {
	if c.missing {
		return ErrMissingField
	}
	return nil
}

func TestSelfValidationRejectsBeforeHandler(t *testing.T) {
	runs := 0
	bus := commands.NewInMemoryBus()
	commands.RegisterHandler(bus, echoCommand{}.Key(),
		commands.HandlerFunc[guardedCommand, *echoResult](func(ctx context.Context, cmd guardedCommand) (*echoResult, error) {
			runs++
			return &echoResult{Value: cmd.Value}, nil
		}))
	wrapped := ChainCommands(bus, Validation(SelfValidation{}))

	if _, err := commands.Dispatch[guardedCommand, *echoResult](context.Background(), wrapped, guardedCommand{missing: true}); !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
	if runs != 0 {
		t.Fatalf("handler ran %d times before validation, want 0", runs)
	}
	if _, err := commands.Dispatch[guardedCommand, *echoResult](context.Background(), wrapped, guardedCommand{echoCommand: echoCommand{Value: "ok"}}); err != nil {
		t.Fatal(err)
	}
	if runs != 1 {
		t.Fatalf("handler ran %d times, want 1", runs)
	}
}

func TestSelfValidationSkipsPlainCommands(t *testing.T) {
	runs := 0
	bus := ChainCommands(echoBus(&runs, nil), Validation(SelfValidation{}))
	if _, err := commands.Dispatch[echoCommand, *echoResult](context.Background(), bus, echoCommand{Value: "a"}); err != nil {
		t.Fatal(err)
	}
	if runs != 1 {
		t.Fatalf("handler ran %d times, want 1", runs)
	}
}

type recordingUnit struct {
	committed  bool
	rolledBack bool
}

func (u *recordingUnit) Listings() domainlistings.Repository      { return nil }
func (u *recordingUnit) Schedules() domainavailability.Repository { return nil }
func (u *recordingUnit) Bookings() domainbooking.Repository       { return nil }
func (u *recordingUnit) Commit(ctx context.Context) error         { u.committed = true; return nil }
func (u *recordingUnit) Rollback(ctx context.Context) error       { u.rolledBack = true; return nil }

type recordingFactory struct {
	last *recordingUnit
}

func (f *recordingFactory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	f.last = &recordingUnit{}
	return f.last, nil
}

func TestTransactionCommitsOnSuccess(t *testing.T) {
	factory := &recordingFactory{}
	seen := false
	bus := commands.NewInMemoryBus()
	commands.RegisterHandler(bus, echoCommand{}.Key(),
		commands.HandlerFunc[echoCommand, *echoResult](func(ctx context.Context, cmd echoCommand) (*echoResult, error) {
			if _, ok := uow.FromContext(ctx); !ok {
				t.Errorf("unit of work missing inside handler")
			}
			seen = true
			return &echoResult{}, nil
		}))

	wrapped := ChainCommands(bus, Transaction(factory, nil))
	if _, err := commands.Dispatch[echoCommand, *echoResult](context.Background(), wrapped, echoCommand{}); err != nil {
		t.Fatal(err)
	}
	if !seen || !factory.last.committed || factory.last.rolledBack {
		t.Fatalf("expected commit without rollback, got %+v", factory.last)
	}
}

func TestTransactionRollsBackOnError(t *testing.T) {
	factory := &recordingFactory{}
	runs := 0
	wrapped := ChainCommands(echoBus(&runs, errors.New("boom")), Transaction(factory, nil))
	if _, err := commands.Dispatch[echoCommand, *echoResult](context.Background(), wrapped, echoCommand{}); err == nil {
		t.Fatal("expected error")
	}
	if factory.last.committed || !factory.last.rolledBack {
		t.Fatalf("expected rollback without commit, got %+v", factory.last)
	}
}

type countingOutbox struct {
	added   int
	flushed int
}

func (o *countingOutbox) Add(ctx context.Context, rec outbox.EventRecord) error {
	o.added++
	return nil
}

func (o *countingOutbox) Flush(ctx context.Context) error {
	o.flushed++
	return nil
}

func TestOutboxFlushRunsAfterSuccessOnly(t *testing.T) {
	box := &countingOutbox{}
	runs := 0
	ok := ChainCommands(echoBus(&runs, nil), OutboxFlush(box))
	if _, err := commands.Dispatch[echoCommand, *echoResult](context.Background(), ok, echoCommand{}); err != nil {
		t.Fatal(err)
	}
	if box.flushed != 1 {
		t.Fatalf("flushed %d times, want 1", box.flushed)
	}

	failing := ChainCommands(echoBus(&runs, errors.New("boom")), OutboxFlush(box))
	if _, err := commands.Dispatch[echoCommand, *echoResult](context.Background(), failing, echoCommand{}); err == nil {
		t.Fatal("expected error")
	}
	if box.flushed != 1 {
		t.Fatalf("failed dispatch must not flush, got %d", box.flushed)
	}
}
