package script

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// echoInterpreter answers every Execute with its own code and records the
// order in which queries arrived.
type echoInterpreter struct {
	mu    sync.Mutex
	seen  []string
	delay time.Duration
}

func (e *echoInterpreter) Execute(code string) (Response, error) {
	if e.delay > 0 {
		time.Sleep(e.delay)
	}
	e.mu.Lock()
	e.seen = append(e.seen, code)
	e.mu.Unlock()
	if code == "boom" {
		panic("boom")
	}
	if code == "fail" {
		return Response{}, errors.New("evaluation failed")
	}
	return Response{Values: []string{code}}, nil
}

func (e *echoInterpreter) ExecFile(path string) (Response, error) {
	return e.Execute("file:" + path)
}

func (e *echoInterpreter) Close() {}

func (e *echoInterpreter) Seen() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.seen...)
}

func startEngine(t *testing.T, interp Interpreter, cfg EngineConfig) (*Bridge, func()) {
	t.Helper()
	bridge := NewBridge(2*time.Second, nil)
	engine := NewEngine(bridge, func() (Interpreter, error) { return interp, nil }, cfg)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- engine.Run(ctx) }()
	return bridge, func() {
		cancel()
		require.NoError(t, <-done)
	}
}

func TestSendAwaitReturnsCorrelatedResponse(t *testing.T) {
	bridge, stop := startEngine(t, &echoInterpreter{}, EngineConfig{})
	defer stop()

	q := Execute("print('hi')")
	p, err := bridge.Send(q)
	require.NoError(t, err)
	resp, err := p.Await(context.Background())
	require.NoError(t, err)
	require.Equal(t, q.ID, resp.QueryID)
	require.Equal(t, []string{"print('hi')"}, resp.Values)
	require.True(t, resp.OK())
}

func TestConcurrentSendersGetTheirOwnResponses(t *testing.T) {
	bridge, stop := startEngine(t, &echoInterpreter{}, EngineConfig{})
	defer stop()

	const senders, perSender = 8, 25
	var wg sync.WaitGroup
	errs := make(chan error, senders*perSender)
	for s := 0; s < senders; s++ {
		wg.Add(1)
		go func(s int) {
			defer wg.Done()
			for i := 0; i < perSender; i++ {
				code := fmt.Sprintf("%d-%d", s, i)
				q := Execute(code)
				resp, err := bridge.Query(context.Background(), q)
				if err != nil {
					errs <- err
					continue
				}
				if resp.QueryID != q.ID || len(resp.Values) != 1 || resp.Values[0] != code {
					errs <- fmt.Errorf("query %s got %+v", code, resp)
				}
			}
		}(s)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
}

func TestQueriesAreEvaluatedInSendOrder(t *testing.T) {
	interp := &echoInterpreter{delay: time.Millisecond}
	bridge, stop := startEngine(t, interp, EngineConfig{})
	defer stop()

	var last *Pending
	want := make([]string, 0, 20)
	for i := 0; i < 20; i++ {
		code := fmt.Sprintf("q%d", i)
		want = append(want, code)
		p, err := bridge.Send(Execute(code))
		require.NoError(t, err)
		last = p
	}
	_, err := last.Await(context.Background())
	require.NoError(t, err)
	require.Equal(t, want, interp.Seen())
}

func TestSendAfterEngineStopsFailsFast(t *testing.T) {
	bridge, stop := startEngine(t, &echoInterpreter{}, EngineConfig{})
	stop()

	_, err := bridge.Send(Execute("1"))
	require.ErrorIs(t, err, ErrEngineUnreachable)
	_, err = bridge.Send(Restart())
	require.ErrorIs(t, err, ErrEngineUnreachable)
}

func TestCloseFailsQueuedQueries(t *testing.T) {
	bridge := NewBridge(0, nil)
	p, err := bridge.Send(Execute("never"))
	require.NoError(t, err)
	bridge.Close()
	bridge.Close()

	_, err = p.Await(context.Background())
	require.ErrorIs(t, err, ErrEngineUnreachable)
	select {
	case <-bridge.Done():
	default:
		t.Fatalf("expected Done to be closed")
	}
}

func TestAwaitHonoursContext(t *testing.T) {
	bridge := NewBridge(0, nil)
	defer bridge.Close()
	p, err := bridge.Send(Execute("nobody is listening"))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = p.Await(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBridgeQueryTimeout(t *testing.T) {
	bridge := NewBridge(20*time.Millisecond, nil)
	defer bridge.Close()
	_, err := bridge.Query(context.Background(), Execute("slow"))
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRestartHasNoResponse(t *testing.T) {
	bridge := NewBridge(0, nil)
	defer bridge.Close()
	p, err := bridge.Send(Restart())
	require.NoError(t, err)
	require.Nil(t, p)
	_, err = p.Await(context.Background())
	require.ErrorIs(t, err, ErrNoResponse)
}

func TestFireAndForgetDoesNotBlockEngine(t *testing.T) {
	interp := &echoInterpreter{}
	bridge, stop := startEngine(t, interp, EngineConfig{})
	defer stop()

	for i := 0; i < 50; i++ {
		_, err := bridge.Send(Execute("discarded"))
		require.NoError(t, err)
	}
	resp, err := bridge.Query(context.Background(), Execute("last"))
	require.NoError(t, err)
	require.Equal(t, []string{"last"}, resp.Values)
	require.Len(t, interp.Seen(), 51)
}

func TestEvaluationErrorsAndPanicsAreResponses(t *testing.T) {
	bridge, stop := startEngine(t, &echoInterpreter{}, EngineConfig{})
	defer stop()

	resp, err := bridge.Query(context.Background(), Execute("fail"))
	require.NoError(t, err)
	require.EqualError(t, resp.Err, "evaluation failed")

	resp, err = bridge.Query(context.Background(), Execute("boom"))
	require.NoError(t, err)
	require.ErrorContains(t, resp.Err, "interpreter panic")

	resp, err = bridge.Query(context.Background(), Execute("still alive"))
	require.NoError(t, err)
	require.True(t, resp.OK())
}
