package apps

import (
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glidewm/glide/internal/sys"
)

type fakeServer struct {
	mu     sync.Mutex
	frames []sys.Request
	raised []sys.WindowID
	fail   map[sys.WindowID]bool
}

func (f *fakeServer) SetWindowFrame(id sys.WindowID, frame sys.Rect) (sys.Rect, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[id] {
		return sys.Rect{}, errors.New("window is gone")
	}
	f.frames = append(f.frames, sys.Request{Kind: sys.ReqSetWindowFrame, Window: id, Frame: frame})
	return frame, nil
}

func (f *fakeServer) RaiseWindow(id sys.WindowID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.raised = append(f.raised, id)
	return nil
}

func (f *fakeServer) MoveWindowToSpace(sys.WindowID, sys.SpaceID) error { return nil }

func TestPoolPreservesPerAppOrder(t *testing.T) {
	server := &fakeServer{}
	txns := sys.NewTxnTable()
	pool := NewPool(server, txns, log.New(io.Discard), nil)

	w := sys.NewWindowID(1, 1)
	for i := 1; i <= 5; i++ {
		pool.Dispatch(sys.Request{
			Kind:   sys.ReqSetWindowFrame,
			Window: w,
			Frame:  sys.NewRect(i, 0, 100, 100),
			Txn:    sys.TransactionID(i),
		})
	}
	pool.Close()

	require.Len(t, server.frames, 5)
	for i, req := range server.frames {
		assert.Equal(t, i+1, req.Frame.X, "writes must apply in emission order")
	}
	assert.Equal(t, sys.TransactionID(5), txns.LastSeen(w))
}

func TestPoolReportsFailures(t *testing.T) {
	w := sys.NewWindowID(2, 1)
	server := &fakeServer{fail: map[sys.WindowID]bool{w: true}}

	var mu sync.Mutex
	var failed []sys.WindowID
	pool := NewPool(server, sys.NewTxnTable(), log.New(io.Discard), func(wid sys.WindowID) {
		mu.Lock()
		failed = append(failed, wid)
		mu.Unlock()
	})

	pool.Dispatch(sys.Request{Kind: sys.ReqSetWindowFrame, Window: w, Frame: sys.NewRect(0, 0, 1, 1), Txn: 1})
	pool.Close()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, failed, 1)
	assert.Equal(t, w, failed[0])
}

func TestPoolAnimationSuspension(t *testing.T) {
	server := &fakeServer{}
	txns := sys.NewTxnTable()
	pool := NewPool(server, txns, log.New(io.Discard), nil)

	w := sys.NewWindowID(3, 1)
	pool.Dispatch(sys.Request{Kind: sys.ReqBeginWindowAnimation, Window: w})

	// The worker processes in order, so once the frame below lands the
	// suspension from Begin is already in effect.
	pool.Dispatch(sys.Request{Kind: sys.ReqSetWindowFrame, Window: w, Frame: sys.NewRect(0, 0, 1, 1), Txn: 1})
	deadline := time.Now().Add(time.Second)
	for txns.LastSeen(w) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	assert.True(t, txns.Suspended(w))

	pool.Dispatch(sys.Request{Kind: sys.ReqEndWindowAnimation, Window: w})
	pool.Close()
	assert.False(t, txns.Suspended(w))
}
