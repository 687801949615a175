package midi

import (
	"container/heap"
	"context"
	"runtime"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"

	"go-wander/debug"
	"go-wander/music"
	"go-wander/sequencer"
)

const DefaultVelocity = 100

// Options configures an Output.
type Options struct {
	Channels map[music.Role]int // 1-based, like the config file
	Velocity uint8              // 0 uses DefaultVelocity
}

// DefaultChannels puts low, mid and melody on channels 1, 2 and 3.
func DefaultChannels() map[music.Role]int {
	return map[music.Role]int{music.Low: 1, music.Mid: 2, music.Melody: 3}
}

// Output is a sequencer.Synth that plays through a MIDI port. Triggers are
// queued by time and sent from a dispatch goroutine.
type Output struct {
	send     func(gomidi.Message) error
	closer   func() error
	portName string
	channels map[music.Role]uint8
	velocity uint8
	clock    func() time.Time

	sendMu sync.Mutex // held from popping events until they are sent

	mu      sync.Mutex
	queue   eventQueue
	held    map[[2]uint8]int // channel, note -> sounding count
	seq     uint64
	origin  time.Time
	started bool

	interruptChan chan struct{} // signal dispatch loop to recalculate (queue changed)
	stopChan      chan struct{}
	doneChan      chan struct{}
}

var _ sequencer.Synth = (*Output)(nil)

// NewOutput wraps a send function, usually from gomidi.SendTo.
func NewOutput(send func(gomidi.Message) error, opts Options) *Output {
	if opts.Channels == nil {
		opts.Channels = DefaultChannels()
	}
	if opts.Velocity == 0 {
		opts.Velocity = DefaultVelocity
	}
	chans := make(map[music.Role]uint8, len(opts.Channels))
	for r, ch := range opts.Channels {
		chans[r] = uint8(max(1, min(16, ch)) - 1)
	}
	return &Output{
		send:          send,
		channels:      chans,
		velocity:      opts.Velocity,
		clock:         time.Now,
		held:          make(map[[2]uint8]int),
		interruptChan: make(chan struct{}, 1),
		stopChan:      make(chan struct{}),
		doneChan:      make(chan struct{}),
	}
}

// Start sets the clock origin and launches the dispatch loop. MIDI needs no
// user permission, so it only fails if ctx is already done.
func (o *Output) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.started {
		return nil
	}
	o.origin = o.clock()
	o.started = true
	go o.dispatchLoop()
	debug.Log("midi", "output started")
	return nil
}

// Now is the time since Start.
func (o *Output) Now() time.Duration {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.nowLocked()
}

func (o *Output) nowLocked() time.Duration {
	if !o.started {
		return 0
	}
	return o.clock().Sub(o.origin)
}

// TriggerNote queues a note-on at n.At and its note-off n.Duration later.
func (o *Output) TriggerNote(n sequencer.Trigger) {
	ch, ok := o.channels[n.Role]
	if !ok {
		debug.Log("midi", "no channel for role %s", n.Role)
		return
	}
	key := uint8(max(0, min(127, int(n.Pitch))))

	o.mu.Lock()
	o.pushLocked(Event{At: n.At, Type: NoteOn, Channel: ch, Note: key, Velocity: o.velocity})
	o.pushLocked(Event{At: n.At + n.Duration, Type: NoteOff, Channel: ch, Note: key})
	o.mu.Unlock()
	o.interrupt()
}

func (o *Output) pushLocked(e Event) {
	o.seq++
	e.seq = o.seq
	heap.Push(&o.queue, e)
}

// ReleaseAll drops everything pending, turns off held notes and sends
// all-notes-off on every role channel.
func (o *Output) ReleaseAll() {
	o.sendMu.Lock()
	defer o.sendMu.Unlock()

	o.mu.Lock()
	o.queue = o.queue[:0]
	var msgs []gomidi.Message
	for k := range o.held {
		msgs = append(msgs, gomidi.NoteOff(k[0], k[1]))
	}
	o.held = make(map[[2]uint8]int)
	o.mu.Unlock()
	o.interrupt()

	seen := make(map[uint8]bool)
	for _, r := range music.Roles {
		ch, ok := o.channels[r]
		if !ok || seen[ch] {
			continue
		}
		seen[ch] = true
		msgs = append(msgs, gomidi.ControlChange(ch, gomidi.AllNotesOff, gomidi.Off))
	}
	for _, msg := range msgs {
		o.sendMsg(msg)
	}
	debug.Log("midi", "release all (%d messages)", len(msgs))
}

// Send writes msg to the port immediately, bypassing the queue.
func (o *Output) Send(msg gomidi.Message) error {
	o.sendMu.Lock()
	defer o.sendMu.Unlock()
	return o.send(msg)
}

// Pending is the number of queued events.
func (o *Output) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.queue)
}

// Close stops the dispatch loop, silences the port and closes it.
func (o *Output) Close() error {
	o.mu.Lock()
	started := o.started
	o.mu.Unlock()
	if started {
		select {
		case <-o.stopChan:
		default:
			close(o.stopChan)
			<-o.doneChan
		}
	}
	o.ReleaseAll()
	if o.closer != nil {
		return o.closer()
	}
	return nil
}

// interrupt signals the dispatch loop to recalculate
func (o *Output) interrupt() {
	select {
	case o.interruptChan <- struct{}{}:
	default:
	}
}

func (o *Output) sendMsg(msg gomidi.Message) {
	if err := o.send(msg); err != nil {
		debug.Log("midi", "send %s: %v", msg, err)
	}
}

// dispatchLoop sleeps until the earliest queued event is due, then sends
// everything that is due. Queue changes wake it early.
func (o *Output) dispatchLoop() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(o.doneChan)

	for {
		o.mu.Lock()
		empty := len(o.queue) == 0
		var wait time.Duration
		if !empty {
			wait = o.queue[0].At - o.nowLocked()
		}
		o.mu.Unlock()

		if empty {
			select {
			case <-o.stopChan:
				return
			case <-o.interruptChan:
				continue
			}
		}
		if wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-o.stopChan:
				timer.Stop()
				return
			case <-o.interruptChan:
				timer.Stop()
				continue
			case <-timer.C:
			}
		}

		o.sendMu.Lock()
		for _, e := range o.popDue() {
			o.sendMsg(e.Message())
			debug.Log("dispatch", "at=%v ch=%d type=%x note=%d", e.At, e.Channel+1, e.Type, e.Note)
		}
		o.sendMu.Unlock()
	}
}

// popDue removes due events and tracks which notes are sounding.
func (o *Output) popDue() []Event {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := o.nowLocked()
	var due []Event
	for len(o.queue) > 0 && o.queue[0].At <= now {
		e := heap.Pop(&o.queue).(Event)
		k := [2]uint8{e.Channel, e.Note}
		switch e.Type {
		case NoteOn:
			o.held[k]++
		case NoteOff:
			if o.held[k] <= 1 {
				delete(o.held, k)
			} else {
				o.held[k]--
			}
		}
		due = append(due, e)
	}
	return due
}
