package wm

import (
	"context"
	"fmt"

	"github.com/1broseidon/groupwm/internal/command"
	"github.com/1broseidon/groupwm/internal/platform"
)

const queueSize = 256

// item is one unit of work for the reactor: a display event, a command or a
// key trigger.
type item struct {
	event   platform.Event
	cmd     *command.Command
	trigger string
	done    chan error
}

// Post queues a display event. It blocks while the queue is full.
func (e *Engine) Post(ev platform.Event) {
	e.queue <- item{event: ev}
}

// PostTrigger queues a key or button trigger.
func (e *Engine) PostTrigger(trigger string) {
	e.queue <- item{trigger: trigger}
}

// PostCommand queues a command without waiting for its result. Errors are
// logged by the reactor.
func (e *Engine) PostCommand(c command.Command) {
	e.queue <- item{cmd: &c}
}

// Do queues a command and waits until the reactor has applied it.
func (e *Engine) Do(ctx context.Context, c command.Command) error {
	it := item{cmd: &c, done: make(chan error, 1)}
	select {
	case e.queue <- it:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-it.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run is the reactor. It applies queued items one at a time, each to
// completion, and publishes a new snapshot after every item. It returns nil
// after shutdown, ErrReload after reload_config, or the context error.
func (e *Engine) Run(ctx context.Context) error {
	e.log.Info("reactor started")
	for {
		select {
		case <-ctx.Done():
			e.log.Info("reactor stopped")
			return ctx.Err()
		case it := <-e.queue:
			err := e.process(it)
			e.publish()
			if it.done != nil {
				it.done <- err
			}
			if e.stopping {
				e.log.Info("reactor stopped", "reload", e.exit == ErrReload)
				return e.exit
			}
		}
	}
}

func (e *Engine) process(it item) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			e.log.Error("reactor panic recovered", err)
		}
	}()

	switch {
	case it.event != nil:
		e.HandleEvent(it.event)
		return nil
	case it.cmd != nil:
		err := e.Dispatch(*it.cmd)
		switch {
		case err == nil:
		case IsNotFound(err):
			e.log.Debug("command ignored", "command", it.cmd.String(), "error", err.Error())
		case it.done == nil:
			e.log.Warn("command failed", "command", it.cmd.String(), "error", err.Error())
		}
		return err
	case it.trigger != "":
		err := e.Press(it.trigger)
		if err != nil {
			e.log.Debug("trigger failed", "trigger", it.trigger, "error", err.Error())
		}
		return err
	}
	return nil
}

func (e *Engine) stop(exit error) {
	e.stopping = true
	e.exit = exit
}
