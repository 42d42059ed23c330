package utils

import (
	"fmt"
	"runtime/debug"

	"github.com/bots-empire/adnet-bot/model"
)

type job struct {
	handler   model.Handler
	situation *model.Situation
	onError   func(err error)
}

// Spreader fans handler work out over a fixed pool of workers so one slow
// remote-store call cannot stall the update loop.
type Spreader struct {
	jobs chan job
}

func NewSpreader(workers int) *Spreader {
	s := &Spreader{
		jobs: make(chan job, workers*2),
	}

	for i := 0; i < workers; i++ {
		go s.work()
	}

	return s
}

func (s *Spreader) ServeHandler(handler model.Handler, situation *model.Situation, onError func(err error)) {
	s.jobs <- job{
		handler:   handler,
		situation: situation,
		onError:   onError,
	}
}

func (s *Spreader) work() {
	for j := range s.jobs {
		s.serve(j)
	}
}

func (s *Spreader) serve(j job) {
	defer func() {
		if r := recover(); r != nil {
			j.onError(fmt.Errorf("panic in handler: %v\n%s", r, debug.Stack()))
		}
	}()

	if err := j.handler.Serve(j.situation); err != nil {
		j.onError(err)
	}
}
