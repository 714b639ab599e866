package ui

import (
	"fmt"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner is the plain-stdout progress indicator shown while a command
// waits on the chain (simulation, confirmation, pin generation). Commands
// that take over the terminal, like status --watch, use the bubbletea
// model instead.
type Spinner struct {
	msg  string
	stop chan struct{}
	done chan struct{}
}

func NewSpinner(msg string) *Spinner {
	return &Spinner{
		msg:  msg,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Start runs the animation on its own goroutine until Stop is called.
func (s *Spinner) Start() {
	go func() {
		defer close(s.done)
		tick := time.NewTicker(80 * time.Millisecond)
		defer tick.Stop()
		frame := 0
		for {
			fmt.Printf("\r%s  %s", StyleChain.Render(spinnerFrames[frame%len(spinnerFrames)]), s.msg)
			frame++
			select {
			case <-s.stop:
				fmt.Printf("\r%-60s\r", "")
				return
			case <-tick.C:
			}
		}
	}()
}

// Stop halts the animation and clears the line. Blocks until the spinner
// goroutine has released the terminal, so the caller's next print starts
// on a clean line.
func (s *Spinner) Stop() {
	close(s.stop)
	<-s.done
}

// StopWithMsg stops the spinner and prints msg in its place.
func (s *Spinner) StopWithMsg(msg string) {
	s.Stop()
	fmt.Println(msg)
}
