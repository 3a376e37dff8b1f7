package beforeexit

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/google/uuid"

	"gfx.cafe/gfx/protocolcontrol/lib/util/maps"
)

var (
	hooks maps.RWLocked[uuid.UUID, func()]
	once  sync.Once
)

// Run registers fn to run when the process receives SIGINT or SIGTERM. The order hooks run in is undefined.
// After every hook returns the process exits with status 1.
func Run(fn func()) uuid.UUID {
	once.Do(listen)

	id := uuid.New()
	hooks.Store(id, fn)
	return id
}

// Cancel removes a hook registered by Run.
func Cancel(id uuid.UUID) {
	hooks.Delete(id)
}

func runAll() {
	hooks.Range(func(id uuid.UUID, fn func()) bool {
		hooks.Delete(id)
		func() {
			defer func() {
				_ = recover()
			}()
			fn()
		}()
		return true
	})
}

func listen() {
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		runAll()
		os.Exit(1)
	}()
}
