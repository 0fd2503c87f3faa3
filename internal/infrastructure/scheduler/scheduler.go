// Package scheduler implementa la cola de clasificación diferida en memoria:
// un timer por producto, con semántica de reemplazo (agendar de nuevo cancela
// el timer anterior, nunca hay dos pendientes para el mismo producto).
package scheduler

import (
	"sync"
	"time"

	"github.com/sewellco/hts-manager/internal/application/ports"
	"github.com/sewellco/hts-manager/pkg/logger"
)

var _ ports.ClassifyScheduler = (*TimerScheduler)(nil)

// TimerScheduler agenda clasificaciones con time.AfterFunc. Los callbacks
// corren en goroutines propias; el caso de uso ya serializa por producto.
type TimerScheduler struct {
	run func(productID string)
	log *logger.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
}

// New construye el scheduler. El callback se ata después con Bind porque el
// caso de uso que lo ejecuta recibe a su vez el scheduler como puerto.
func New(log *logger.Logger) *TimerScheduler {
	return &TimerScheduler{
		log:    log,
		timers: make(map[string]*time.Timer),
	}
}

// Bind fija el callback que se ejecuta al vencer cada timer. Llamar antes de
// agendar nada; un timer que vence sin callback se ignora.
func (s *TimerScheduler) Bind(run func(productID string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.run = run
}

// Schedule agenda (o reagenda) la clasificación del producto tras delay.
// Un timer pendiente para el mismo producto se reemplaza.
func (s *TimerScheduler) Schedule(productID string, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if t, ok := s.timers[productID]; ok {
		t.Stop()
	}
	s.timers[productID] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, productID)
		run := s.run
		closed := s.closed
		s.mu.Unlock()
		if closed || run == nil {
			return
		}
		run(productID)
	})
	s.log.Debug().Str("product_id", productID).Dur("delay", delay).Msg("clasificación agendada")
}

// Cancel descarta el timer pendiente del producto, si existe.
func (s *TimerScheduler) Cancel(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[productID]; ok {
		t.Stop()
		delete(s.timers, productID)
	}
}

// Pending indica si el producto tiene una clasificación agendada sin ejecutar.
func (s *TimerScheduler) Pending(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[productID]
	return ok
}

// Stop cancela todos los timers pendientes; se usa en el shutdown.
func (s *TimerScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}
