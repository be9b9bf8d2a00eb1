package service

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/tokenvestors/promobot/core/logger"
)

// PriceBoard owns the promotion price. It replaces the mutable global the
// first version of the bot carried: reads happen at time of use, writes go
// through the authenticated admin command only.
type PriceBoard struct {
	mu  sync.RWMutex
	usd float64
}

// NewPriceBoard seeds the board with the configured default.
func NewPriceBoard(defaultUSD float64) *PriceBoard {
	return &PriceBoard{usd: defaultUSD}
}

// Current returns the price in effect right now.
func (p *PriceBoard) Current() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.usd
}

// Set updates the price. Non-positive values are rejected.
func (p *PriceBoard) Set(usd float64) error {
	if usd <= 0 {
		return fmt.Errorf("price must be positive, got %v", usd)
	}
	p.mu.Lock()
	prev := p.usd
	p.usd = usd
	p.mu.Unlock()

	logger.SVCPrice.Info("price updated",
		slog.String("event", "price.set"),
		slog.Float64("price_usd", usd),
		slog.Float64("previous_usd", prev),
	)
	return nil
}
