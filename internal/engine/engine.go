// Package engine owns the loaded snapshot: raw feeds reconciled into
// canonical entities plus the drill-down index. The snapshot is replaced
// atomically on reload; queries always see one consistent load.
package engine

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ercilio-oss/lastmile-dsp-italy/internal/dataset"
	"github.com/ercilio-oss/lastmile-dsp-italy/internal/drilldown"
	"github.com/ercilio-oss/lastmile-dsp-italy/internal/identity"
	"github.com/ercilio-oss/lastmile-dsp-italy/internal/logger"
	"github.com/ercilio-oss/lastmile-dsp-italy/internal/roster"
	"github.com/ercilio-oss/lastmile-dsp-italy/internal/types"
)

// State is one immutable, fully derived load of the data.
type State struct {
	Entities       []types.DriverEntity
	Defects        []types.DefectDetail
	Index          *drilldown.Index
	Weeks          []string
	NameCollisions int
	LoadedAt       time.Time
}

type Engine struct {
	feedPath   string
	rosterPath string
	current    atomic.Pointer[State]
}

func New(feedPath, rosterPath string) *Engine {
	return &Engine{feedPath: feedPath, rosterPath: rosterPath}
}

// Reload reads the roster and feed workbook from disk and swaps in a fresh
// state. On error the previous state stays in place.
func (e *Engine) Reload() error {
	log := logger.WithComponent("engine")
	start := time.Now()

	tab, err := roster.Load(e.rosterPath)
	if err != nil {
		return fmt.Errorf("reload roster: %w", err)
	}
	snap, err := dataset.LoadWorkbook(e.feedPath)
	if err != nil {
		return fmt.Errorf("reload feeds: %w", err)
	}
	built := identity.Build(snap.Names, snap.Tokens, tab)

	e.current.Store(&State{
		Entities:       built.Entities,
		Defects:        snap.Defects,
		Index:          drilldown.NewIndex(snap.Defects),
		Weeks:          snap.Weeks,
		NameCollisions: built.NameCollisions,
		LoadedAt:       time.Now(),
	})

	log.WithFields(map[string]interface{}{
		"entities":        len(built.Entities),
		"name_collisions": built.NameCollisions,
		"duration_ms":     time.Since(start).Milliseconds(),
	}).Info("snapshot reloaded")
	return nil
}

// State returns the current snapshot, or nil before the first load.
func (e *Engine) State() *State {
	return e.current.Load()
}
