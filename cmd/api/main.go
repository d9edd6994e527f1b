package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ercilio-oss/lastmile-dsp-italy/internal/aggregate"
	"github.com/ercilio-oss/lastmile-dsp-italy/internal/config"
	"github.com/ercilio-oss/lastmile-dsp-italy/internal/dataset"
	"github.com/ercilio-oss/lastmile-dsp-italy/internal/drilldown"
	"github.com/ercilio-oss/lastmile-dsp-italy/internal/engine"
	"github.com/ercilio-oss/lastmile-dsp-italy/internal/geo"
	"github.com/ercilio-oss/lastmile-dsp-italy/internal/logger"
	"github.com/ercilio-oss/lastmile-dsp-italy/internal/types"
	"github.com/ercilio-oss/lastmile-dsp-italy/internal/watch"
)

func main() {
	_ = godotenv.Load() // loads .env

	log := logger.New()
	log.WithField("service", "lastmile-dsp-italy").Info("starting service")

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	if cfg.FeedURL != "" {
		if err := dataset.Fetch(cfg.FeedURL, cfg.FeedPath); err != nil {
			log.WithError(err).Fatal("feed download failed")
		}
	}

	eng := engine.New(cfg.FeedPath, cfg.RosterPath)
	if err := eng.Reload(); err != nil {
		log.WithError(err).Fatal("initial data load failed")
	}
	st := eng.State()
	log.WithField("entities", len(st.Entities)).WithField("weeks", len(st.Weeks)).Info("snapshot ready")

	if cfg.WatchFeeds {
		w := watch.New(func() {
			if err := eng.Reload(); err != nil {
				logger.WithComponent("watch").WithField("error", err.Error()).Warn("reload failed, keeping previous snapshot")
			}
		}, cfg.FeedPath, cfg.RosterPath)
		if err := w.Start(context.Background()); err != nil {
			log.WithError(err).Warn("feed watcher not started")
		}
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		logger.New().WithRequest(r).Info("health check")
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/api/drivers", func(w http.ResponseWriter, r *http.Request) {
		reqLog := logger.New().WithRequest(r).WithField("handler", "drivers")
		st := eng.State()
		opts := optionsFromQuery(r, cfg)
		res := aggregate.Run(st.Entities, opts)
		reqLog.WithField("rows", len(res.Drivers)).Info("drivers aggregated")
		writeJSON(w, map[string]interface{}{
			"window":  opts.Window,
			"drivers": res.Drivers,
		})
	})

	mux.HandleFunc("/api/stations", func(w http.ResponseWriter, r *http.Request) {
		reqLog := logger.New().WithRequest(r).WithField("handler", "stations")
		st := eng.State()
		opts := optionsFromQuery(r, cfg)
		res := aggregate.Run(st.Entities, opts)
		reqLog.WithField("rows", len(res.Stations)).Info("stations aggregated")
		writeJSON(w, map[string]interface{}{
			"window":   opts.Window,
			"stations": res.Stations,
		})
	})

	mux.HandleFunc("/api/geo", func(w http.ResponseWriter, r *http.Request) {
		st := eng.State()
		active := splitParam(r.URL.Query().Get("types"))
		writeJSON(w, geo.Aggregate(st.Defects, active))
	})

	mux.HandleFunc("/api/drilldown/options", func(w http.ResponseWriter, r *http.Request) {
		st := eng.State()
		q := r.URL.Query()
		// build the selection through the transitions so out-of-order
		// parameters degrade to a no-op instead of an invalid state
		sel := drilldown.Selection{}
		if v := q.Get("type"); v != "" {
			sel = sel.SelectDefectType(v)
		}
		if v := q.Get("attribution"); v != "" {
			sel = sel.SelectAttribution(v)
		}
		if v := q.Get("site"); v != "" {
			sel = sel.SelectSite(v)
		}
		if v := q.Get("driver"); v != "" {
			sel = sel.SelectDriver(v)
		}
		writeJSON(w, map[string]interface{}{
			"selection": sel,
			"options":   st.Index.OptionsFor(sel),
			"count":     st.Index.Count(sel),
		})
	})

	mux.HandleFunc("/api/summary", func(w http.ResponseWriter, r *http.Request) {
		st := eng.State()
		writeJSON(w, map[string]interface{}{
			"entities":        len(st.Entities),
			"name_collisions": st.NameCollisions,
			"weeks":           st.Weeks,
			"loaded_at":       st.LoadedAt,
		})
	})

	srv := &http.Server{
		Addr:         cfg.HTTPPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.WithField("addr", cfg.HTTPPort).Info("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server terminated")
	}
}

// optionsFromQuery reads window and filter parameters. Malformed values
// fall back to defaults; a bad query never errors, it just widens.
func optionsFromQuery(r *http.Request, cfg config.Config) aggregate.Options {
	q := r.URL.Query()
	window := types.FullRange()
	if cfg.DefaultYear != 0 {
		window = window.WithYear(cfg.DefaultYear)
	}
	if v, err := strconv.Atoi(q.Get("year")); err == nil {
		window = window.WithYear(v)
	}
	if v, err := strconv.Atoi(q.Get("from")); err == nil {
		window = window.WithStart(v)
	}
	if v, err := strconv.Atoi(q.Get("to")); err == nil {
		window = window.WithEnd(v)
	}

	min := cfg.MinCombined
	if v, err := strconv.Atoi(q.Get("min")); err == nil && v >= 0 {
		min = v
	}

	return aggregate.Options{
		Window:      window,
		Stations:    splitParam(q.Get("stations")),
		MinCombined: min,
		Thresholds:  cfg.Thresholds,
	}
}

func splitParam(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		logger.WithComponent("http").WithField("error", err.Error()).Error("failed to write response")
	}
}
