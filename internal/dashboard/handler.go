package dashboard

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/pauljaxson/gerrit-trigger-plugin/internal/gerrit"
	"github.com/pauljaxson/gerrit-trigger-plugin/internal/monitor"
)

// Handler serves the dashboard endpoints. It only reads from the monitor;
// all mutation flows through the lifecycle callbacks.
type Handler struct {
	monitor        *monitor.Monitor
	renderer       *Renderer
	refreshSeconds int
}

// NewHandler creates a handler polling mon.
func NewHandler(mon *monitor.Monitor, refreshSeconds int) (*Handler, error) {
	renderer, err := NewRenderer()
	if err != nil {
		return nil, err
	}
	if refreshSeconds <= 0 {
		refreshSeconds = 10
	}
	return &Handler{monitor: mon, renderer: renderer, refreshSeconds: refreshSeconds}, nil
}

// Register wires the dashboard routes onto mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.handleIndex)
	mux.HandleFunc("GET /api/events", h.handleEvents)
	mux.HandleFunc("GET /healthz", h.handleHealthz)
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	page := Page{
		Events:         h.eventViews(),
		RefreshSeconds: h.refreshSeconds,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.renderer.Render(w, page); err != nil {
		log.Printf("dashboard: rendering index: %v", err)
	}
}

func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.eventViews()); err != nil {
		log.Printf("dashboard: encoding events: %v", err)
	}
}

func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok\n"))
}

// eventViews snapshots the monitor into the view model.
func (h *Handler) eventViews() []EventView {
	states := h.monitor.Events()
	views := make([]EventView, 0, len(states))
	for _, state := range states {
		view := EventView{
			BallColor:          state.BallColor().String(),
			TriggerScanStarted: state.TriggerScanStarted(),
			TriggerScanDone:    state.TriggerScanDone(),
			AllBuildsCompleted: state.AllBuildsCompleted(),
			UnTriggered:        state.IsUnTriggered(),
		}
		if ce, ok := state.Event().(gerrit.ChangeEvent); ok {
			change, patchset := ce.ChangeAttr(), ce.PatchSetAttr()
			view.Change = change.Number
			view.Project = change.Project
			view.Branch = change.Branch
			view.Revision = patchset.Revision
		}
		for _, item := range state.Builds() {
			bv := BuildView{Project: item.Project()}
			if run := item.Run(); run != nil {
				bv.RunID = run.ID()
				if result, ok := run.Result(); ok {
					bv.Status = result.String()
					bv.Color = result.Color().String()
					bv.Finished = !run.IsLogUpdated()
				} else {
					bv.Status = "running"
					bv.Color = "grey_anime"
				}
			} else {
				bv.Status = "pending"
				bv.Color = "grey_anime"
			}
			view.Builds = append(view.Builds, bv)
		}
		views = append(views, view)
	}
	return views
}

// Serve runs the dashboard HTTP server until ctx is cancelled or the
// listener fails.
func Serve(ctx context.Context, addr string, h *Handler) error {
	mux := http.NewServeMux()
	h.Register(mux)
	srv := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("dashboard: listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}
